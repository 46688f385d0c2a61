package glb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/levelchunk/pkg/math"
)

func TestBuilder_AlignsViews(t *testing.T) {
	b := NewBuilder("test")
	idx := b.AddIndices16([]uint16{0, 1, 2})
	pos := b.AddVec3([]math.Vec3{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0, Z: 5}}, true)
	doc, bin := b.Finish()
	c := &Container{Version: Version, Document: doc, Binary: bin}

	views := c.Document.BufferViews
	require.Len(t, views, 2)
	assert.Equal(t, 6, views[0].ByteLength)
	assert.Equal(t, 8, views[1].ByteOffset, "view after a 6-byte index buffer starts on a 4-byte boundary")
	assert.Equal(t, TargetElementArrayBuffer, views[0].Target)
	assert.Equal(t, TargetArrayBuffer, views[1].Target)
	assert.Equal(t, len(c.Binary), c.Document.Buffers[0].ByteLength)
	assert.Zero(t, len(c.Binary)%4)

	acc := c.Document.Accessors[pos]
	assert.Equal(t, []float32{-1, 0, 3}, acc.Min)
	assert.Equal(t, []float32{1, 2, 5}, acc.Max)

	indices, err := c.ReadIndices(idx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)

	positions, err := c.ReadAccessor(pos, false)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {-1, 0, 5}}, positions)
}

func TestBuilder_SceneAndEncode(t *testing.T) {
	b := NewBuilder("test")
	uv := b.AddVec2([][2]float32{{0.5, 0.25}})
	col := b.AddVec4([][4]float32{{1, 0, 0, 1}})
	mesh := b.AddMesh(Mesh{Name: "m", Primitives: []Primitive{{Attributes: map[string]int{AttrTexCoord: uv, AttrColor: col}}}})
	node := b.AddNode(Node{Mesh: Index(mesh)})
	b.SetScene(node)

	doc, bin := b.Finish()
	data, err := Encode(doc, bin)
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, c.Document.Scene)
	assert.Equal(t, []int{0}, c.Document.Scenes[0].Nodes)

	colors, err := c.ReadAccessor(col, true)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 0, 1}}, colors)
}
