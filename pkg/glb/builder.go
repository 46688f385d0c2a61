package glb

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/levelchunk/pkg/math"
)

// Builder assembles a document and its BIN buffer view by view.
// Every view starts and ends on a 4-byte boundary.
type Builder struct {
	doc *Document
	bin bytes.Buffer
}

// NewBuilder starts an empty version 2.0 document.
func NewBuilder(generator string) *Builder {
	return &Builder{doc: &Document{Asset: Asset{Version: "2.0", Generator: generator}}}
}

// AddView appends data as a new buffer view and returns its index.
func (b *Builder) AddView(data []byte, target int) int {
	b.align()
	view := BufferView{
		Buffer:     0,
		ByteOffset: b.bin.Len(),
		ByteLength: len(data),
		Target:     target,
	}
	b.bin.Write(data)
	b.align()
	b.doc.BufferViews = append(b.doc.BufferViews, view)
	return len(b.doc.BufferViews) - 1
}

// AddAccessor appends an accessor over a whole view and returns its index.
func (b *Builder) AddAccessor(view int, ct ComponentType, count int, at AccessorType) int {
	b.doc.Accessors = append(b.doc.Accessors, Accessor{
		BufferView:    Index(view),
		ComponentType: ct,
		Count:         count,
		Type:          at,
	})
	return len(b.doc.Accessors) - 1
}

// AddVec3 writes float positions or normals. When withBounds is set the
// accessor carries min and max, as required for positions.
func (b *Builder) AddVec3(values []math.Vec3, withBounds bool) int {
	buf := new(bytes.Buffer)
	for _, v := range values {
		binary.Write(buf, binary.LittleEndian, v.Array())
	}
	acc := b.AddAccessor(b.AddView(buf.Bytes(), TargetArrayBuffer), ComponentFloat, len(values), AccessorVec3)
	if withBounds && len(values) > 0 {
		bounds := math.EmptyBounds()
		for _, v := range values {
			bounds = bounds.Extend(v)
		}
		minArr, maxArr := bounds.Min.Array(), bounds.Max.Array()
		b.doc.Accessors[acc].Min = minArr[:]
		b.doc.Accessors[acc].Max = maxArr[:]
	}
	return acc
}

// AddVec2 writes float texture coordinates.
func (b *Builder) AddVec2(values [][2]float32) int {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, values)
	return b.AddAccessor(b.AddView(buf.Bytes(), TargetArrayBuffer), ComponentFloat, len(values), AccessorVec2)
}

// AddVec4 writes float colors.
func (b *Builder) AddVec4(values [][4]float32) int {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, values)
	return b.AddAccessor(b.AddView(buf.Bytes(), TargetArrayBuffer), ComponentFloat, len(values), AccessorVec4)
}

// AddIndices16 writes an unsigned short index buffer.
func (b *Builder) AddIndices16(indices []uint16) int {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, indices)
	return b.AddAccessor(b.AddView(buf.Bytes(), TargetElementArrayBuffer), ComponentUnsignedShort, len(indices), AccessorScalar)
}

// AddIndices32 writes an unsigned int index buffer.
func (b *Builder) AddIndices32(indices []uint32) int {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, indices)
	return b.AddAccessor(b.AddView(buf.Bytes(), TargetElementArrayBuffer), ComponentUnsignedInt, len(indices), AccessorScalar)
}

// AddMesh appends a mesh and returns its index.
func (b *Builder) AddMesh(mesh Mesh) int {
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	return len(b.doc.Meshes) - 1
}

// AddNode appends a node and returns its index.
func (b *Builder) AddNode(node Node) int {
	b.doc.Nodes = append(b.doc.Nodes, node)
	return len(b.doc.Nodes) - 1
}

// SetScene replaces the scene table with a single default scene.
func (b *Builder) SetScene(nodes ...int) {
	b.doc.Scenes = []Scene{{Nodes: nodes}}
	b.doc.Scene = Index(0)
}

// Finish records the buffer length and returns the document and BIN payload.
func (b *Builder) Finish() (*Document, []byte) {
	b.doc.Buffers = []Buffer{{ByteLength: b.bin.Len()}}
	return b.doc, b.bin.Bytes()
}

func (b *Builder) align() {
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
}
