package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/levelchunk/pkg/math"
)

func tri(a, b, c math.Vec3) Triangle {
	return Triangle{Positions: [3]math.Vec3{a, b, c}, Material: NoMaterial}
}

func TestCentroid(t *testing.T) {
	tr := tri(math.Vec3{}, math.Vec3{X: 3}, math.Vec3{Y: 3, Z: 6})
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 2}, tr.Centroid())
}

func TestComputeBounds(t *testing.T) {
	tris := []Triangle{
		tri(math.Vec3{X: -1}, math.Vec3{Y: 2}, math.Vec3{Z: 3}),
		tri(math.Vec3{X: 5}, math.Vec3{Y: -4}, math.Vec3{Z: 0}),
	}
	b := ComputeBounds(tris)
	assert.Equal(t, math.Vec3{X: -1, Y: -4, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 5, Y: 2, Z: 3}, b.Max)

	assert.True(t, ComputeBounds(nil).IsEmpty())
}

func TestNewChunk(t *testing.T) {
	c := NewChunk([]Triangle{tri(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Z: 1})})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, math.Vec3{X: 1, Y: 0, Z: 1}, c.Bounds.Max)
	assert.False(t, c.Triangles[0].HasMaterial())
}
