// Package geom holds the world-space triangle records shared by the flattener,
// partitioner, re-encoder and registrar.
package geom

import "github.com/Faultbox/levelchunk/pkg/math"

// NoMaterial marks a triangle without a material reference.
const NoMaterial = -1

// Triangle is one world-space triangle with optional per-vertex attributes.
// Nil attribute pointers mean the source primitive did not carry them.
type Triangle struct {
	Positions [3]math.Vec3
	Normals   *[3]math.Vec3
	UVs       *[3][2]float32
	Colors    *[3][4]float32
	Material  int
}

// Centroid returns the average of the three positions.
func (t *Triangle) Centroid() math.Vec3 {
	p := t.Positions
	return math.Vec3{
		X: (p[0].X + p[1].X + p[2].X) / 3,
		Y: (p[0].Y + p[1].Y + p[2].Y) / 3,
		Z: (p[0].Z + p[1].Z + p[2].Z) / 3,
	}
}

// HasMaterial reports whether the triangle references a material.
func (t *Triangle) HasMaterial() bool {
	return t.Material != NoMaterial
}

// ComputeBounds returns the box around every vertex of tris.
// An empty list yields math.EmptyBounds().
func ComputeBounds(tris []Triangle) math.Bounds {
	b := math.EmptyBounds()
	for i := range tris {
		for _, p := range tris[i].Positions {
			b = b.Extend(p)
		}
	}
	return b
}

// Chunk is a spatially bounded run of triangles.
type Chunk struct {
	Triangles []Triangle
	Bounds    math.Bounds
}

// NewChunk wraps tris with their bounds.
func NewChunk(tris []Triangle) Chunk {
	return Chunk{Triangles: tris, Bounds: ComputeBounds(tris)}
}

// Len returns the triangle count.
func (c Chunk) Len() int {
	return len(c.Triangles)
}
