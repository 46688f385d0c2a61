package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/levelchunk/internal/geom"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// strip builds n small triangles laid out along X and wrapping every 50 in Z.
// Each triangle is tagged with its creation index through Material.
func strip(n int) []geom.Triangle {
	tris := make([]geom.Triangle, n)
	for i := range tris {
		x := float32(i%50) * 2
		z := float32(i/50) * 3
		tris[i] = geom.Triangle{
			Positions: [3]math.Vec3{
				{X: x, Y: 0, Z: z},
				{X: x + 1, Y: float32(i % 7), Z: z},
				{X: x, Y: 0, Z: z + 1},
			},
			Material: i,
		}
	}
	return tris
}

func TestSplit_BelowThreshold(t *testing.T) {
	tris := strip(300)
	chunks := Split(tris, 300)
	require.Len(t, chunks, 1)
	assert.Equal(t, tris, chunks[0].Triangles)
	assert.Equal(t, geom.ComputeBounds(tris), chunks[0].Bounds)
}

func TestSplit_Conservation(t *testing.T) {
	for _, n := range []int{1, 2, 301, 700, 1234} {
		for _, k := range []int{1, 7, 100, 300} {
			tris := strip(n)
			chunks := Split(tris, k)

			seen := make(map[int]int)
			total := 0
			for _, c := range chunks {
				total += c.Len()
				for _, tr := range c.Triangles {
					seen[tr.Material]++
				}
			}
			assert.Equal(t, n, total, "n=%d k=%d", n, k)
			assert.Len(t, seen, n, "n=%d k=%d", n, k)
			for id, count := range seen {
				assert.Equal(t, 1, count, "triangle %d duplicated", id)
			}
		}
	}
}

func TestSplit_ThresholdAndTightness(t *testing.T) {
	chunks := Split(strip(1000), 64)
	for i, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 64, "chunk %d", i)
		assert.NotZero(t, c.Len(), "chunk %d", i)
		for _, tr := range c.Triangles {
			for _, p := range tr.Positions {
				assert.True(t, c.Bounds.Contains(p, 0), "chunk %d vertex %v outside %v", i, p, c.Bounds)
			}
		}
	}
}

func TestSplit_700Over300(t *testing.T) {
	tris := strip(700)
	chunks := Split(tris, 300)
	require.GreaterOrEqual(t, len(chunks), 3)

	union := math.EmptyBounds()
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 300)
		union = union.Union(c.Bounds)
	}
	assert.Equal(t, geom.ComputeBounds(tris), union)
}

func TestSplit_DegenerateCentroids(t *testing.T) {
	// Identical triangles share one centroid, so every midpoint split is one-sided.
	tris := make([]geom.Triangle, 10)
	for i := range tris {
		tris[i] = geom.Triangle{
			Positions: [3]math.Vec3{{X: 0}, {X: 4}, {Z: 4}},
			Material:  i,
		}
	}

	chunks := Split(tris, 3)
	var order []int
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 3)
		assert.NotZero(t, c.Len())
		for _, tr := range c.Triangles {
			order = append(order, tr.Material)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order, "positional halving keeps input order")
}

func TestSplit_DegenerateChunksDoNotAlias(t *testing.T) {
	tris := make([]geom.Triangle, 10)
	for i := range tris {
		tris[i] = geom.Triangle{Positions: [3]math.Vec3{{X: 0}, {X: 4}, {Z: 4}}, Material: i}
	}

	chunks := Split(tris, 3)
	require.Greater(t, len(chunks), 1)
	first := chunks[1].Triangles[0].Material

	chunks[0].Triangles = append(chunks[0].Triangles, geom.Triangle{Material: 99})
	assert.Equal(t, first, chunks[1].Triangles[0].Material, "growing one chunk must not overwrite the next")
}

func TestSplit_TieBreakPrefersX(t *testing.T) {
	// Two clusters on a cube's diagonal: equal extents on every axis.
	mk := func(o float32) geom.Triangle {
		return geom.Triangle{Positions: [3]math.Vec3{
			{X: o, Y: o, Z: o}, {X: o + 1, Y: o, Z: o}, {X: o, Y: o + 1, Z: o + 1},
		}}
	}
	tris := []geom.Triangle{mk(9), mk(0), mk(9), mk(0)}

	chunks := Split(tris, 2)
	require.Len(t, chunks, 2)
	for _, tr := range chunks[0].Triangles {
		assert.Equal(t, float32(0), tr.Positions[0].X, "left chunk holds the low-X cluster")
	}
}

func TestSplit_LeftBeforeRight(t *testing.T) {
	chunks := Split(strip(50), 10)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i-1].Bounds.Max.X, chunks[i].Bounds.Min.X+1,
			"chunks along a single row are ordered by X")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(Split(strip(700), 300))
	assert.Equal(t, 700, s.Triangles)
	assert.GreaterOrEqual(t, s.Chunks, 3)
	assert.LessOrEqual(t, s.MaxTriangles, 300)
	assert.Positive(t, s.MinTriangles)
}
