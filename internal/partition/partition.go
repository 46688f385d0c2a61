// Package partition splits a triangle soup into spatially coherent chunks.
package partition

import (
	"github.com/Faultbox/levelchunk/internal/geom"
)

// Split recursively halves tris along the longest axis of their bounds until
// every chunk holds at most maxPerChunk triangles. Chunks are returned left
// before right at every split, so neighbouring chunks are spatial neighbours.
//
// maxPerChunk values below 1 are treated as 1.
func Split(tris []geom.Triangle, maxPerChunk int) []geom.Chunk {
	if maxPerChunk < 1 {
		maxPerChunk = 1
	}
	var chunks []geom.Chunk
	split(tris, maxPerChunk, &chunks)
	return chunks
}

func split(tris []geom.Triangle, maxPerChunk int, out *[]geom.Chunk) {
	if len(tris) <= maxPerChunk {
		*out = append(*out, geom.NewChunk(tris))
		return
	}

	bounds := geom.ComputeBounds(tris)
	axis := bounds.LongestAxis()
	mid := (bounds.Min.Axis(axis) + bounds.Max.Axis(axis)) / 2

	left := make([]geom.Triangle, 0, len(tris)/2)
	right := make([]geom.Triangle, 0, len(tris)/2)
	for i := range tris {
		if tris[i].Centroid().Axis(axis) < mid {
			left = append(left, tris[i])
		} else {
			right = append(right, tris[i])
		}
	}

	// Every centroid landed on one side. Fall back to a positional halving so
	// both recursions shrink. The left half is capped so appending to one
	// chunk never writes into its neighbour.
	if len(left) == 0 {
		half := len(right) / 2
		left, right = right[:half:half], right[half:]
	} else if len(right) == 0 {
		half := len(left) / 2
		left, right = left[:half:half], left[half:]
	}

	split(left, maxPerChunk, out)
	split(right, maxPerChunk, out)
}

// Stats summarizes a partition.
type Stats struct {
	Chunks       int
	Triangles    int
	MinTriangles int
	MaxTriangles int
}

// Summarize reports chunk and triangle counts.
func Summarize(chunks []geom.Chunk) Stats {
	s := Stats{Chunks: len(chunks)}
	for i, c := range chunks {
		n := c.Len()
		s.Triangles += n
		if i == 0 || n < s.MinTriangles {
			s.MinTriangles = n
		}
		if n > s.MaxTriangles {
			s.MaxTriangles = n
		}
	}
	return s
}
