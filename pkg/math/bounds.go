package math

import "math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added to b.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns b grown to include p.
func (b Bounds) Extend(p Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Extent returns Max - Min.
func (b Bounds) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies inside b grown by margin on every side.
func (b Bounds) Contains(p Vec3, margin float32) bool {
	return b.Min.X-margin <= p.X && p.X <= b.Max.X+margin &&
		b.Min.Y-margin <= p.Y && p.Y <= b.Max.Y+margin &&
		b.Min.Z-margin <= p.Z && p.Z <= b.Max.Z+margin
}

// Scaled returns b with both corners multiplied by s.
func (b Bounds) Scaled(s float32) Bounds {
	return Bounds{Min: b.Min.Scale(s), Max: b.Max.Scale(s)}
}

// SwapXZ returns b with the X and Z axes exchanged.
func (b Bounds) SwapXZ() Bounds {
	return Bounds{Min: b.Min.SwapXZ(), Max: b.Max.SwapXZ()}
}

// LongestAxis returns the axis with the largest extent.
// Ties prefer X, then Y, then Z.
func (b Bounds) LongestAxis() int {
	e := b.Extent()
	switch {
	case e.X >= e.Y && e.X >= e.Z:
		return 0
	case e.Y >= e.X && e.Y >= e.Z:
		return 1
	default:
		return 2
	}
}
