// Package registrar maps an independently authored triangle set onto the
// chunks of a visual model using only axis-aligned bounds.
//
// The authoritative set (collision geometry) may be pre-scaled, rotated by a
// multiple of 90 degrees about Y, or have X and Z exchanged relative to the
// visual chunks. The transform between the two frames is estimated from the
// overall bounds of each side; triangles are then assigned to chunks by
// centroid containment in the authoritative frame.
package registrar

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/Faultbox/levelchunk/pkg/colmesh"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// Registration errors.
var (
	ErrDegenerateExtent = errors.New("no rotation candidate has a usable extent")
	ErrNoTargets        = errors.New("no target chunks to register against")
)

// Rotations are the candidate rotations about Y, in degrees.
var Rotations = [4]int{0, 90, 180, 270}

// minExtent is the smallest rotated extent a candidate may have.
const minExtent = 0.001

// Transform maps authoritative coordinates into the visual frame:
// rotate about Y, divide by scale, add offset. Y has its own scale.
type Transform struct {
	Rotation int
	// Scale is authoritative units per visual unit in X and Z.
	Scale  float64
	ScaleY float64
	Offset mgl64.Vec3
	// SwapXZ is set when the visual frame has X and Z exchanged.
	SwapXZ bool
	// Error is |scaleX - scaleZ| of the chosen rotation.
	Error float64
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: 1, ScaleY: 1}
}

// Apply maps an authoritative point into the visual frame.
func (t Transform) Apply(p math.Vec3) math.Vec3 {
	xz := rotate(t.Rotation, mgl64.Vec2{float64(p.X), float64(p.Z)})
	out := math.Vec3{
		X: float32(xz.X()/t.Scale + t.Offset.X()),
		Y: float32(float64(p.Y)/t.ScaleY + t.Offset.Y()),
		Z: float32(xz.Y()/t.Scale + t.Offset.Z()),
	}
	if t.SwapXZ {
		out = out.SwapXZ()
	}
	return out
}

// rotate turns an X-Z point by deg degrees. Exact quarter turns avoid the
// rounding error of sin and cos at multiples of 90.
func rotate(deg int, p mgl64.Vec2) mgl64.Vec2 {
	switch ((deg % 360) + 360) % 360 {
	case 0:
		return p
	case 90:
		return mgl64.Vec2{-p.Y(), p.X()}
	case 180:
		return mgl64.Vec2{-p.X(), -p.Y()}
	case 270:
		return mgl64.Vec2{p.Y(), -p.X()}
	}
	return mgl64.Rotate2D(mgl64.DegToRad(float64(deg))).Mul2x1(p)
}

// DetectAxisSwap reports whether the authoritative set is long in X while
// the visual set is long in Z, each by more than a factor of two.
func DetectAxisSwap(authoritative, visual math.Bounds) bool {
	a, v := authoritative.Extent(), visual.Extent()
	return a.X > a.Z*2 && v.Z > v.X*2
}

// Estimate finds the rotation, scale and offset that best map the
// authoritative bounds onto the visual bounds. When an axis swap is detected
// the visual bounds are compared with X and Z exchanged.
func Estimate(authoritative, visual math.Bounds) (Transform, error) {
	swap := DetectAxisSwap(authoritative, visual)
	if swap {
		visual = visual.SwapXZ()
	}

	aMin, aMax := authoritative.Min, authoritative.Max
	vMin, vExt := visual.Min, visual.Extent()
	corners := [4]mgl64.Vec2{
		{float64(aMin.X), float64(aMin.Z)},
		{float64(aMin.X), float64(aMax.Z)},
		{float64(aMax.X), float64(aMin.Z)},
		{float64(aMax.X), float64(aMax.Z)},
	}

	best := Transform{Error: stdmath.Inf(1)}
	found := false
	for _, deg := range Rotations {
		lo := mgl64.Vec2{stdmath.Inf(1), stdmath.Inf(1)}
		hi := mgl64.Vec2{stdmath.Inf(-1), stdmath.Inf(-1)}
		for _, c := range corners {
			r := rotate(deg, c)
			lo = mgl64.Vec2{stdmath.Min(lo.X(), r.X()), stdmath.Min(lo.Y(), r.Y())}
			hi = mgl64.Vec2{stdmath.Max(hi.X(), r.X()), stdmath.Max(hi.Y(), r.Y())}
		}
		span := hi.Sub(lo)
		if span.X() < minExtent || span.Y() < minExtent ||
			float64(vExt.X) < minExtent || float64(vExt.Z) < minExtent {
			continue
		}

		sx := span.X() / float64(vExt.X)
		sz := span.Y() / float64(vExt.Z)
		if e := stdmath.Abs(sx - sz); e < best.Error {
			scale := (sx + sz) / 2
			best = Transform{
				Rotation: deg,
				Scale:    scale,
				SwapXZ:   swap,
				Error:    e,
				Offset: mgl64.Vec3{
					float64(vMin.X) - lo.X()/scale,
					0,
					float64(vMin.Z) - lo.Y()/scale,
				},
			}
			found = true
		}
	}
	if !found {
		return Transform{}, ErrDegenerateExtent
	}

	best.ScaleY = best.Scale
	aSpanY := float64(aMax.Y - aMin.Y)
	vSpanY := float64(vExt.Y)
	if aSpanY > minExtent && vSpanY > minExtent {
		best.ScaleY = aSpanY / vSpanY
	}
	best.Offset[1] = float64(vMin.Y) - float64(aMin.Y)/best.ScaleY
	return best, nil
}

// Options controls triangle assignment.
type Options struct {
	// ScaleFactor converts visual chunk bounds into authoritative units.
	// Values <= 0 use the estimated transform scale.
	ScaleFactor float64
	// Margin grows every scaled chunk box on all sides, in authoritative units.
	Margin float64
}

// Result is the outcome of registering one triangle set.
type Result struct {
	// Transform is nil when estimation failed but a fixed scale factor
	// allowed assignment to proceed.
	Transform *Transform
	SwapXZ    bool
	Scale     float64
	Chunks    [][]colmesh.Triangle
	// Fallbacks counts triangles placed by the nearest-center rule.
	Fallbacks int
}

// Assigned returns the number of triangles across all chunks.
func (r *Result) Assigned() int {
	n := 0
	for _, c := range r.Chunks {
		n += len(c)
	}
	return n
}

// Empty returns the indices of chunks that received no triangles.
func (r *Result) Empty() []int {
	var empty []int
	for i, c := range r.Chunks {
		if len(c) == 0 {
			empty = append(empty, i)
		}
	}
	return empty
}

// Bounds returns the box around every vertex of tris.
func Bounds(tris []colmesh.Triangle) math.Bounds {
	b := math.EmptyBounds()
	for _, t := range tris {
		for _, p := range t {
			b = b.Extend(p)
		}
	}
	return b
}

// Register splits tris into len(targets) chunks matching the visual chunk
// bounds in targets. Every triangle lands in exactly one chunk and the
// result always has one entry per target, empty or not.
func Register(tris []colmesh.Triangle, targets []math.Bounds, opts Options) (*Result, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	visual := math.EmptyBounds()
	for _, b := range targets {
		visual = visual.Union(b)
	}
	authoritative := Bounds(tris)

	res := &Result{SwapXZ: DetectAxisSwap(authoritative, visual), Scale: opts.ScaleFactor}
	if len(tris) > 0 {
		t, err := Estimate(authoritative, visual)
		switch {
		case err == nil:
			res.Transform = &t
		case opts.ScaleFactor <= 0:
			return nil, err
		}
	}
	if res.Scale <= 0 {
		res.Scale = 1
		if res.Transform != nil {
			res.Scale = res.Transform.Scale
		}
	}

	res.Chunks, res.Fallbacks = Assign(tris, Targets(targets, res.Scale, res.SwapXZ), opts.Margin)
	return res, nil
}

// Targets converts visual chunk bounds into authoritative space.
func Targets(chunks []math.Bounds, scale float64, swapXZ bool) []math.Bounds {
	out := make([]math.Bounds, len(chunks))
	for i, b := range chunks {
		s := b.Scaled(float32(scale))
		if swapXZ {
			s = s.SwapXZ()
		}
		out[i] = s
	}
	return out
}

// Assign places each triangle in the first target whose margin-expanded box
// contains its centroid, or else in the target with the nearest center.
// It returns one slice per target and the number of fallback placements.
func Assign(tris []colmesh.Triangle, targets []math.Bounds, margin float64) ([][]colmesh.Triangle, int) {
	chunks := make([][]colmesh.Triangle, len(targets))
	if len(targets) == 0 {
		return chunks, 0
	}

	centers := make([]mgl64.Vec3, len(targets))
	for i, b := range targets {
		centers[i] = vec(b.Center())
	}

	fallbacks := 0
	for _, tri := range tris {
		c := tri.Centroid()
		idx := -1
		for i, b := range targets {
			if b.Contains(c, float32(margin)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			idx = nearest(vec(c), centers)
			fallbacks++
		}
		chunks[idx] = append(chunks[idx], tri)
	}
	return chunks, fallbacks
}

func nearest(p mgl64.Vec3, centers []mgl64.Vec3) int {
	best, bestDist := 0, stdmath.Inf(1)
	for i, c := range centers {
		d := p.Sub(c)
		if dist := d.Dot(d); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func vec(v math.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}
