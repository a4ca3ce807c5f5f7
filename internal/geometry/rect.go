// Package geometry holds the pure rectangle and grid helpers used by the
// layout engine. All values are millimetres with a top-left origin.
package geometry

import "math"

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the far edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the far edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inside reports whether r lies entirely within outer (edges may coincide).
func (r Rect) Inside(outer Rect) bool {
	return r.X >= outer.X && r.Y >= outer.Y &&
		r.Right() <= outer.Right() && r.Bottom() <= outer.Bottom()
}

// Overlaps reports whether the open interiors of a and b intersect.
// Boxes that only share an edge do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W &&
		a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// OverlapsAny reports whether r overlaps any of others.
func OverlapsAny(r Rect, others []Rect) bool {
	for _, o := range others {
		if Overlaps(r, o) {
			return true
		}
	}
	return false
}

// Snap rounds v to the nearest multiple of step. A non-positive step
// leaves v unchanged.
func Snap(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// Clamp limits v to [lo, hi]. When the range is empty (hi < lo) lo wins,
// so an oversized box is pinned to the origin rather than pushed negative.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
