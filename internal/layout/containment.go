package layout

import (
	"math"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/geometry"
)

// Constrain returns the committed box for a move or resize of element id
// to the proposed box. The origin is kept on the page and snapped, the size
// is floored at MinSize and cut at the page edge. When a container exists
// and id is not the container itself, the box is further pulled inside the
// container and shrunk at its far edges.
func (e *Engine) Constrain(doc domain.Document, id string, proposed geometry.Rect) geometry.Rect {
	page := doc.Page
	minSize := e.cfg.MinSize

	x := e.snap(geometry.Clamp(proposed.X, 0, page.WidthMM-minSize))
	y := e.snap(geometry.Clamp(proposed.Y, 0, page.HeightMM-minSize))
	w := math.Max(minSize, math.Min(proposed.W, page.WidthMM-x))
	h := math.Max(minSize, math.Min(proposed.H, page.HeightMM-y))

	if c, ok := doc.Container(); ok && c.ID != id {
		x = e.snapInside(geometry.Clamp(x, c.X, c.X+c.W-w), c.X)
		y = e.snapInside(geometry.Clamp(y, c.Y, c.Y+c.H-h), c.Y)
		w = math.Min(w, c.X+c.W-x)
		h = math.Min(h, c.Y+c.H-y)
	} else {
		w = math.Min(w, page.WidthMM-x)
		h = math.Min(h, page.HeightMM-y)
	}
	return geometry.Rect{X: x, Y: y, W: w, H: h}
}

// snapInside snaps v without letting it round below lo. An off-grid lo
// moves to the first grid line at or after it.
func (e *Engine) snapInside(v, lo float64) float64 {
	v = e.snap(v)
	if v >= lo {
		return v
	}
	if step := e.cfg.GridStep; step > 0 {
		return math.Ceil(lo/step) * step
	}
	return lo
}
