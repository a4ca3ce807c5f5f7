package layout

import (
	"pagedesigner/internal/domain"
	"pagedesigner/internal/geometry"
)

// Placement is the box chosen for a new element. Fallback is set when no
// collision-free spot was found and the box may overlap others.
type Placement struct {
	geometry.Rect
	Fallback bool
}

// compass offsets tried around a drop point: N, S, E, W, NE, NW, SE, SW.
var compass = [8][2]float64{
	{0, -1}, {0, 1}, {1, 0}, {-1, 0},
	{1, -1}, {-1, -1}, {1, 1}, {-1, 1},
}

// PlaceAt positions a box of the given size at an explicit drop point.
// The box is clamped inside the page and snapped; when it collides, rings
// of compass offsets at growing multiples of the grid step are tried up to
// SearchBound. If none is free the clamped drop position is returned.
func (e *Engine) PlaceAt(doc domain.Document, size Size, x, y float64) Placement {
	occupied := obstacles(doc, false)
	origin := e.clampToPage(doc.Page, size, x, y)
	if !geometry.OverlapsAny(origin, occupied) {
		return Placement{Rect: origin}
	}

	for k := 1; float64(k)*e.cfg.GridStep <= e.cfg.SearchBound; k++ {
		d := float64(k) * e.cfg.GridStep
		for _, dir := range compass {
			candidate := e.clampToPage(doc.Page, size, origin.X+dir[0]*d, origin.Y+dir[1]*d)
			if !geometry.OverlapsAny(candidate, occupied) {
				return Placement{Rect: candidate}
			}
		}
	}
	return Placement{Rect: origin, Fallback: true}
}

// PlaceAuto finds the first free grid position in row-major order, inside
// the container's interior when there is one, otherwise on the whole page.
// A full page yields the fallback origin.
func (e *Engine) PlaceAuto(doc domain.Document, size Size) Placement {
	occupied := obstacles(doc, false)
	if c, ok := doc.Container(); ok {
		inner := geometry.Rect{
			X: c.X + e.cfg.GridStep,
			Y: c.Y + e.cfg.GridStep,
			W: c.W - 2*e.cfg.GridStep,
			H: c.H - 2*e.cfg.GridStep,
		}
		if r, ok := e.scan(inner, size, occupied); ok {
			return Placement{Rect: r}
		}
	}
	if r, ok := e.scan(e.pageArea(doc.Page), size, occupied); ok {
		return Placement{Rect: r}
	}
	return e.fallback(size)
}

// PlaceFrame positions a new container frame. Every existing element,
// including an old container, is an obstacle.
func (e *Engine) PlaceFrame(doc domain.Document) Placement {
	size := e.cfg.Frame
	if r, ok := e.scan(e.pageArea(doc.Page), size, obstacles(doc, true)); ok {
		return Placement{Rect: r}
	}
	return e.fallback(size)
}

// scan walks grid positions inside area top-to-bottom, left-to-right and
// returns the first box of the given size that fits inside area and
// overlaps nothing.
func (e *Engine) scan(area geometry.Rect, size Size, occupied []geometry.Rect) (geometry.Rect, bool) {
	step := e.cfg.GridStep
	startX := e.snap(area.X)
	startY := e.snap(area.Y)
	for j := 0; ; j++ {
		y := startY + float64(j)*step
		if y+size.H > area.Bottom() {
			break
		}
		if y < area.Y {
			continue
		}
		for i := 0; ; i++ {
			x := startX + float64(i)*step
			if x+size.W > area.Right() {
				break
			}
			if x < area.X {
				continue
			}
			candidate := geometry.Rect{X: x, Y: y, W: size.W, H: size.H}
			if !geometry.OverlapsAny(candidate, occupied) {
				return candidate, true
			}
		}
	}
	return geometry.Rect{}, false
}

// pageArea is the page scan region; positions start one grid step in from
// the top-left corner.
func (e *Engine) pageArea(page domain.Page) geometry.Rect {
	step := e.cfg.GridStep
	return geometry.Rect{X: step, Y: step, W: page.WidthMM - step, H: page.HeightMM - step}
}

func (e *Engine) clampToPage(page domain.Page, size Size, x, y float64) geometry.Rect {
	return geometry.Rect{
		X: e.snap(geometry.Clamp(x, 0, page.WidthMM-size.W)),
		Y: e.snap(geometry.Clamp(y, 0, page.HeightMM-size.H)),
		W: size.W,
		H: size.H,
	}
}

func (e *Engine) fallback(size Size) Placement {
	return Placement{
		Rect:     geometry.Rect{X: e.cfg.FallbackX, Y: e.cfg.FallbackY, W: size.W, H: size.H},
		Fallback: true,
	}
}
