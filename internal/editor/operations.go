package editor

import (
	"math"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/geometry"
	"pagedesigner/internal/layout"
)

// DefaultTextContent is the content of a text element added without any.
const DefaultTextContent = "Text"

// AddRequest describes a new element. X and Y select explicit placement
// when both are set; otherwise the element is auto-placed.
type AddRequest struct {
	X       *float64
	Y       *float64
	Content *string     // initial text content
	DataKey string      // binding key for text and image elements
	Size    layout.Size // zero dimensions keep the default
}

// Added reports the element created by an add operation. Fallback is set
// when no collision-free position existed.
type Added struct {
	Element  domain.Element `json:"element"`
	Fallback bool           `json:"fallback"`
}

// Patch is a partial update. Nil fields are left alone; fields that do not
// apply to the element's kind are ignored. Style replaces the whole style.
type Patch struct {
	X        *float64
	Y        *float64
	W        *float64
	H        *float64
	Rotation *float64
	Style    *domain.Style
	Content  *string
	DataKey  *string
	Src      *string
	Table    *domain.TableBody
}

// AddElement places and appends a new element of the given kind and
// selects it. It reports false for an unknown kind.
func (s *Session) AddElement(kind domain.Kind, req AddRequest) (Added, bool) {
	var body domain.Body
	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	switch kind {
	case domain.KindText:
		text := DefaultTextContent
		if req.Content != nil {
			text = content
		}
		body = domain.TextBody{Content: text, DataKey: req.DataKey}
	case domain.KindImage:
		body = domain.ImageBody{DataKey: req.DataKey}
	case domain.KindRect:
		body = domain.RectBody{}
	case domain.KindLine:
		body = domain.LineBody{}
	case domain.KindTable:
		body = domain.DefaultTable()
	default:
		return Added{}, false
	}

	size := s.engine.SizeFor(kind, content, req.Content != nil, req.Size)
	var p layout.Placement
	if req.X != nil && req.Y != nil {
		p = s.engine.PlaceAt(s.doc, size, *req.X, *req.Y)
	} else {
		p = s.engine.PlaceAuto(s.doc, size)
	}

	el := domain.Element{
		ID:    s.newID(),
		X:     p.X,
		Y:     p.Y,
		W:     p.W,
		H:     p.H,
		Style: domain.DefaultStyle(kind),
		Body:  body,
	}
	next := s.working()
	next.Elements = append(next.Elements, el)
	s.commit(next)
	s.selected = el.ID
	return Added{Element: el.Clone(), Fallback: p.Fallback}, true
}

// AddFrame appends a new container frame and selects it. Any previous
// container loses the flag so at most one container exists.
func (s *Session) AddFrame() Added {
	p := s.engine.PlaceFrame(s.doc)
	el := domain.Element{
		ID:          s.newID(),
		X:           p.X,
		Y:           p.Y,
		W:           p.W,
		H:           p.H,
		Style:       domain.FrameStyle(),
		IsContainer: true,
		Body:        domain.RectBody{},
	}
	next := s.working()
	for i := range next.Elements {
		next.Elements[i].IsContainer = false
	}
	next.Elements = append(next.Elements, el)
	s.commit(next)
	s.selected = el.ID
	return Added{Element: el, Fallback: p.Fallback}
}

// UpdateElement applies patch to the element with the given id. Width and
// height are floored at the minimum size.
func (s *Session) UpdateElement(id string, patch Patch) bool {
	i := s.doc.Index(id)
	if i < 0 {
		return false
	}
	next := s.working()
	el := next.Elements[i].Clone()
	if patch.X != nil {
		el.X = *patch.X
	}
	if patch.Y != nil {
		el.Y = *patch.Y
	}
	if patch.W != nil {
		el.W = s.engine.FloorSize(*patch.W)
	}
	if patch.H != nil {
		el.H = s.engine.FloorSize(*patch.H)
	}
	if patch.Rotation != nil {
		el.Rotation = *patch.Rotation
	}
	if patch.Style != nil {
		el.Style = *patch.Style
	}
	switch b := el.Body.(type) {
	case domain.TextBody:
		if patch.Content != nil {
			b.Content = *patch.Content
		}
		if patch.DataKey != nil {
			b.DataKey = *patch.DataKey
		}
		el.Body = b
	case domain.ImageBody:
		if patch.Src != nil {
			b.Src = *patch.Src
		}
		if patch.DataKey != nil {
			b.DataKey = *patch.DataKey
		}
		el.Body = b
	case domain.TableBody:
		if patch.Table != nil {
			el.Body = patch.Table.Normalize()
		}
	case domain.RectBody, domain.LineBody:
	}
	next.Elements[i] = el
	s.commit(next)
	return true
}

// UpdateElementPosition commits the result of a move or resize gesture.
// The proposed box is constrained to the page and, for non-container
// elements, to the container. It reports false when the id is unknown or
// the constrained box equals the current one.
func (s *Session) UpdateElementPosition(id string, x, y, w, h float64) bool {
	i := s.doc.Index(id)
	if i < 0 {
		return false
	}
	r := s.engine.Constrain(s.doc, id, geometry.Rect{X: x, Y: y, W: w, H: h})
	if r == s.doc.Elements[i].Rect() {
		return false
	}
	next := s.working()
	next.Elements[i].X, next.Elements[i].Y = r.X, r.Y
	next.Elements[i].W, next.Elements[i].H = r.W, r.H
	s.commit(next)
	return true
}

// CommitDrag finishes a move gesture that ended with the element's origin
// at (x, y). Motion within the deadband in both axes is a click: nothing
// changes and false is returned.
func (s *Session) CommitDrag(id string, x, y float64) bool {
	el, ok := s.doc.Find(id)
	if !ok {
		return false
	}
	dx := math.Abs(x-el.X) * domain.PxPerMM
	dy := math.Abs(y-el.Y) * domain.PxPerMM
	if dx <= s.cfg.DragDeadbandPx && dy <= s.cfg.DragDeadbandPx {
		return false
	}
	return s.UpdateElementPosition(id, x, y, el.W, el.H)
}

// DeleteElement removes the element and clears the selection if it was
// selected.
func (s *Session) DeleteElement(id string) bool {
	i := s.doc.Index(id)
	if i < 0 {
		return false
	}
	next := s.working()
	next.Elements = append(next.Elements[:i], next.Elements[i+1:]...)
	s.commit(next)
	if s.selected == id {
		s.selected = ""
	}
	return true
}

// DuplicateElement appends a deep copy of the element with a new id,
// offset by DuplicateOffset on both axes, and selects it. The copy is never
// a container.
func (s *Session) DuplicateElement(id string) (domain.Element, bool) {
	src, ok := s.doc.Find(id)
	if !ok {
		return domain.Element{}, false
	}
	cp := src.Clone()
	cp.ID = s.newID()
	cp.X += s.cfg.DuplicateOffset
	cp.Y += s.cfg.DuplicateOffset
	cp.IsContainer = false

	next := s.working()
	next.Elements = append(next.Elements, cp)
	s.commit(next)
	s.selected = cp.ID
	return cp.Clone(), true
}

// SetContainer makes the rectangle with the given id the only container.
// An empty id clears the container. Unknown ids, non-rectangles and calls
// that change nothing report false.
func (s *Session) SetContainer(id string) bool {
	if id != "" {
		el, ok := s.doc.Find(id)
		if !ok || el.Kind() != domain.KindRect {
			return false
		}
	}
	changed := false
	for _, el := range s.doc.Elements {
		if el.IsContainer != (el.ID == id) {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}
	next := s.working()
	for i := range next.Elements {
		next.Elements[i].IsContainer = next.Elements[i].ID == id
	}
	s.commit(next)
	return true
}

// BringForward swaps the element with the next one in the sequence.
func (s *Session) BringForward(id string) bool {
	i := s.doc.Index(id)
	if i < 0 || i >= len(s.doc.Elements)-1 {
		return false
	}
	return s.swap(i, i+1)
}

// SendBackward swaps the element with the previous one in the sequence.
func (s *Session) SendBackward(id string) bool {
	i := s.doc.Index(id)
	if i <= 0 {
		return false
	}
	return s.swap(i-1, i)
}

func (s *Session) swap(i, j int) bool {
	next := s.working()
	next.Elements[i], next.Elements[j] = next.Elements[j], next.Elements[i]
	s.commit(next)
	return true
}

// ResizeTable changes a table's dimensions, keeping existing cells.
func (s *Session) ResizeTable(id string, rows, cols int) bool {
	el, ok := s.doc.Find(id)
	if !ok {
		return false
	}
	tb, ok := el.Body.(domain.TableBody)
	if !ok {
		return false
	}
	resized := tb.Resize(rows, cols)
	return s.UpdateElement(id, Patch{Table: &resized})
}

// SetTableCell writes one cell of a table.
func (s *Session) SetTableCell(id string, row, col int, value string) bool {
	el, ok := s.doc.Find(id)
	if !ok {
		return false
	}
	tb, ok := el.Body.(domain.TableBody)
	if !ok || row < 0 || row >= tb.Rows || col < 0 || col >= tb.Cols {
		return false
	}
	tb = tb.Normalize()
	tb.Data[row][col] = value
	return s.UpdateElement(id, Patch{Table: &tb})
}
