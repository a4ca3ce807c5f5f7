package editor

import (
	"fmt"

	"pagedesigner/internal/domain"
)

// Legacy page size in CSS pixels. Documents saved with exactly this page
// size store every coordinate in pixels.
const (
	LegacyPageWidthPx  = 794.0
	LegacyPageHeightPx = 1123.0
)

// Load replaces the live document with elements on a page of the given
// size and resets history to that single state. A nil or invalid page size
// means A4; the legacy pixel page is converted to millimetres. The loaded
// elements are normalized: ids are unique and non-empty, only the first
// rectangle flagged as a container keeps the flag, tables are consistent
// and sizes respect the minimum.
func (s *Session) Load(elements []domain.Element, pageWidth, pageHeight *float64) {
	page := domain.A4()
	legacy := false
	if pageWidth != nil && pageHeight != nil {
		p := domain.Page{WidthMM: *pageWidth, HeightMM: *pageHeight}
		switch {
		case p.WidthMM == LegacyPageWidthPx && p.HeightMM == LegacyPageHeightPx:
			legacy = true
		case p.Valid():
			page = p
		}
	}

	doc := domain.Document{Page: page, Elements: make([]domain.Element, 0, len(elements))}
	seen := make(map[string]bool, len(elements))
	hasContainer := false
	for _, in := range elements {
		el := in.Clone()
		if legacy {
			el.X /= domain.PxPerMM
			el.Y /= domain.PxPerMM
			el.W /= domain.PxPerMM
			el.H /= domain.PxPerMM
		}
		if el.Body == nil {
			el.Body = domain.RectBody{}
		}
		if tb, ok := el.Body.(domain.TableBody); ok {
			el.Body = tb.Normalize()
		}
		el.W = s.engine.FloorSize(el.W)
		el.H = s.engine.FloorSize(el.H)

		if el.IsContainer && (hasContainer || el.Kind() != domain.KindRect) {
			el.IsContainer = false
		}
		hasContainer = hasContainer || el.IsContainer

		if el.ID == "" || seen[el.ID] {
			el.ID = s.freshID(seen)
		}
		seen[el.ID] = true
		doc.Elements = append(doc.Elements, el)
	}

	s.doc = doc
	s.selected = ""
	s.history.Reset(doc)
}

// LoadWire loads a decoded Layout Document.
func (s *Session) LoadWire(w domain.WireDocument) {
	s.Load(w.Elements, w.PageWidth, w.PageHeight)
}

// Import parses a Layout Document and loads it. On a parse error the live
// document is left untouched. It returns the number of elements that could
// not be decoded and were skipped.
func (s *Session) Import(data []byte) (int, error) {
	w, err := domain.DecodeDocument(data)
	if err != nil {
		return 0, fmt.Errorf("import layout: %w", err)
	}
	s.LoadWire(w)
	return w.Skipped, nil
}

// Export writes the live document as an indented Layout Document.
func (s *Session) Export() ([]byte, error) {
	return domain.EncodeDocument(s.doc)
}

func (s *Session) freshID(taken map[string]bool) string {
	for {
		id := s.cfg.NewID()
		if id != "" && !taken[id] {
			return id
		}
	}
}
