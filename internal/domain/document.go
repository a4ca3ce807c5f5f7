package domain

import (
	"encoding/json"
	"math"
)

// Physical page constants. All model coordinates are millimetres.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
	PxPerMM    = 96 / 25.4 // CSS pixels per millimetre at 96 DPI

	// DocumentVersion is written into every exported Layout Document.
	DocumentVersion = 1
)

// Page is the fixed physical canvas size.
type Page struct {
	WidthMM  float64
	HeightMM float64
}

// A4 returns the default page.
func A4() Page {
	return Page{WidthMM: A4WidthMM, HeightMM: A4HeightMM}
}

// Valid reports whether both dimensions are positive and finite.
func (p Page) Valid() bool {
	return validDim(p.WidthMM) && validDim(p.HeightMM)
}

func validDim(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Document is the full editable state of a page: the element sequence in
// stacking order and the page size.
type Document struct {
	Elements []Element
	Page     Page
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Page: d.Page}
	if d.Elements != nil {
		out.Elements = make([]Element, len(d.Elements))
		for i, e := range d.Elements {
			out.Elements[i] = e.Clone()
		}
	}
	return out
}

// Index returns the position of the element with the given id, or -1.
func (d Document) Index(id string) int {
	for i, e := range d.Elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the element with the given id.
func (d Document) Find(id string) (Element, bool) {
	if i := d.Index(id); i >= 0 {
		return d.Elements[i].Clone(), true
	}
	return Element{}, false
}

// Container returns the container frame, if any.
func (d Document) Container() (Element, bool) {
	for _, e := range d.Elements {
		if e.IsContainer {
			return e, true
		}
	}
	return Element{}, false
}

// PaintOrder returns the elements in drawing order: containers first, then
// every other element, each tier keeping sequence order.
func (d Document) PaintOrder() []Element {
	out := make([]Element, 0, len(d.Elements))
	for _, e := range d.Elements {
		if e.IsContainer {
			out = append(out, e.Clone())
		}
	}
	for _, e := range d.Elements {
		if !e.IsContainer {
			out = append(out, e.Clone())
		}
	}
	return out
}

// documentJSON is the Layout Document wire shape.
type documentJSON struct {
	Version    int       `json:"version,omitempty"`
	Elements   []Element `json:"elements"`
	PageWidth  float64   `json:"pageWidth"`
	PageHeight float64   `json:"pageHeight"`
}

// MarshalJSON writes the Layout Document with elements in paint order.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON{
		Version:    DocumentVersion,
		Elements:   d.PaintOrder(),
		PageWidth:  d.Page.WidthMM,
		PageHeight: d.Page.HeightMM,
	})
}
