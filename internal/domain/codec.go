package domain

import (
	"encoding/json"
	"fmt"
)

// WireDocument is a Layout Document as read from a collaborator, before the
// editor normalizes units and ids. Page dimensions are nil when absent.
type WireDocument struct {
	Elements   []Element
	PageWidth  *float64
	PageHeight *float64
	Skipped    int // elements dropped because they could not be decoded
}

// DecodeDocument parses a Layout Document leniently. Only a top-level value
// that is not a JSON object is an error; an elements field that is not an
// array yields no elements, and undecodable elements are skipped.
func DecodeDocument(data []byte) (WireDocument, error) {
	var raw struct {
		Elements   json.RawMessage `json:"elements"`
		PageWidth  *float64        `json:"pageWidth"`
		PageHeight *float64        `json:"pageHeight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return WireDocument{}, fmt.Errorf("decode layout document: %w", err)
	}
	doc := WireDocument{PageWidth: raw.PageWidth, PageHeight: raw.PageHeight}

	var items []json.RawMessage
	if len(raw.Elements) == 0 || json.Unmarshal(raw.Elements, &items) != nil {
		return doc, nil
	}
	for _, item := range items {
		var e Element
		if err := json.Unmarshal(item, &e); err != nil {
			doc.Skipped++
			continue
		}
		doc.Elements = append(doc.Elements, e)
	}
	return doc, nil
}

// EncodeDocument writes an indented Layout Document.
func EncodeDocument(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout document: %w", err)
	}
	return data, nil
}

// Document returns the decoded document as stored, in millimetres. A
// missing or invalid page size reads as A4.
func (w WireDocument) Document() Document {
	page := A4()
	if w.PageWidth != nil && w.PageHeight != nil {
		if p := (Page{WidthMM: *w.PageWidth, HeightMM: *w.PageHeight}); p.Valid() {
			page = p
		}
	}
	return Document{Elements: w.Elements, Page: page}
}

// UnmarshalJSON reads a Layout Document with the same leniency as
// DecodeDocument.
func (d *Document) UnmarshalJSON(data []byte) error {
	w, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	*d = w.Document()
	return nil
}
