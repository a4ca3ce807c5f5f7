package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"pagedesigner/internal/domain"
)

// ErrEmptyDrop is returned for a drop whose payload is blank.
var ErrEmptyDrop = errors.New("empty drop payload")

// DropPayload is the item dragged from the data palette onto the page.
// Nil fields were absent from the payload.
type DropPayload struct {
	Text    *string `json:"text,omitempty"`
	Label   *string `json:"label,omitempty"`
	Value   *string `json:"value,omitempty"`
	DataKey *string `json:"dataKey,omitempty"`
}

// ParseDropPayload decodes a JSON drop payload.
func ParseDropPayload(raw []byte) (DropPayload, error) {
	var p DropPayload
	if len(raw) == 0 {
		return p, ErrEmptyDrop
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse drop payload: %w", err)
	}
	return p, nil
}

// Content is the text the dropped element shows: the explicit text, else
// "label: value" when a value is present, else the label.
func (p DropPayload) Content() string {
	if p.Text != nil {
		return *p.Text
	}
	label := deref(p.Label)
	if v := deref(p.Value); v != "" {
		return label + ": " + v
	}
	return label
}

// Key is the binding key: the explicit data key, else the label.
func (p DropPayload) Key() string {
	if p.DataKey != nil {
		return *p.DataKey
	}
	return deref(p.Label)
}

// Drop adds a text element for a palette item released at pixel (px, py)
// relative to the page's rendered box of renderedW × renderedH pixels.
// It reports false when the rendered box is degenerate.
func (s *Session) Drop(p DropPayload, px, py, renderedW, renderedH float64) (Added, bool) {
	if renderedW <= 0 || renderedH <= 0 {
		return Added{}, false
	}
	x := px / renderedW * s.doc.Page.WidthMM
	y := py / renderedH * s.doc.Page.HeightMM
	content := p.Content()
	return s.AddElement(domain.KindText, AddRequest{X: &x, Y: &y, Content: &content, DataKey: p.Key()})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
