package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"pagedesigner/internal/geometry"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindRect  Kind = "rect"
	KindLine  Kind = "line"
	KindTable Kind = "table"
)

// Kinds lists every element kind in palette order.
var Kinds = []Kind{KindText, KindImage, KindRect, KindLine, KindTable}

// Sentinel image keys filled with signature images by the data binding.
const (
	SignatureKey1 = "__sign1Img__"
	SignatureKey2 = "__sign2Img__"
)

// ErrUnknownKind is returned when decoding an element whose type is not one of Kinds.
var ErrUnknownKind = errors.New("unknown element kind")

// Body is the kind-specific part of an element. The set of bodies is closed:
// TextBody, ImageBody, RectBody, LineBody and TableBody.
type Body interface {
	Kind() Kind
	cloneBody() Body
}

// TextBody is a text run. When DataKey is set the editor shows the key and
// the export path substitutes the bound value.
type TextBody struct {
	Content string
	DataKey string
}

// ImageBody is an image; an empty Src is a placeholder.
type ImageBody struct {
	Src     string
	DataKey string
}

type RectBody struct{}

type LineBody struct{}

// TableBody is a rows×cols grid of text cells stored row-major.
type TableBody struct {
	Rows        int
	Cols        int
	Data        [][]string
	Border      bool
	CellPadding float64
}

func (TextBody) Kind() Kind  { return KindText }
func (ImageBody) Kind() Kind { return KindImage }
func (RectBody) Kind() Kind  { return KindRect }
func (LineBody) Kind() Kind  { return KindLine }
func (TableBody) Kind() Kind { return KindTable }

func (b TextBody) cloneBody() Body  { return b }
func (b ImageBody) cloneBody() Body { return b }
func (b RectBody) cloneBody() Body  { return b }
func (b LineBody) cloneBody() Body  { return b }
func (b TableBody) cloneBody() Body {
	b.Data = cloneCells(b.Data)
	return b
}

// DefaultTable returns the 3×3 bordered table every new table starts with.
func DefaultTable() TableBody {
	return TableBody{Rows: 3, Cols: 3, Border: true, CellPadding: 4}.Normalize()
}

// Resize returns a copy with the given dimensions. Existing cells are kept,
// new cells are empty and cells outside the new bounds are dropped.
func (b TableBody) Resize(rows, cols int) TableBody {
	b.Rows, b.Cols = rows, cols
	return b.Normalize()
}

// Normalize returns a copy whose Data has exactly Rows rows of Cols cells.
// Dimensions below one are raised to one.
func (b TableBody) Normalize() TableBody {
	if b.Rows < 1 {
		b.Rows = 1
	}
	if b.Cols < 1 {
		b.Cols = 1
	}
	data := make([][]string, b.Rows)
	for r := range data {
		row := make([]string, b.Cols)
		if r < len(b.Data) {
			copy(row, b.Data[r])
		}
		data[r] = row
	}
	b.Data = data
	return b
}

// Cell returns the value at (row, col) or "" when out of range.
func (b TableBody) Cell(row, col int) string {
	if row < 0 || row >= len(b.Data) || col < 0 || col >= len(b.Data[row]) {
		return ""
	}
	return b.Data[row][col]
}

// Element is one placed object on the page.
type Element struct {
	ID          string
	X           float64
	Y           float64
	W           float64
	H           float64
	Rotation    float64 // degrees
	Style       Style
	IsContainer bool
	Body        Body
}

// Kind returns the element's kind. A nil body reads as a rectangle.
func (e Element) Kind() Kind {
	if e.Body == nil {
		return KindRect
	}
	return e.Body.Kind()
}

// Rect returns the element's bounding box.
func (e Element) Rect() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// Clone returns a deep copy; table cells are copied too.
func (e Element) Clone() Element {
	if e.Body != nil {
		e.Body = e.Body.cloneBody()
	}
	return e
}

// DataKey returns the binding key of text and image elements.
func (e Element) DataKey() string {
	switch b := e.Body.(type) {
	case TextBody:
		return b.DataKey
	case ImageBody:
		return b.DataKey
	}
	return ""
}

// ── JSON ───────────────────────────────────────────────────

type elementJSON struct {
	ID          string     `json:"id"`
	Type        Kind       `json:"type"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	W           float64    `json:"w"`
	H           float64    `json:"h"`
	Rotate      float64    `json:"rotate,omitempty"`
	Style       *Style     `json:"style,omitempty"`
	Content     *string    `json:"content,omitempty"`
	DataKey     string     `json:"dataKey,omitempty"`
	Src         *string    `json:"src,omitempty"`
	Table       *tableJSON `json:"table,omitempty"`
	IsContainer bool       `json:"isContainer,omitempty"`
}

type tableJSON struct {
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	Data        [][]string `json:"data,omitempty"`
	Border      bool       `json:"border"`
	CellPadding float64    `json:"cellPadding"`
}

// MarshalJSON writes the flat wire shape shared with the import/export and
// persistence collaborators.
func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{
		ID:          e.ID,
		Type:        e.Kind(),
		X:           e.X,
		Y:           e.Y,
		W:           e.W,
		H:           e.H,
		Rotate:      e.Rotation,
		IsContainer: e.IsContainer,
	}
	if !e.Style.IsZero() {
		s := e.Style
		out.Style = &s
	}
	switch b := e.Body.(type) {
	case TextBody:
		out.Content = &b.Content
		out.DataKey = b.DataKey
	case ImageBody:
		out.Src = &b.Src
		out.DataKey = b.DataKey
	case TableBody:
		out.Table = &tableJSON{Rows: b.Rows, Cols: b.Cols, Data: b.Data, Border: b.Border, CellPadding: b.CellPadding}
	case RectBody, LineBody, nil:
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat wire shape. Table data is normalized to the
// declared dimensions.
func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	el := Element{
		ID:          in.ID,
		X:           in.X,
		Y:           in.Y,
		W:           in.W,
		H:           in.H,
		Rotation:    in.Rotate,
		IsContainer: in.IsContainer,
	}
	if in.Style != nil {
		el.Style = *in.Style
	}
	switch in.Type {
	case KindText:
		tb := TextBody{DataKey: in.DataKey}
		if in.Content != nil {
			tb.Content = *in.Content
		}
		el.Body = tb
	case KindImage:
		ib := ImageBody{DataKey: in.DataKey}
		if in.Src != nil {
			ib.Src = *in.Src
		}
		el.Body = ib
	case KindRect:
		el.Body = RectBody{}
	case KindLine:
		el.Body = LineBody{}
	case KindTable:
		tb := DefaultTable()
		if in.Table != nil {
			tb = TableBody{
				Rows:        in.Table.Rows,
				Cols:        in.Table.Cols,
				Data:        in.Table.Data,
				Border:      in.Table.Border,
				CellPadding: in.Table.CellPadding,
			}.Normalize()
		}
		el.Body = tb
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, in.Type)
	}
	*e = el
	return nil
}

func cloneCells(data [][]string) [][]string {
	if data == nil {
		return nil
	}
	out := make([][]string, len(data))
	for i, row := range data {
		out[i] = make([]string, len(row))
		copy(out[i], row)
	}
	return out
}
