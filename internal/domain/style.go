package domain

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "middle"
	AlignBottom VerticalAlign = "bottom"
)

// Style holds optional visual attributes. Border strings use the CSS
// shorthand the editor writes, e.g. "1px solid #999".
type Style struct {
	FontSize        float64       `json:"fontSize,omitempty"`
	FontWeight      string        `json:"fontWeight,omitempty"`
	FontFamily      string        `json:"fontFamily,omitempty"`
	Color           string        `json:"color,omitempty"`
	BackgroundColor string        `json:"backgroundColor,omitempty"`
	Border          string        `json:"border,omitempty"`
	BorderWidth     float64       `json:"borderWidth,omitempty"`
	BorderTop       string        `json:"borderTop,omitempty"`
	BorderRight     string        `json:"borderRight,omitempty"`
	BorderBottom    string        `json:"borderBottom,omitempty"`
	BorderLeft      string        `json:"borderLeft,omitempty"`
	TextAlign       TextAlign     `json:"textAlign,omitempty"`
	VerticalAlign   VerticalAlign `json:"verticalAlign,omitempty"`
}

// IsZero reports whether no attribute is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Merge returns s with every non-empty attribute of patch applied.
func (s Style) Merge(patch Style) Style {
	if patch.FontSize != 0 {
		s.FontSize = patch.FontSize
	}
	if patch.FontWeight != "" {
		s.FontWeight = patch.FontWeight
	}
	if patch.FontFamily != "" {
		s.FontFamily = patch.FontFamily
	}
	if patch.Color != "" {
		s.Color = patch.Color
	}
	if patch.BackgroundColor != "" {
		s.BackgroundColor = patch.BackgroundColor
	}
	if patch.Border != "" {
		s.Border = patch.Border
	}
	if patch.BorderWidth != 0 {
		s.BorderWidth = patch.BorderWidth
	}
	if patch.BorderTop != "" {
		s.BorderTop = patch.BorderTop
	}
	if patch.BorderRight != "" {
		s.BorderRight = patch.BorderRight
	}
	if patch.BorderBottom != "" {
		s.BorderBottom = patch.BorderBottom
	}
	if patch.BorderLeft != "" {
		s.BorderLeft = patch.BorderLeft
	}
	if patch.TextAlign != "" {
		s.TextAlign = patch.TextAlign
	}
	if patch.VerticalAlign != "" {
		s.VerticalAlign = patch.VerticalAlign
	}
	return s
}

// DefaultStyle is applied to freshly added elements.
func DefaultStyle(kind Kind) Style {
	s := Style{
		FontSize:    14,
		FontWeight:  "normal",
		Color:       "#000000",
		BorderTop:   "1px solid #ccc",
		BorderRight: "1px solid #ccc",
		TextAlign:   AlignLeft,
	}
	if kind == KindRect {
		s.BackgroundColor = "#f0f0f0"
		s.Border = "1px solid #999"
	}
	return s
}

// FrameStyle is applied to container frames.
func FrameStyle() Style {
	return Style{
		BackgroundColor: "transparent",
		Border:          "2px dashed #64748b",
		BorderTop:       "2px dashed #64748b",
		BorderRight:     "2px dashed #64748b",
		TextAlign:       AlignLeft,
	}
}
