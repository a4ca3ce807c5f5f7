package export

import (
	"image/color"
	"strconv"
	"strings"
)

// border is a parsed CSS border shorthand such as "1px solid #999".
type border struct {
	Width float64 // CSS pixels
	Style string  // solid, dashed or dotted
	Color color.Color
}

// parseBorder reads a border shorthand. It reports false for an empty
// value, "none", or a zero width.
func parseBorder(s string) (border, bool) {
	b := border{Width: 1, Style: "solid", Color: color.Black}
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return b, false
	}
	for _, f := range fields {
		switch {
		case f == "none" || f == "hidden":
			return b, false
		case f == "solid" || f == "dashed" || f == "dotted":
			b.Style = f
		case strings.HasSuffix(f, "px"):
			if v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64); err == nil {
				b.Width = v
			}
		default:
			if c, ok := parseColor(f); ok {
				b.Color = c
			}
		}
	}
	return b, b.Width > 0
}

var namedColors = map[string]color.Color{
	"black":       color.Black,
	"white":       color.White,
	"transparent": color.Transparent,
	"red":         color.RGBA{255, 0, 0, 255},
	"green":       color.RGBA{0, 128, 0, 255},
	"blue":        color.RGBA{0, 0, 255, 255},
	"gray":        color.RGBA{128, 128, 128, 255},
	"grey":        color.RGBA{128, 128, 128, 255},
}

// parseColor reads #rgb, #rgba, #rrggbb, #rrggbbaa or a basic color name.
func parseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, false
	}
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return nil, false
		}
	}

	var r, g, b, a uint64
	a = 255
	switch len(hex) {
	case 3, 4:
		r = nibble(hex[0]) * 17
		g = nibble(hex[1]) * 17
		b = nibble(hex[2]) * 17
		if len(hex) == 4 {
			a = nibble(hex[3]) * 17
		}
	case 6, 8:
		r, _ = strconv.ParseUint(hex[0:2], 16, 8)
		g, _ = strconv.ParseUint(hex[2:4], 16, 8)
		b, _ = strconv.ParseUint(hex[4:6], 16, 8)
		if len(hex) == 8 {
			a, _ = strconv.ParseUint(hex[6:8], 16, 8)
		}
	default:
		return nil, false
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

func nibble(c byte) uint64 {
	v, _ := strconv.ParseUint(string(c), 16, 8)
	return v
}

// colorOr parses s, falling back to def when it is empty or invalid.
func colorOr(s string, def color.Color) color.Color {
	if c, ok := parseColor(s); ok {
		return c
	}
	return def
}

// isBold reports whether a CSS font weight renders bold.
func isBold(weight string) bool {
	if weight == "bold" || weight == "bolder" {
		return true
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}
