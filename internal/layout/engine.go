// Package layout places new elements on a page without collisions and
// keeps moved or resized elements inside the page and the container frame.
package layout

import (
	"math"
	"unicode/utf8"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/geometry"
)

// Size is a width/height pair in millimetres.
type Size struct {
	W, H float64
}

// Config holds the empirically chosen placement constants.
type Config struct {
	GridStep      float64             // snap step
	MinSize       float64             // floor for w and h
	SearchBound   float64             // max offset tried around a drop point
	FallbackX     float64             // origin used when the page is full
	FallbackY     float64
	Frame         Size                // default container frame size
	TextCharWidth float64             // per-rune width used to size dropped text
	TextMaxWidth  float64             // cap for auto-sized text
	DefaultSizes  map[domain.Kind]Size
}

// DefaultConfig returns the constants the editor ships with.
func DefaultConfig() Config {
	return Config{
		GridStep:      1,
		MinSize:       2,
		SearchBound:   50,
		FallbackX:     21,
		FallbackY:     21,
		Frame:         Size{W: 106, H: 79},
		TextCharWidth: 3.7,
		TextMaxWidth:  185,
		DefaultSizes: map[domain.Kind]Size{
			domain.KindText:  {W: 53, H: 8},
			domain.KindImage: {W: 40, H: 26},
			domain.KindRect:  {W: 32, H: 21},
			domain.KindLine:  {W: 53, H: 2},
			domain.KindTable: {W: 74, H: 32},
		},
	}
}

// Engine computes placements and containment. It holds no document state.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine; zero fields of cfg fall back to DefaultConfig.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.GridStep <= 0 {
		cfg.GridStep = def.GridStep
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = def.MinSize
	}
	if cfg.SearchBound <= 0 {
		cfg.SearchBound = def.SearchBound
	}
	if cfg.FallbackX == 0 && cfg.FallbackY == 0 {
		cfg.FallbackX, cfg.FallbackY = def.FallbackX, def.FallbackY
	}
	if cfg.Frame.W <= 0 || cfg.Frame.H <= 0 {
		cfg.Frame = def.Frame
	}
	if cfg.TextCharWidth <= 0 {
		cfg.TextCharWidth = def.TextCharWidth
	}
	if cfg.TextMaxWidth <= 0 {
		cfg.TextMaxWidth = def.TextMaxWidth
	}
	sizes := make(map[domain.Kind]Size, len(def.DefaultSizes))
	for k, v := range def.DefaultSizes {
		sizes[k] = v
	}
	for k, v := range cfg.DefaultSizes {
		if v.W > 0 && v.H > 0 {
			sizes[k] = v
		}
	}
	cfg.DefaultSizes = sizes
	return &Engine{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) snap(v float64) float64 {
	return geometry.Snap(v, e.cfg.GridStep)
}

// SizeFor returns the size of a new element. Non-zero override dimensions
// win (floored at MinSize). Text created with initial content and no
// override is widened to fit roughly TextCharWidth per rune.
func (e *Engine) SizeFor(kind domain.Kind, content string, hasContent bool, override Size) Size {
	size, ok := e.cfg.DefaultSizes[kind]
	if !ok {
		size = e.cfg.DefaultSizes[domain.KindRect]
	}
	if override.W > 0 || override.H > 0 {
		if override.W > 0 {
			size.W = math.Max(override.W, e.cfg.MinSize)
		}
		if override.H > 0 {
			size.H = math.Max(override.H, e.cfg.MinSize)
		}
		return size
	}
	if kind == domain.KindText && hasContent {
		w := e.cfg.TextCharWidth * float64(utf8.RuneCountInString(content))
		size.W = math.Min(e.cfg.TextMaxWidth, math.Max(size.W, w))
	}
	return size
}

// FloorSize raises a dimension to MinSize.
func (e *Engine) FloorSize(v float64) float64 {
	return math.Max(v, e.cfg.MinSize)
}

// obstacles returns the boxes a new non-container element must avoid.
// The container is background and never blocks its children.
func obstacles(doc domain.Document, includeContainer bool) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(doc.Elements))
	for _, el := range doc.Elements {
		if el.IsContainer && !includeContainer {
			continue
		}
		out = append(out, el.Rect())
	}
	return out
}
