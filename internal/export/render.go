// Package export rasterizes a document to PNG.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"pagedesigner/internal/binding"
	"pagedesigner/internal/domain"
)

// DefaultDPI renders one CSS pixel per output pixel.
const DefaultDPI = 96.0

const (
	textPaddingPx  = 4
	textLineHeight = 1.4
)

var (
	defaultRectFill   = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	placeholderFill   = color.RGBA{0xee, 0xee, 0xee, 0xff}
	placeholderText   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	tableBorderColor  = color.RGBA{0x33, 0x33, 0x33, 0xff}
	defaultRectBorder = "1px solid #999"
)

// Renderer draws documents at a fixed resolution. A Renderer is not safe
// for concurrent use.
type Renderer struct {
	dpi     float64
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// NewRenderer creates a renderer for dpi dots per inch; dpi <= 0 means
// DefaultDPI.
func NewRenderer(dpi float64) (*Renderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{dpi: dpi, regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

// DPI returns the output resolution.
func (r *Renderer) DPI() float64 { return r.dpi }

// Size returns the pixel size of a rendered page.
func (r *Renderer) Size(page domain.Page) (w, h int) {
	return int(math.Round(page.WidthMM * r.pxPerMM())), int(math.Round(page.HeightMM * r.pxPerMM()))
}

// Render draws doc on a white page, containers first.
func (r *Renderer) Render(doc domain.Document) image.Image {
	return r.context(doc).Image()
}

// WritePNG encodes the rendered page as PNG.
func (r *Renderer) WritePNG(w io.Writer, doc domain.Document) error {
	return r.context(doc).EncodePNG(w)
}

// SavePNG writes the rendered page to a PNG file.
func (r *Renderer) SavePNG(path string, doc domain.Document) error {
	return r.context(doc).SavePNG(path)
}

func (r *Renderer) context(doc domain.Document) *gg.Context {
	w, h := r.Size(doc.Page)
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	for _, el := range doc.PaintOrder() {
		r.drawElement(dc, el)
	}
	return dc
}

func (r *Renderer) pxPerMM() float64 { return r.dpi / 25.4 }

// cssPx converts CSS pixels to output pixels.
func (r *Renderer) cssPx(v float64) float64 { return v * r.dpi / 96 }

func (r *Renderer) drawElement(dc *gg.Context, el domain.Element) {
	s := r.pxPerMM()
	box := rect{X: el.X * s, Y: el.Y * s, W: el.W * s, H: el.H * s}

	dc.Push()
	defer dc.Pop()
	if el.Rotation != 0 {
		dc.RotateAbout(gg.Radians(el.Rotation), box.X+box.W/2, box.Y+box.H/2)
	}

	switch b := el.Body.(type) {
	case domain.RectBody:
		r.drawRect(dc, box, el)
	case domain.TextBody:
		r.drawText(dc, box, el.Style, b.Content)
	case domain.ImageBody:
		r.drawImage(dc, box, b)
	case domain.LineBody:
		r.drawLine(dc, box, el.Style)
	case domain.TableBody:
		r.drawTable(dc, box, el.Style, b)
	}
}

type rect struct{ X, Y, W, H float64 }

func (r *Renderer) drawRect(dc *gg.Context, box rect, el domain.Element) {
	st := el.Style
	if !el.IsContainer {
		dc.SetColor(colorOr(st.BackgroundColor, defaultRectFill))
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
		dc.Fill()
	}
	if hasSides(st) {
		r.drawSides(dc, box, st)
		return
	}
	all := st.Border
	if all == "" {
		all = defaultRectBorder
	}
	r.drawSides(dc, box, domain.Style{BorderTop: all, BorderRight: all, BorderBottom: all, BorderLeft: all})
}

func hasSides(st domain.Style) bool {
	return st.BorderTop != "" || st.BorderRight != "" || st.BorderBottom != "" || st.BorderLeft != ""
}

// drawSides strokes each side that has a border, inside the box.
func (r *Renderer) drawSides(dc *gg.Context, box rect, st domain.Style) {
	sides := []struct {
		spec           string
		x1, y1, x2, y2 float64
		horizontal     bool
	}{
		{st.BorderTop, box.X, box.Y, box.X + box.W, box.Y, true},
		{st.BorderRight, box.X + box.W, box.Y, box.X + box.W, box.Y + box.H, false},
		{st.BorderBottom, box.X, box.Y + box.H, box.X + box.W, box.Y + box.H, true},
		{st.BorderLeft, box.X, box.Y, box.X, box.Y + box.H, false},
	}
	for i, side := range sides {
		b, ok := parseBorder(side.spec)
		if !ok {
			continue
		}
		lw := r.cssPx(b.Width)
		// pull the stroke inside the box
		inset := lw / 2
		if i == 1 || i == 2 {
			inset = -inset
		}
		x1, y1, x2, y2 := side.x1, side.y1, side.x2, side.y2
		if side.horizontal {
			y1 += inset
			y2 += inset
		} else {
			x1 += inset
			x2 += inset
		}
		r.stroke(dc, b, lw, x1, y1, x2, y2)
	}
}

func (r *Renderer) stroke(dc *gg.Context, b border, lw, x1, y1, x2, y2 float64) {
	dc.SetColor(b.Color)
	dc.SetLineWidth(lw)
	switch b.Style {
	case "dashed":
		dc.SetDash(3*lw, 2*lw)
	case "dotted":
		dc.SetDash(lw, lw)
	}
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	dc.SetDash()
}

func (r *Renderer) face(bold bool, cssSize float64) font.Face {
	key := faceKey{bold: bold, size: cssSize}
	if f, ok := r.faces[key]; ok {
		return f
	}
	ttf := r.regular
	if bold {
		ttf = r.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    cssSize * 0.75, // CSS px to points
		DPI:     r.dpi,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f
}

func (r *Renderer) drawText(dc *gg.Context, box rect, st domain.Style, content string) {
	r.drawSides(dc, box, st)
	if content == "" {
		return
	}
	size := st.FontSize
	if size <= 0 {
		size = 14
	}
	dc.SetFontFace(r.face(isBold(st.FontWeight), size))
	dc.SetColor(colorOr(st.Color, color.Black))

	pad := r.cssPx(textPaddingPx)
	inner := rect{X: box.X + pad, Y: box.Y + pad, W: box.W - 2*pad, H: box.H - 2*pad}
	if inner.W <= 0 || inner.H <= 0 {
		return
	}
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Clip()
	defer dc.ResetClip()

	align := gg.AlignLeft
	switch st.TextAlign {
	case domain.AlignCenter:
		align = gg.AlignCenter
	case domain.AlignRight:
		align = gg.AlignRight
	}
	y, ay := inner.Y+inner.H/2, 0.5
	switch st.VerticalAlign {
	case domain.AlignTop:
		y, ay = inner.Y, 0
	case domain.AlignBottom:
		y, ay = inner.Y+inner.H, 1
	}
	dc.DrawStringWrapped(content, inner.X, y, 0, ay, inner.W, textLineHeight, align)
}

func (r *Renderer) drawLine(dc *gg.Context, box rect, st domain.Style) {
	width := st.BorderWidth
	if width <= 0 {
		width = 2
	}
	lw := r.cssPx(width)
	y := box.Y + box.H - lw/2
	r.stroke(dc, border{Width: width, Style: "solid", Color: colorOr(st.Color, color.Black)}, lw, box.X, y, box.X+box.W, y)
}

func (r *Renderer) drawImage(dc *gg.Context, box rect, b domain.ImageBody) {
	if img, err := decodeDataURL(b.Src); err == nil {
		bounds := img.Bounds()
		iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
		if iw > 0 && ih > 0 {
			k := math.Min(box.W/iw, box.H/ih)
			dc.Push()
			dc.Translate(box.X+(box.W-iw*k)/2, box.Y+(box.H-ih*k)/2)
			dc.Scale(k, k)
			dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
			dc.Pop()
			return
		}
	}

	dc.SetColor(placeholderFill)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	dc.Fill()
	caption := binding.SignatureLabel(b.DataKey)
	if caption == "" {
		caption = "Image"
	}
	dc.SetFontFace(r.face(false, 11))
	dc.SetColor(placeholderText)
	dc.DrawStringAnchored(caption, box.X+box.W/2, box.Y+box.H/2, 0.5, 0.5)
}

func (r *Renderer) drawTable(dc *gg.Context, box rect, st domain.Style, tb domain.TableBody) {
	tb = tb.Normalize()
	cw := box.W / float64(tb.Cols)
	ch := box.H / float64(tb.Rows)
	size := st.FontSize
	if size <= 0 {
		size = 12
	}
	pad := r.cssPx(tb.CellPadding)
	grid := border{Width: 1, Style: "solid", Color: tableBorderColor}
	lw := r.cssPx(grid.Width)

	dc.SetFontFace(r.face(isBold(st.FontWeight), size))
	for row := 0; row < tb.Rows; row++ {
		for col := 0; col < tb.Cols; col++ {
			cell := rect{X: box.X + float64(col)*cw, Y: box.Y + float64(row)*ch, W: cw, H: ch}
			if tb.Border {
				dc.SetColor(grid.Color)
				dc.SetLineWidth(lw)
				dc.DrawRectangle(cell.X, cell.Y, cell.W, cell.H)
				dc.Stroke()
			}
			text := tb.Cell(row, col)
			if text == "" {
				continue
			}
			// Pop does not restore the clip mask, so reset it per cell
			dc.DrawRectangle(cell.X, cell.Y, cell.W, cell.H)
			dc.Clip()
			dc.SetColor(colorOr(st.Color, color.Black))
			dc.DrawStringAnchored(text, cell.X+pad, cell.Y+cell.H/2, 0, 0.5)
			dc.ResetClip()
		}
	}
}

var errNotDataURL = errors.New("not an image data URL")

// decodeDataURL decodes a base64 "data:image/...;base64," source.
func decodeDataURL(src string) (image.Image, error) {
	rest, ok := strings.CutPrefix(src, "data:image/")
	if !ok {
		return nil, errNotDataURL
	}
	i := strings.Index(rest, ";base64,")
	if i < 0 {
		return nil, errNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(rest[i+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
