package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"pagedesigner/internal/domain"
)

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
		ok   bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#F00", color.NRGBA{255, 0, 0, 255}, true},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}, true},
		{"transparent", color.Transparent, true},
		{"White", color.White, true},
		{"#12", nil, false},
		{"#zzzzzz", nil, false},
		{"rebeccapurple", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseColor(tt.in)
		if ok != tt.ok {
			t.Errorf("parseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !sameColor(got, tt.want) {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseBorder(t *testing.T) {
	b, ok := parseBorder("2px dashed #64748b")
	if !ok || b.Width != 2 || b.Style != "dashed" || !sameColor(b.Color, color.NRGBA{0x64, 0x74, 0x8b, 255}) {
		t.Errorf("unexpected border %+v ok=%v", b, ok)
	}
	for _, s := range []string{"", "none", "0px solid #000"} {
		if _, ok := parseBorder(s); ok {
			t.Errorf("parseBorder(%q) should report no border", s)
		}
	}
}

func TestIsBold(t *testing.T) {
	for in, want := range map[string]bool{"bold": true, "700": true, "normal": false, "400": false, "": false} {
		if isBold(in) != want {
			t.Errorf("isBold(%q) != %v", in, want)
		}
	}
}

func TestRender_PageSize(t *testing.T) {
	r, err := NewRenderer(0)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	img := r.Render(domain.Document{Page: domain.A4()})
	if b := img.Bounds(); b.Dx() != 794 || b.Dy() != 1123 {
		t.Errorf("A4 at 96 DPI = %dx%d, want 794x1123", b.Dx(), b.Dy())
	}
	if !sameColor(img.At(5, 5), color.White) {
		t.Error("empty page should be white")
	}
}

func TestRender_DrawsRectFill(t *testing.T) {
	r, _ := NewRenderer(DefaultDPI)
	doc := domain.Document{Page: domain.A4(), Elements: []domain.Element{{
		ID: "r", X: 10, Y: 10, W: 20, H: 20,
		Style: domain.Style{BackgroundColor: "#ff0000", Border: "none"},
		Body:  domain.RectBody{},
	}}}
	img := r.Render(doc)
	// 20mm is about 75.6px at 96 DPI
	if got := img.At(75, 75); !sameColor(got, color.RGBA{255, 0, 0, 255}) {
		t.Errorf("rect centre = %v, want red", got)
	}
	if got := img.At(10, 10); !sameColor(got, color.White) {
		t.Errorf("outside the rect = %v, want white", got)
	}
}

func TestRender_ContainerHasNoFill(t *testing.T) {
	r, _ := NewRenderer(DefaultDPI)
	doc := domain.Document{Page: domain.A4(), Elements: []domain.Element{{
		ID: "f", X: 10, Y: 10, W: 40, H: 40, IsContainer: true,
		Style: domain.FrameStyle(),
		Body:  domain.RectBody{},
	}}}
	if got := r.Render(doc).At(113, 113); !sameColor(got, color.White) {
		t.Errorf("container interior = %v, want white", got)
	}
}

func TestWritePNG_AllKinds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	doc := domain.Document{Page: domain.Page{WidthMM: 100, HeightMM: 100}, Elements: []domain.Element{
		{ID: "t", X: 1, Y: 1, W: 50, H: 8, Rotation: 15, Style: domain.DefaultStyle(domain.KindText), Body: domain.TextBody{Content: "Hello"}},
		{ID: "i", X: 1, Y: 20, W: 20, H: 10, Body: domain.ImageBody{Src: dataURL}},
		{ID: "s", X: 30, Y: 20, W: 20, H: 10, Body: domain.ImageBody{DataKey: domain.SignatureKey1}},
		{ID: "l", X: 1, Y: 40, W: 50, H: 2, Body: domain.LineBody{}},
		{ID: "g", X: 1, Y: 50, W: 60, H: 30, Body: func() domain.TableBody {
			tb := domain.DefaultTable()
			tb.Data[0][0] = "cell"
			return tb
		}()},
	}}

	r, _ := NewRenderer(72)
	var out bytes.Buffer
	if err := r.WritePNG(&out, doc); err != nil {
		t.Fatalf("write png: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	w, h := r.Size(doc.Page)
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Errorf("output %v, want %dx%d", img.Bounds(), w, h)
	}
}

func TestDecodeDataURL(t *testing.T) {
	if _, err := decodeDataURL("https://example.com/a.png"); err != errNotDataURL {
		t.Errorf("expected errNotDataURL, got %v", err)
	}
	if _, err := decodeDataURL("data:image/png;base64,!!!"); err == nil {
		t.Error("expected a decode error")
	}
}
