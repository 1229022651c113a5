package export

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/shape"
)

func TestPNG(t *testing.T) {
	doc := document.NewSampleDocument("cnv_x")
	var buf bytes.Buffer
	if err := PNG(&buf, doc, shape.NewRegistry(), Options{Width: 120, Height: 80, Fit: true}); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("image size = %dx%d, want 120x80", b.Dx(), b.Dy())
	}
}

func TestPNGDefaultsToDocumentSize(t *testing.T) {
	doc := document.NewEmptyDocument("cnv_x", "")
	doc.Width, doc.Height = 64, 48
	var buf bytes.Buffer
	if err := PNG(&buf, doc, shape.NewRegistry(), Options{}); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("image size = %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestPNGErrors(t *testing.T) {
	reg := shape.NewRegistry()
	doc := document.NewEmptyDocument("cnv_x", "")
	if err := PNG(&bytes.Buffer{}, doc, reg, Options{Width: MaxSide + 1, Height: 10}); !errors.Is(err, ErrBadSize) {
		t.Errorf("PNG(too wide) error = %v, want ErrBadSize", err)
	}
	doc.Objects = []document.Node{{Tag: "bad", Kind: shape.KindPolygon}}
	if err := PNG(&bytes.Buffer{}, doc, reg, Options{}); !errors.Is(err, document.ErrInvalid) {
		t.Errorf("PNG(bad object) error = %v, want ErrInvalid", err)
	}
}

func maskPixels(t *testing.T, doc *document.Document, opts Options) []bool {
	t.Helper()
	var buf bytes.Buffer
	if err := MaskPNG(&buf, doc, shape.NewRegistry(), opts); err != nil {
		t.Fatalf("MaskPNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	var px []bool
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			px = append(px, r > 0x8000)
		}
	}
	return px
}

func TestMaskPNG(t *testing.T) {
	doc := document.NewSampleDocument("cnv_x")
	opts := Options{Width: 120, Height: 80, Fit: true}
	all := maskPixels(t, doc, opts)
	if len(all) != 120*80 {
		t.Fatalf("mask has %d pixels, want %d", len(all), 120*80)
	}
	opts.Tags = []string{"mask"}
	one := maskPixels(t, doc, opts)

	var nAll, nOne int
	for i := range one {
		if all[i] {
			nAll++
		}
		if one[i] {
			nOne++
			if !all[i] {
				t.Fatalf("pixel %d set for one object but not for all", i)
			}
		}
	}
	if nOne == 0 || nOne >= nAll || nAll == len(all) {
		t.Errorf("mask pixels: tagged %d, all %d of %d", nOne, nAll, len(all))
	}

	opts.Tags = []string{"nope"}
	if err := MaskPNG(&bytes.Buffer{}, doc, shape.NewRegistry(), opts); !errors.Is(err, canvas.ErrTagNotFound) {
		t.Errorf("MaskPNG(unknown tag) error = %v, want ErrTagNotFound", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "canvas.png"},
		{"M31 field", "M31-field.png"},
		{"../etc", "---etc.png"},
	}
	for _, tt := range tests {
		if got := Filename(tt.in); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
