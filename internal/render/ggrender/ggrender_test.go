package ggrender

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/gogpu/gg"

	"github.com/inamate/skycanvas/internal/shape"
)

type sceneFunc func(r shape.Renderer) error

func (f sceneFunc) Render(r shape.Renderer) error { return f(r) }

func TestEncodePNG(t *testing.T) {
	rect := shape.NewRectangle(10, 10, 30, 30)
	rect.Style.Fill = true
	rect.Style.FillColor = "#ff0000"
	scene := sceneFunc(func(r shape.Renderer) error { return rect.Draw(r, nil) })

	var buf bytes.Buffer
	if err := EncodePNG(&buf, 40, 40, "black", scene); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Errorf("Bounds() = %v, want 40x40", b)
	}
	r, g, _, _ := img.At(20, 20).RGBA()
	if r < 0xf000 || g > 0x1000 {
		t.Errorf("At(20, 20) = %v, want red fill", img.At(20, 20))
	}
	r, _, _, _ = img.At(2, 2).RGBA()
	if r != 0 {
		t.Errorf("At(2, 2) = %v, want black background", img.At(2, 2))
	}
}

func TestEncodePNGRejectsEmptySize(t *testing.T) {
	err := EncodePNG(&bytes.Buffer{}, 0, 10, "black", sceneFunc(func(shape.Renderer) error { return nil }))
	if !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("EncodePNG(0x10) error = %v, want ErrConfiguration", err)
	}
}

func TestEncodePNGPropagatesSceneError(t *testing.T) {
	boom := errors.New("boom")
	err := EncodePNG(&bytes.Buffer{}, 8, 8, "black", sceneFunc(func(shape.Renderer) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("EncodePNG() error = %v, want %v", err, boom)
	}
}

func TestTextExtentsGrowWithSize(t *testing.T) {
	dc := gg.NewContext(10, 10)
	defer dc.Close()
	r := New(dc)
	defer r.Close()

	w1, h1 := r.TextExtents("Vega", 10)
	w2, h2 := r.TextExtents("Vega", 20)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("TextExtents(10) = %v, %v, want positive", w1, h1)
	}
	if w2 <= w1 || h2 <= h1 {
		t.Errorf("TextExtents(20) = %v, %v, want larger than %v, %v", w2, h2, w1, h1)
	}
	if w, h := r.TextExtents("", 10); w != 0 || h < 0 {
		t.Errorf("TextExtents(\"\") = %v, %v, want zero width", w, h)
	}
}

func TestEncodeMask(t *testing.T) {
	// Only the top-right pixel of a 3x2 image is set.
	mask := []bool{false, false, true, false, false, false}
	var buf bytes.Buffer
	if err := EncodeMask(&buf, 3, 2, mask); err != nil {
		t.Fatalf("EncodeMask() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			r, _, _, a := img.At(x, y).RGBA()
			want := uint32(0)
			if x == 2 && y == 0 {
				want = 0xffff
			}
			if r != want || a != 0xffff {
				t.Errorf("At(%d, %d) = %v, want gray %#x opaque", x, y, img.At(x, y), want)
			}
		}
	}
	if err := EncodeMask(&bytes.Buffer{}, 3, 3, mask); !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("EncodeMask(short mask) error = %v, want ErrConfiguration", err)
	}
}
