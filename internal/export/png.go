// Package export rasterises canvas documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/render/ggrender"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

// MaxSide bounds each image dimension.
const MaxSide = 4096

var ErrBadSize = errors.New("invalid image size")

type Options struct {
	// Width and Height default to the document's window size.
	Width, Height int
	// Fit zooms to show every object instead of the document's own view.
	Fit bool
	// Tags restricts a mask to the listed objects.
	Tags []string
}

// PNG draws doc as it would appear in a fresh viewer and writes it to w.
func PNG(w io.Writer, doc *document.Document, reg *shape.Registry, opts Options) error {
	v, _, err := open(doc, reg, opts)
	if err != nil {
		return err
	}
	defer v.Close()
	wd, ht := v.WindowSize()
	return ggrender.EncodePNG(w, int(wd), int(ht), doc.Background, v)
}

// MaskPNG writes a black and white image of the same view as PNG, with
// white pixels wherever an object's exact geometry covers the pixel centre.
func MaskPNG(w io.Writer, doc *document.Document, reg *shape.Registry, opts Options) error {
	v, cv, err := open(doc, reg, opts)
	if err != nil {
		return err
	}
	defer v.Close()
	fw, fh := v.WindowSize()
	wd, ht := int(fw), int(fh)
	pts := make([]vec.Vec2, 0, wd*ht)
	for y := 0; y < ht; y++ {
		for x := 0; x < wd; x++ {
			pts = append(pts, v.CanvasToData(vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}))
		}
	}
	mask, err := cv.Mask(pts, opts.Tags...)
	if err != nil {
		return err
	}
	return ggrender.EncodeMask(w, wd, ht, mask)
}

// open restores doc into a fresh viewer sized by opts.
func open(doc *document.Document, reg *shape.Registry, opts Options) (*viewer.Viewer, *canvas.Canvas, error) {
	wd, ht := opts.Width, opts.Height
	if wd == 0 {
		wd = doc.Width
	}
	if ht == 0 {
		ht = doc.Height
	}
	if wd <= 0 || ht <= 0 || wd > MaxSide || ht > MaxSide {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrBadSize, wd, ht)
	}

	solver, err := doc.Solver()
	if err != nil {
		return nil, nil, err
	}
	cv := canvas.New()
	if err := document.Restore(doc, reg, cv); err != nil {
		return nil, nil, err
	}
	vopts := viewer.DefaultOptions()
	vopts.Solver = solver
	vopts.Width, vopts.Height = float64(wd), float64(ht)
	v, err := viewer.New(cv, reg, vopts)
	if err != nil {
		return nil, nil, err
	}
	if opts.Fit {
		if err := v.ZoomFit(); err != nil {
			v.Close()
			return nil, nil, err
		}
	}
	return v, cv, nil
}

// Filename turns name into a safe download name ending in .png.
func Filename(name string) string {
	if name == "" {
		name = "canvas"
	}
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
	return name + ".png"
}
