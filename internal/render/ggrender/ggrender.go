// Package ggrender draws canvas shapes onto a gg raster context.
package ggrender

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/render"
	"github.com/inamate/skycanvas/internal/shape"
)

// Renderer is a shape.Renderer over a *gg.Context.
//
// gg reports fill and stroke failures per call while shape.Renderer does
// not, so the first failure is kept and returned by Err.
type Renderer struct {
	dc    *gg.Context
	src   *text.FontSource
	faces map[float64]text.Face
	err   error
}

var _ shape.Renderer = (*Renderer)(nil)

// New wraps dc, loading the Go Regular font for text. If the font cannot
// be parsed text is measured with the shared bitmap metrics and not drawn.
func New(dc *gg.Context) *Renderer {
	r := &Renderer{dc: dc, faces: make(map[float64]text.Face)}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		shape.Logger().Warn("font unavailable, text will not be drawn", "err", err)
		return r
	}
	r.src = src
	return r
}

// Context returns the underlying gg context.
func (r *Renderer) Context() *gg.Context { return r.dc }

// Err returns the first drawing error since the last Clear.
func (r *Renderer) Err() error { return r.err }

// Clear fills the whole context with the colour bg and resets Err.
func (r *Renderer) Clear(bg string) {
	r.err = nil
	r.dc.ClearWithColor(render.Color(bg, 1))
}

// Close releases the font source.
func (r *Renderer) Close() error {
	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	clear(r.faces)
	return err
}

func (r *Renderer) fail(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Renderer) face(size float64) text.Face {
	if r.src == nil || size <= 0 {
		return nil
	}
	f, ok := r.faces[size]
	if !ok {
		f = r.src.Face(size)
		r.faces[size] = f
	}
	return f
}

func (r *Renderer) setStroke(st shape.Style) {
	c := render.Stroke(st)
	r.dc.SetRGBA(c.R, c.G, c.B, c.A)
	w := st.LineWidth
	if w <= 0 {
		w = 1
	}
	r.dc.SetLineWidth(w)
	r.dc.SetDash(st.Dash...)
}

// paint fills the current path when st asks for it, then outlines it.
func (r *Renderer) paint(st shape.Style, fill bool) {
	if fill && st.Fill {
		c := render.Fill(st)
		r.dc.SetRGBA(c.R, c.G, c.B, c.A)
		r.fail(r.dc.FillPreserve())
	}
	r.setStroke(st)
	r.fail(r.dc.Stroke())
}

func (r *Renderer) trace(pts []vec.Vec2, closed bool) bool {
	if len(pts) == 0 {
		return false
	}
	r.dc.ClearPath()
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	if closed {
		r.dc.ClosePath()
	}
	return true
}

func (r *Renderer) DrawLine(a, b vec.Vec2, st shape.Style) {
	if r.trace([]vec.Vec2{a, b}, false) {
		r.paint(st, false)
	}
}

func (r *Renderer) DrawPolygon(pts []vec.Vec2, st shape.Style) {
	if r.trace(pts, true) {
		r.paint(st, true)
	}
}

func (r *Renderer) DrawPath(pts []vec.Vec2, st shape.Style) {
	if r.trace(pts, false) {
		r.paint(st, false)
	}
}

func (r *Renderer) DrawCircle(c vec.Vec2, radius float64, st shape.Style) {
	if radius <= 0 || math.IsNaN(radius) {
		return
	}
	r.dc.ClearPath()
	r.dc.DrawCircle(c.X, c.Y, radius)
	r.paint(st, true)
}

// DrawText draws s with its baseline starting at p. The raster text path
// does not follow the context transform, so rot is not applied.
func (r *Renderer) DrawText(p vec.Vec2, s string, size, rot float64, st shape.Style) {
	f := r.face(size)
	if f == nil {
		return
	}
	r.dc.SetFont(f)
	c := render.Stroke(st)
	r.dc.SetRGBA(c.R, c.G, c.B, c.A)
	r.dc.DrawString(s, p.X, p.Y)
}

func (r *Renderer) TextExtents(s string, size float64) (wd, ht float64) {
	f := r.face(size)
	if f == nil {
		return render.TextExtents(s, size)
	}
	return text.Measure(s, f)
}

// Scene is anything that draws itself through a shape.Renderer, such as a
// canvas or a viewer.
type Scene interface {
	Render(r shape.Renderer) error
}

// EncodePNG rasterises scene on a fresh wd x ht context over background bg
// and writes it to w as PNG.
func EncodePNG(w io.Writer, wd, ht int, bg string, scene Scene) (err error) {
	if wd <= 0 || ht <= 0 {
		return fmt.Errorf("%w: image size %dx%d", shape.ErrConfiguration, wd, ht)
	}
	dc := gg.NewContext(wd, ht)
	defer func() { err = errors.Join(err, dc.Close()) }()
	r := New(dc)
	defer func() { err = errors.Join(err, r.Close()) }()

	r.Clear(bg)
	if err := scene.Render(r); err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// EncodeMask writes a wd x ht mask as an opaque black and white PNG. mask
// is row-major from the top-left pixel; set entries are white.
func EncodeMask(w io.Writer, wd, ht int, mask []bool) (err error) {
	if wd <= 0 || ht <= 0 || len(mask) != wd*ht {
		return fmt.Errorf("%w: mask of %d for %dx%d image", shape.ErrConfiguration, len(mask), wd, ht)
	}
	dc := gg.NewContext(wd, ht)
	defer func() { err = errors.Join(err, dc.Close()) }()
	on, off := gg.RGB(1, 1, 1), gg.RGB(0, 0, 0)
	for i, hit := range mask {
		c := off
		if hit {
			c = on
		}
		dc.SetPixel(i%wd, i/wd, c)
	}
	return dc.EncodePNG(w)
}
