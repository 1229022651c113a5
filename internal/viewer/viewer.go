// Package viewer is the display surface a canvas is drawn through. It owns
// the data to canvas transform, the coordinate mappers built on it, the
// canvas and its interaction controller, and tracks when a repaint is due.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
	"github.com/inamate/skycanvas/internal/interact"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/shape"
)

// Options configures a Viewer.
type Options struct {
	Width, Height float64
	Controller    interact.Options
	// Solver is the astrometric solution for wcs coordinates, or nil.
	Solver coord.Solver
}

// DefaultOptions returns an 800x600 viewer with the default controller.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Controller: interact.DefaultOptions()}
}

type redrawKey struct{}

// Viewer maps data space onto a window. The data point at Pan sits in the
// middle of the window, data y grows upwards, and the rest of the transform
// applies in the order swap, flip, rotate, scale.
type Viewer struct {
	wd, ht         float64
	scaleX, scaleY float64
	pan            vec.Vec2
	rotation       float64
	flipX, flipY   bool
	swapXY         bool

	toCanvas matrix.Matrix
	toData   matrix.Matrix

	mappers *coord.Set
	solver  coord.Solver

	canvas *canvas.Canvas
	ctrl   *interact.Controller

	// dirty is set by Redraw and cleared by Render; pending is the most
	// severe whence requested in between.
	dirty   bool
	pending canvas.Whence
	hooks   notify.Registry[redrawKey, canvas.Whence]
}

var _ canvas.Host = (*Viewer)(nil)

// New binds a viewer and a controller to cv.
func New(cv *canvas.Canvas, reg *shape.Registry, opts Options) (*Viewer, error) {
	if cv == nil {
		return nil, fmt.Errorf("%w: viewer needs a canvas", shape.ErrConfiguration)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}
	v := &Viewer{
		wd:      opts.Width,
		ht:      opts.Height,
		scaleX:  1,
		scaleY:  1,
		canvas:  cv,
		solver:  opts.Solver,
		pending: canvas.WhenceRepaint,
	}
	v.mappers = coord.NewSet(v, opts.Solver)
	v.recompute()

	ctrl, err := interact.New(cv, reg, opts.Controller)
	if err != nil {
		return nil, err
	}
	v.ctrl = ctrl
	cv.SetViewer(v)
	return v, nil
}

// Close detaches the viewer and its controller from the canvas.
func (v *Viewer) Close() {
	v.ctrl.Close()
	if v.canvas.Viewer() == canvas.Host(v) {
		v.canvas.SetViewer(nil)
	}
}

func (v *Viewer) Canvas() *canvas.Canvas           { return v.canvas }
func (v *Viewer) Controller() *interact.Controller { return v.ctrl }

// Bindings returns the input bindings used by Input.
func (v *Viewer) Bindings() *interact.Bindings { return v.ctrl.Bindings() }

// Mappers returns the viewer's mapper table.
func (v *Viewer) Mappers() *coord.Set { return v.mappers }

// MapperFor returns the mapper for space.
func (v *Viewer) MapperFor(space coord.Space) (coord.Mapper, error) {
	return v.mappers.Get(space)
}

func (v *Viewer) recompute() {
	m := matrix.Translate(-v.pan.X, -v.pan.Y)
	if v.swapXY {
		m = m.Mul(matrix.Matrix{0, 1, 1, 0, 0, 0})
	}
	fx, fy := 1.0, 1.0
	if v.flipX {
		fx = -1
	}
	if v.flipY {
		fy = -1
	}
	m = m.Scale(fx, fy).
		RotateDeg(v.rotation).
		Scale(v.scaleX, -v.scaleY).
		Translate(v.wd/2, v.ht/2)

	inv, ok := geom.Invert(m)
	if !ok {
		// Scales are validated by the setters, so this is unreachable
		// short of overflow.
		logger().Error("viewer transform is singular", "scaleX", v.scaleX, "scaleY", v.scaleY)
		return
	}
	v.toCanvas, v.toData = m, inv
}

func (v *Viewer) changed(whence canvas.Whence) {
	v.recompute()
	v.Redraw(whence)
}

// ScaleXY returns canvas pixels per data unit along each axis.
func (v *Viewer) ScaleXY() (sx, sy float64) { return v.scaleX, v.scaleY }

// Zoom is the geometric mean of the axis scales.
func (v *Viewer) Zoom() float64 { return math.Sqrt(v.scaleX * v.scaleY) }

func (v *Viewer) DataToCanvas(p vec.Vec2) vec.Vec2 { return geom.Apply(v.toCanvas, p) }
func (v *Viewer) CanvasToData(p vec.Vec2) vec.Vec2 { return geom.Apply(v.toData, p) }

// WindowSize returns the window size in pixels.
func (v *Viewer) WindowSize() (wd, ht float64) { return v.wd, v.ht }

// PanRect returns the data-space box covering the window.
func (v *Viewer) PanRect() rect.Rect {
	corners := []vec.Vec2{{}, {X: v.wd}, {X: v.wd, Y: v.ht}, {Y: v.ht}}
	for i, c := range corners {
		corners[i] = v.CanvasToData(c)
	}
	r, _ := geom.Bounds(corners)
	return r
}

// Pan returns the data point at the middle of the window.
func (v *Viewer) Pan() vec.Vec2 { return v.pan }

// Rotation returns the view rotation in degrees.
func (v *Viewer) Rotation() float64 { return v.rotation }

// SetWindowSize resizes the window, keeping the pan point centered.
func (v *Viewer) SetWindowSize(wd, ht float64) error {
	if wd <= 0 || ht <= 0 {
		return fmt.Errorf("%w: window size %gx%g", shape.ErrConfiguration, wd, ht)
	}
	v.wd, v.ht = wd, ht
	v.changed(canvas.WhenceRelayout)
	return nil
}

// SetScale sets the pixels per data unit on each axis.
func (v *Viewer) SetScale(sx, sy float64) error {
	if !(sx > geom.Epsilon) || !(sy > geom.Epsilon) || math.IsInf(sx, 0) || math.IsInf(sy, 0) {
		return fmt.Errorf("%w: scale %g, %g", shape.ErrConfiguration, sx, sy)
	}
	v.scaleX, v.scaleY = sx, sy
	v.changed(canvas.WhenceTransform)
	return nil
}

// SetZoom sets both axis scales to z.
func (v *Viewer) SetZoom(z float64) error { return v.SetScale(z, z) }

// SetPan centers the window on the data point p.
func (v *Viewer) SetPan(p vec.Vec2) {
	v.pan = p
	v.changed(canvas.WhenceTransform)
}

// SetRotation sets the view rotation, counter-clockwise in degrees.
func (v *Viewer) SetRotation(deg float64) {
	v.rotation = geom.NormalizeDegrees(deg)
	v.changed(canvas.WhenceTransform)
}

// SetFlip mirrors the data axes before rotation. swap exchanges x and y
// before either flip applies.
func (v *Viewer) SetFlip(flipX, flipY, swap bool) {
	v.flipX, v.flipY, v.swapXY = flipX, flipY, swap
	v.changed(canvas.WhenceTransform)
}

// Flip returns the axis flags set by SetFlip.
func (v *Viewer) Flip() (flipX, flipY, swap bool) { return v.flipX, v.flipY, v.swapXY }

// ZoomFit pans to the middle of the canvas objects and picks the largest
// uniform scale that shows them all with a small margin.
func (v *Viewer) ZoomFit() error {
	if v.canvas.Len() == 0 {
		return nil
	}
	box, err := v.canvas.LLUR()
	if err != nil {
		return fmt.Errorf("zoom fit: %w", err)
	}
	w, h := box.Dx(), box.Dy()
	if v.swapXY {
		w, h = h, w
	}
	const margin = 0.9
	z := math.Inf(1)
	if w > geom.Epsilon {
		z = v.wd / w
	}
	if h > geom.Epsilon {
		z = math.Min(z, v.ht/h)
	}
	v.pan = geom.Center(box)
	if !math.IsInf(z, 1) {
		v.scaleX, v.scaleY = z*margin, z*margin
	}
	v.changed(canvas.WhenceTransform)
	return nil
}

// SetSolver replaces the astrometric solution. Objects stored in sky
// coordinates move, so everything is laid out again.
func (v *Viewer) SetSolver(s coord.Solver) {
	v.solver = s
	v.mappers.SetSolver(s)
	v.Redraw(canvas.WhenceRelayout)
}

// FormatCursor describes the window point p for a status line: its data
// coordinates and, when a solution is attached, its sky position.
func (v *Viewer) FormatCursor(p vec.Vec2) string {
	d := v.CanvasToData(p)
	return fmt.Sprintf("X %.2f  Y %.2f  %s", d.X, d.Y, coord.FormatSky(v.solver, d))
}

// Redraw marks the viewer dirty and notifies the redraw hooks. Requests
// accumulate until the next Render, keeping the most severe whence.
func (v *Viewer) Redraw(whence canvas.Whence) {
	if !v.dirty || whence < v.pending {
		v.pending = whence
	}
	v.dirty = true
	v.hooks.Emit(redrawKey{}, whence)
}

// OnRedraw registers fn to run on every Redraw request.
func (v *Viewer) OnRedraw(fn func(canvas.Whence)) notify.Handle {
	return v.hooks.On(redrawKey{}, fn)
}

// Dirty reports whether a repaint is due and the most severe pending whence.
func (v *Viewer) Dirty() (bool, canvas.Whence) { return v.dirty, v.pending }

// Render draws the canvas objects bottom to top, then the controller
// overlay, and clears the dirty state.
func (v *Viewer) Render(r shape.Renderer) error {
	v.dirty = false
	v.pending = canvas.WhenceRepaint
	return errors.Join(v.canvas.Draw(r), v.ctrl.DrawOverlay(r))
}

// Input feeds a host input event at window point p to the controller. It
// reports whether name is bound.
func (v *Viewer) Input(name string, p vec.Vec2, modifier bool) (bool, error) {
	return v.ctrl.Dispatch(name, interact.Pointer{Data: v.CanvasToData(p), Modifier: modifier})
}

func logger() *slog.Logger { return shape.Logger() }
