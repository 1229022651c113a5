// Package interact turns pointer and key input into canvas edits. A
// Controller runs a small state machine: in draw mode a drag builds a new
// shape, in edit mode it picks and drags control points or whole objects.
//
// Pointer positions are in data space. The controller holds tags, never
// owning references, and forgets them when the canvas deletes the objects.
package interact

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/geom"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/shape"
)

// Mode names a row of the controller's mode table.
type Mode string

const (
	ModeDraw Mode = "draw"
	ModeEdit Mode = "edit"
)

// Op is an input operation.
type Op uint8

const (
	OpPointerDown Op = iota
	OpPointerMove
	OpPointerUp
	OpAddVertex
	OpRemoveVertex
	numOps
)

func (o Op) String() string {
	switch o {
	case OpPointerDown:
		return "pointer-down"
	case OpPointerMove:
		return "pointer-move"
	case OpPointerUp:
		return "pointer-up"
	case OpAddVertex:
		return "add-vertex"
	case OpRemoveVertex:
		return "remove-vertex"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Pointer is one input event.
type Pointer struct {
	// Data is the pointer position in data space.
	Data vec.Vec2
	// Modifier is set while the multi-select key is held.
	Modifier bool
}

// Handler performs op for one mode.
type Handler func(c *Controller, ev Pointer) error

// Options configures a Controller.
type Options struct {
	// DrawKind is the kind built in draw mode.
	DrawKind shape.Kind
	// DrawParams are handed to the kind's drawer. Space selects the
	// coordinate space new shapes are stored in.
	DrawParams shape.Params
	// AutoSelect selects a shape for editing as soon as it is drawn.
	AutoSelect bool
	// MultiSelect lets a click add to the selection instead of replacing it.
	MultiSelect bool
	// EditRadius is the control point pick tolerance in canvas pixels.
	EditRadius float64
	// RedrawInterval bounds repaints during drags.
	RedrawInterval time.Duration
	// Now is the clock used for throttling. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions draws rectangles in data space and auto-selects them.
func DefaultOptions() Options {
	return Options{
		DrawKind:       shape.KindRectangle,
		DrawParams:     shape.DefaultParams(),
		AutoSelect:     true,
		EditRadius:     7,
		RedrawInterval: DefaultRedrawInterval,
	}
}

// Controller is the interaction state machine for one canvas. Like the
// canvas it drives, it is not safe for concurrent use.
type Controller struct {
	canvas   *canvas.Canvas
	registry *shape.Registry
	opts     Options
	bindings *Bindings

	modes map[Mode]map[Op]Handler
	mode  Mode

	draw     *DrawContext
	edit     *gesture
	sel      Selection
	throttle *Throttle

	events  notify.Registry[EventType, Event]
	deleted canvas.Subscription
}

// New returns a controller in draw mode.
func New(cv *canvas.Canvas, reg *shape.Registry, opts Options) (*Controller, error) {
	if cv == nil || reg == nil {
		return nil, fmt.Errorf("%w: controller needs a canvas and a registry", shape.ErrConfiguration)
	}
	if _, ok := reg.Drawer(opts.DrawKind); !ok {
		return nil, fmt.Errorf("%w: %s cannot be drawn", shape.ErrConfiguration, opts.DrawKind)
	}
	if opts.EditRadius <= 0 {
		opts.EditRadius = 7
	}
	c := &Controller{
		canvas:   cv,
		registry: reg,
		opts:     opts,
		bindings: DefaultBindings(),
		mode:     ModeDraw,
		throttle: NewThrottle(opts.RedrawInterval, opts.Now),
		modes: map[Mode]map[Op]Handler{
			ModeDraw: {
				OpPointerDown:  drawDown,
				OpPointerMove:  drawMove,
				OpPointerUp:    drawUp,
				OpAddVertex:    drawAddVertex,
				OpRemoveVertex: drawRemoveVertex,
			},
			ModeEdit: {
				OpPointerDown:  editDown,
				OpPointerMove:  editMove,
				OpPointerUp:    editUp,
				OpAddVertex:    editAddVertex,
				OpRemoveVertex: editRemoveVertex,
			},
		},
	}
	c.deleted = cv.On(canvas.EventDeleted, func(ev canvas.Event) { c.purge(ev.Tags) })
	return c, nil
}

// Close stops listening to the canvas.
func (c *Controller) Close() { c.deleted.Remove() }

// Canvas returns the canvas being edited.
func (c *Controller) Canvas() *canvas.Canvas { return c.canvas }

// Registry returns the shape registry used for drawing.
func (c *Controller) Registry() *shape.Registry { return c.registry }

// Bindings returns the input bindings used by Dispatch.
func (c *Controller) Bindings() *Bindings { return c.bindings }

// Options returns the current options.
func (c *Controller) Options() Options { return c.opts }

// RegisterMode adds or replaces a mode. Operations missing from handlers
// are ignored while the mode is active.
func (c *Controller) RegisterMode(m Mode, handlers map[Op]Handler) error {
	if m == "" {
		return fmt.Errorf("%w: empty mode name", shape.ErrConfiguration)
	}
	c.modes[m] = maps.Clone(handlers)
	return nil
}

// Modes lists the registered modes, sorted.
func (c *Controller) Modes() []Mode { return slices.Sorted(maps.Keys(c.modes)) }

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode switches modes, abandoning any gesture in progress.
func (c *Controller) SetMode(m Mode) error {
	if _, ok := c.modes[m]; !ok {
		return fmt.Errorf("%w: unknown mode %q", shape.ErrConfiguration, m)
	}
	if m == c.mode {
		return nil
	}
	c.cancel()
	c.mode = m
	logger().Debug("mode changed", "mode", m)
	c.redraw()
	return nil
}

// DrawKind returns the kind built in draw mode.
func (c *Controller) DrawKind() shape.Kind { return c.opts.DrawKind }

// SetDrawKind changes the kind built in draw mode.
func (c *Controller) SetDrawKind(k shape.Kind) error {
	if _, ok := c.registry.Drawer(k); !ok {
		return fmt.Errorf("%w: %s cannot be drawn", shape.ErrConfiguration, k)
	}
	c.opts.DrawKind = k
	return nil
}

// SetDrawParams changes the parameters for shapes drawn from now on.
func (c *Controller) SetDrawParams(p shape.Params) { c.opts.DrawParams = p }

// Handle runs op in the active mode.
func (c *Controller) Handle(op Op, ev Pointer) error {
	h := c.modes[c.mode][op]
	if h == nil {
		return nil
	}
	if err := h(c, ev); err != nil {
		return fmt.Errorf("%s %s: %w", c.mode, op, err)
	}
	return nil
}

// Dispatch runs the operation bound to a host input name. It reports
// whether the name was bound.
func (c *Controller) Dispatch(name string, ev Pointer) (bool, error) {
	op, ok := c.bindings.Lookup(name)
	if !ok {
		return false, nil
	}
	return true, c.Handle(op, ev)
}

func (c *Controller) PointerDown(ev Pointer) error  { return c.Handle(OpPointerDown, ev) }
func (c *Controller) PointerMove(ev Pointer) error  { return c.Handle(OpPointerMove, ev) }
func (c *Controller) PointerUp(ev Pointer) error    { return c.Handle(OpPointerUp, ev) }
func (c *Controller) AddVertex(ev Pointer) error    { return c.Handle(OpAddVertex, ev) }
func (c *Controller) RemoveVertex(ev Pointer) error { return c.Handle(OpRemoveVertex, ev) }

// cancel drops any uncommitted draw or edit gesture.
func (c *Controller) cancel() {
	c.draw = nil
	c.edit = nil
}

// On registers fn for controller events of type t.
func (c *Controller) On(t EventType, fn func(Event)) notify.Handle {
	return c.events.On(t, fn)
}

func (c *Controller) emit(t EventType, tags []string, shapes []shape.Shape) {
	c.events.Emit(t, Event{Type: t, Tags: tags, Shapes: shapes})
}

// Selection returns the selected tags in selection order.
func (c *Controller) Selection() []string { return c.sel.Tags() }

// IsSelected reports whether tag is selected.
func (c *Controller) IsSelected(tag string) bool { return c.sel.Contains(tag) }

// Select selects the object tagged tag, replacing the selection unless
// multi-select is enabled.
func (c *Controller) Select(tag string) error {
	if !c.canvas.Has(tag) {
		return fmt.Errorf("%w: %q", canvas.ErrTagNotFound, tag)
	}
	if c.opts.MultiSelect {
		if !c.sel.Add(tag) {
			return nil
		}
	} else {
		c.sel.Set(tag)
	}
	c.selectionChanged()
	return nil
}

// Deselect removes tag from the selection.
func (c *Controller) Deselect(tag string) {
	if c.sel.Remove(tag) {
		c.selectionChanged()
	}
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	if c.sel.Clear() {
		c.selectionChanged()
	}
}

func (c *Controller) selectionChanged() {
	c.emit(EventSelect, c.sel.Tags(), c.shapesOf(c.sel.tags))
	c.redraw()
}

// purge forgets deleted objects.
func (c *Controller) purge(tags []string) {
	changed := false
	for _, t := range tags {
		if c.sel.Remove(t) {
			changed = true
		}
		if c.edit != nil && c.edit.involves(t) {
			c.edit = nil
		}
	}
	if changed {
		c.emit(EventSelect, c.sel.Tags(), c.shapesOf(c.sel.tags))
	}
}

func (c *Controller) shapesOf(tags []string) []shape.Shape {
	out := make([]shape.Shape, 0, len(tags))
	for _, t := range tags {
		if s, err := c.canvas.Get(t); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// pickRadius converts a pixel tolerance to data units in the canvas viewer.
func (c *Controller) pickRadius(px float64) float64 {
	v := c.canvas.Viewer()
	if v == nil {
		return px
	}
	sx, sy := v.ScaleXY()
	return geom.DataRadius(px, sx, sy)
}

// throttledRedraw repaints unless the last repaint was too recent.
func (c *Controller) throttledRedraw() {
	if c.throttle.Ready() {
		c.redraw()
	}
}

func (c *Controller) redraw() {
	if v := c.canvas.Viewer(); v != nil {
		v.Redraw(canvas.WhenceRepaint)
	}
}

func logger() *slog.Logger { return shape.Logger() }
