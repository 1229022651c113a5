// Package engine drives a single-user canvas for browser hosts. Every
// method takes and returns plain values and JSON strings so the wasm
// bridge stays a thin shim.
package engine

import (
	"encoding/json"
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/geom"
	"github.com/inamate/skycanvas/internal/interact"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/render/record"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

// Event is a canvas or controller notification waiting for the host.
type Event struct {
	Type   string   `json:"type"`
	Whence string   `json:"whence,omitempty"`
	Tags   []string `json:"tags"`
}

// Rect is a window-space box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Engine owns the canvas, its viewer and the command recorder.
type Engine struct {
	reg  *shape.Registry
	cv   *canvas.Canvas
	view *viewer.Viewer
	rec  record.Recorder

	id, name   string
	background string
	wcs        map[string]float64

	events []Event
	subs   []notify.Handle
}

// NewEngine creates an engine with an empty canvas.
func NewEngine(opts viewer.Options) (*Engine, error) {
	e := &Engine{reg: shape.NewRegistry(), cv: canvas.New()}
	v, err := viewer.New(e.cv, e.reg, opts)
	if err != nil {
		return nil, err
	}
	e.view = v
	ctrl := v.Controller()
	e.subs = append(e.subs,
		e.cv.On(canvas.EventModified, func(ev canvas.Event) {
			e.events = append(e.events, Event{Type: "modified", Whence: ev.Whence.String(), Tags: ev.Tags})
		}),
		e.cv.On(canvas.EventDeleted, func(ev canvas.Event) {
			e.events = append(e.events, Event{Type: "deleted", Tags: ev.Tags})
		}),
	)
	for _, t := range []interact.EventType{interact.EventDraw, interact.EventEdit, interact.EventSelect} {
		e.subs = append(e.subs, ctrl.On(t, func(ev interact.Event) {
			e.events = append(e.events, Event{Type: ev.Type.String(), Tags: ev.Tags})
		}))
	}
	return e, nil
}

// Close releases the canvas subscriptions.
func (e *Engine) Close() {
	for _, h := range e.subs {
		h.Remove()
	}
	e.subs = nil
	e.view.Close()
}

func (e *Engine) Viewer() *viewer.Viewer { return e.view }

// --- Commands (frontend → backend) ---

// LoadDocument replaces the canvas with a JSON document. On error the
// canvas is left as it was.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	return e.load(doc)
}

// LoadSampleDocument loads the demo field.
func (e *Engine) LoadSampleDocument(canvasID string) error {
	return e.load(document.NewSampleDocument(canvasID))
}

func (e *Engine) load(doc *document.Document) error {
	solver, err := doc.Solver()
	if err != nil {
		return err
	}
	if err := document.Restore(doc, e.reg, e.cv); err != nil {
		return err
	}
	e.view.SetSolver(solver)
	e.id, e.name, e.background, e.wcs = doc.ID, doc.Name, doc.Background, doc.WCS
	if doc.Width > 0 && doc.Height > 0 {
		return e.view.SetWindowSize(float64(doc.Width), float64(doc.Height))
	}
	return nil
}

// Pointer feeds a host input event at window point (x, y). It reports
// whether name is bound.
func (e *Engine) Pointer(name string, x, y float64, modifier bool) (bool, error) {
	return e.view.Input(name, vec.Vec2{X: x, Y: y}, modifier)
}

func (e *Engine) SetMode(mode string) error {
	return e.view.Controller().SetMode(interact.Mode(mode))
}

func (e *Engine) SetKind(kind string) error {
	k, err := shape.ParseKind(kind)
	if err != nil {
		return err
	}
	return e.view.Controller().SetDrawKind(k)
}

// SetSelection replaces the selection with the given tags.
func (e *Engine) SetSelection(tags []string) error {
	ctrl := e.view.Controller()
	ctrl.ClearSelection()
	for _, t := range tags {
		if err := ctrl.Select(t); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSelection deletes the selected objects and returns how many went.
func (e *Engine) DeleteSelection() int {
	return e.cv.DeleteByTags(e.view.Controller().Selection())
}

func (e *Engine) Resize(wd, ht float64) error { return e.view.SetWindowSize(wd, ht) }
func (e *Engine) SetZoom(z float64) error     { return e.view.SetZoom(z) }
func (e *Engine) ZoomFit() error              { return e.view.ZoomFit() }

// --- Queries (frontend ← backend) ---

// Tick reports whether the canvas needs repainting.
func (e *Engine) Tick() bool {
	dirty, _ := e.view.Dirty()
	return dirty
}

// Render draws the canvas and returns the draw commands as JSON.
func (e *Engine) Render() string {
	e.rec.Reset()
	if err := e.view.Render(&e.rec); err != nil {
		logger().Warn("render incomplete", "error", err)
	}
	result, _ := record.DrawCommandsToJSON(e.rec.Commands)
	return result
}

// HitTest returns the tag of the topmost object under window point (x, y),
// or an empty string.
func (e *Engine) HitTest(x, y float64) string {
	hits := e.cv.SelectObjectsAt(e.view.CanvasToData(vec.Vec2{X: x, Y: y}), nil)
	if len(hits) == 0 {
		return ""
	}
	tag, _ := e.cv.TagOf(hits[len(hits)-1])
	return tag
}

// SelectionBounds returns the window-space box around the selected
// objects as JSON.
func (e *Engine) SelectionBounds() string {
	var (
		box   rect.Rect
		found bool
	)
	for _, tag := range e.view.Controller().Selection() {
		s, err := e.cv.Get(tag)
		if err != nil {
			continue
		}
		r, err := s.LLUR()
		if err != nil {
			continue
		}
		pts := geom.Corners(r)
		for i, p := range pts {
			pts[i] = e.view.DataToCanvas(p)
		}
		b, ok := geom.Bounds(pts)
		if !ok {
			continue
		}
		if found {
			box.Add(b.LLx, b.LLy)
			box.Add(b.URx, b.URy)
		} else {
			box, found = b, true
		}
	}
	data, _ := json.Marshal(Rect{X: box.LLx, Y: box.LLy, Width: box.Dx(), Height: box.Dy()})
	return string(data)
}

// GetDocument returns the canvas as a JSON document.
func (e *Engine) GetDocument() string {
	doc, err := document.Snapshot(e.cv)
	if err != nil {
		return errorJSON(err)
	}
	doc.ID, doc.Name, doc.WCS = e.id, e.name, e.wcs
	if e.background != "" {
		doc.Background = e.background
	}
	data, err := doc.JSON()
	if err != nil {
		return errorJSON(err)
	}
	return string(data)
}

// GetSelection returns the selected tags as JSON.
func (e *Engine) GetSelection() string {
	sel := e.view.Controller().Selection()
	if sel == nil {
		sel = []string{}
	}
	data, _ := json.Marshal(sel)
	return string(data)
}

// GetState describes the controller for toolbars.
func (e *Engine) GetState() string {
	ctrl := e.view.Controller()
	sx, sy := e.view.ScaleXY()
	data, _ := json.Marshal(map[string]interface{}{
		"mode":    ctrl.Mode(),
		"kind":    ctrl.DrawKind().String(),
		"objects": e.cv.Len(),
		"scaleX":  sx,
		"scaleY":  sy,
		"modes":   ctrl.Modes(),
		"kinds":   kindNames(e.reg),
	})
	return string(data)
}

// Cursor formats the status line for window point (x, y).
func (e *Engine) Cursor(x, y float64) string {
	return e.view.FormatCursor(vec.Vec2{X: x, Y: y})
}

// DrainEvents returns the notifications since the last call as JSON.
func (e *Engine) DrainEvents() string {
	evs := e.events
	e.events = nil
	if evs == nil {
		evs = []Event{}
	}
	data, _ := json.Marshal(evs)
	return string(data)
}

func kindNames(reg *shape.Registry) []string {
	var out []string
	for _, k := range reg.Kinds() {
		if _, ok := reg.Drawer(k); ok {
			out = append(out, k.String())
		}
	}
	return out
}

func errorJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"error": fmt.Sprint(err)})
	return string(data)
}
