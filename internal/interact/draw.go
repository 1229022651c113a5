package interact

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/shape"
)

// DrawContext is the state of a draw gesture between pointer-down and
// pointer-up. Points are in the local units of Params.Space.
type DrawContext struct {
	Kind   shape.Kind
	Params shape.Params
	Mapper coord.Mapper

	Start vec.Vec2
	Cur   vec.Vec2
	// Verts holds the vertices placed so far, starting with Start.
	Verts []vec.Vec2

	// Shape is the prospective shape, or nil while the points so far do
	// not make a valid one.
	Shape shape.Shape

	drawer shape.Drawer
}

// build runs the kind's drawer on the current points.
func (d *DrawContext) build() (shape.Shape, error) {
	s, err := d.drawer(d.Start, d.Cur, d.Verts, d.Params)
	if err != nil {
		return nil, err
	}
	s.Base().SetMapper(d.Mapper)
	return s, nil
}

func (d *DrawContext) rebuild() {
	s, err := d.build()
	if err != nil {
		d.Shape = nil
		return
	}
	d.Shape = s
}

func (d *DrawContext) local(p vec.Vec2) (vec.Vec2, error) {
	return d.Mapper.DataTo(p)
}

func (d *DrawContext) vertexKind() bool {
	return d.Kind == shape.KindPolygon || d.Kind == shape.KindPath
}

// Drawing returns the draw gesture in progress, or nil.
func (c *Controller) Drawing() *DrawContext { return c.draw }

func drawDown(c *Controller, ev Pointer) error {
	if c.draw != nil {
		// No pointer-up arrived for the previous gesture.
		logger().Debug("discarding uncommitted draw", "kind", c.draw.Kind)
		c.draw = nil
	}
	drawer, ok := c.registry.Drawer(c.opts.DrawKind)
	if !ok {
		return fmt.Errorf("%w: %s cannot be drawn", shape.ErrConfiguration, c.opts.DrawKind)
	}
	m, err := c.canvas.MapperFor(c.opts.DrawParams.Space)
	if err != nil {
		return err
	}
	start, err := m.DataTo(ev.Data)
	if err != nil {
		return err
	}
	c.draw = &DrawContext{
		Kind:   c.opts.DrawKind,
		Params: c.opts.DrawParams,
		Mapper: m,
		Start:  start,
		Cur:    start,
		Verts:  []vec.Vec2{start},
		drawer: drawer,
	}
	c.draw.rebuild()
	c.throttle.Reset()
	return nil
}

func drawMove(c *Controller, ev Pointer) error {
	d := c.draw
	if d == nil {
		return nil
	}
	cur, err := d.local(ev.Data)
	if err != nil {
		return err
	}
	d.Cur = cur
	d.rebuild()
	c.throttledRedraw()
	return nil
}

func drawUp(c *Controller, ev Pointer) error {
	d := c.draw
	if d == nil {
		return nil
	}
	c.draw = nil
	cur, err := d.local(ev.Data)
	if err != nil {
		c.redraw()
		return err
	}
	d.Cur = cur
	s, err := d.build()
	if err != nil {
		c.redraw()
		return fmt.Errorf("draw %s: %w", d.Kind, err)
	}
	// Once on the canvas the shape inherits its mapper.
	s.Base().SetMapper(nil)
	tag, err := c.canvas.Add(s)
	if err != nil {
		return err
	}
	logger().Info("shape drawn", "tag", tag, "kind", d.Kind)
	c.emit(EventDraw, []string{tag}, []shape.Shape{s})
	if c.opts.AutoSelect && s.Base().Editable {
		c.sel.Set(tag)
		c.selectionChanged()
	}
	return nil
}

func drawAddVertex(c *Controller, ev Pointer) error {
	d := c.draw
	if d == nil || !d.vertexKind() {
		return nil
	}
	p, err := d.local(ev.Data)
	if err != nil {
		return err
	}
	d.Cur = p
	d.Verts = append(d.Verts, p)
	d.rebuild()
	c.redraw()
	return nil
}

func drawRemoveVertex(c *Controller, _ Pointer) error {
	d := c.draw
	if d == nil || !d.vertexKind() || len(d.Verts) <= 1 {
		return nil
	}
	d.Verts = d.Verts[:len(d.Verts)-1]
	d.rebuild()
	c.redraw()
	return nil
}
