package interact

import (
	"slices"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/geom"
	"github.com/inamate/skycanvas/internal/shape"
)

// gesture is an edit drag in progress.
type gesture struct {
	tags []string
	// target is the dragged object, or a transient compound over several.
	target shape.Shape
	// handle is the grabbed edit point, or -1 for a whole-object move.
	handle int
	detail *shape.EditDetail
	last   vec.Vec2
	moved  bool
}

func (g *gesture) involves(tag string) bool { return slices.Contains(g.tags, tag) }

func (g *gesture) apply(p vec.Vec2) error {
	if g.handle >= 0 {
		if err := g.target.SetEditPoint(g.handle, p, g.detail); err != nil {
			return err
		}
		g.moved = true
		return nil
	}
	dx, dy := p.X-g.last.X, p.Y-g.last.Y
	if dx == 0 && dy == 0 {
		return nil
	}
	if err := g.target.MoveDelta(dx, dy); err != nil {
		return err
	}
	g.last = p
	g.moved = true
	return nil
}

// Editing reports the tags of the edit gesture in progress and the grabbed
// control point, -1 for a whole-object move.
func (c *Controller) Editing() ([]string, int, bool) {
	if c.edit == nil {
		return nil, 0, false
	}
	return slices.Clone(c.edit.tags), c.edit.handle, true
}

func editable(s shape.Shape) bool { return s.Base().Editable }

// hitHandle finds the control point of a selected object nearest to p
// within radius.
func (c *Controller) hitHandle(p vec.Vec2, radius float64) *gesture {
	var best *gesture
	bestDist := radius
	for _, tag := range c.sel.tags {
		s, err := c.canvas.Get(tag)
		if err != nil || !editable(s) {
			continue
		}
		eps, err := s.EditPoints()
		if err != nil {
			logger().Warn("edit points unavailable", "tag", tag, "err", err)
			continue
		}
		for i, ep := range eps {
			d := geom.Distance(p, ep.Pos)
			if d > bestDist || (best != nil && d == bestDist) {
				continue
			}
			best = &gesture{tags: []string{tag}, target: s, handle: i, last: p}
			bestDist = d
		}
	}
	return best
}

// beginMove starts a whole-object drag of the tagged objects. Several
// objects are grouped in a transient compound that lives only as long as
// the gesture.
func (c *Controller) beginMove(p vec.Vec2, tags []string) {
	shapes := c.shapesOf(tags)
	if len(shapes) == 0 {
		return
	}
	var target shape.Shape = shapes[0]
	if len(shapes) > 1 {
		target = shape.NewTransient(shapes)
	}
	c.edit = &gesture{tags: slices.Clone(tags), target: target, handle: -1, last: p}
}

func (c *Controller) tagsOf(shapes []shape.Shape) []string {
	tags := make([]string, 0, len(shapes))
	for _, s := range shapes {
		if t, ok := c.canvas.TagOf(s); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

func editDown(c *Controller, ev Pointer) error {
	c.edit = nil
	p := ev.Data

	// Control points of selected objects come first.
	if g := c.hitHandle(p, c.pickRadius(c.opts.EditRadius)); g != nil {
		d, err := shape.NewEditDetail(g.target, p)
		if err != nil {
			return err
		}
		g.detail = d
		c.edit = g
		c.throttle.Reset()
		return nil
	}

	// Then the bodies of selected objects.
	onSelected := c.tagsOf(c.canvas.SelectObjectsAt(p, func(s shape.Shape) bool {
		t, ok := c.canvas.TagOf(s)
		return ok && c.sel.Contains(t) && editable(s)
	}))
	if len(onSelected) > 0 {
		if ev.Modifier && c.opts.MultiSelect {
			c.Deselect(onSelected[len(onSelected)-1])
			return nil
		}
		c.beginMove(p, c.sel.Tags())
		c.throttle.Reset()
		return nil
	}

	// Finally any editable object under the pointer, topmost first.
	hits := c.tagsOf(c.canvas.SelectObjectsAt(p, editable))
	if len(hits) == 0 {
		if !ev.Modifier {
			c.ClearSelection()
		}
		return nil
	}
	hit := hits[len(hits)-1]
	switch {
	case c.opts.MultiSelect && (ev.Modifier || c.sel.Len() > 1):
		// Join the existing selection and drag everything together.
		c.sel.Add(hit)
	default:
		c.sel.Set(hit)
	}
	c.selectionChanged()
	c.beginMove(p, c.sel.Tags())
	c.throttle.Reset()
	return nil
}

func editMove(c *Controller, ev Pointer) error {
	g := c.edit
	if g == nil {
		return nil
	}
	if err := g.apply(ev.Data); err != nil {
		return err
	}
	c.throttledRedraw()
	return nil
}

func editUp(c *Controller, ev Pointer) error {
	g := c.edit
	if g == nil {
		return nil
	}
	c.edit = nil
	err := g.apply(ev.Data)
	if g.moved {
		c.canvas.Touch(canvas.WhenceRepaint, g.tags...)
	} else {
		c.redraw()
	}
	if err != nil {
		return err
	}
	c.emit(EventEdit, g.tags, c.shapesOf(g.tags))
	return nil
}

type vertexTarget struct {
	tag string
	ve  shape.VertexEditor
}

// vertexTargets returns the selected objects whose vertices can be edited,
// in selection order.
func (c *Controller) vertexTargets() []vertexTarget {
	var out []vertexTarget
	for _, tag := range c.sel.tags {
		s, err := c.canvas.Get(tag)
		if err != nil || !editable(s) {
			continue
		}
		if ve, ok := s.(shape.VertexEditor); ok {
			out = append(out, vertexTarget{tag: tag, ve: ve})
		}
	}
	return out
}

func editAddVertex(c *Controller, ev Pointer) error {
	radius := c.pickRadius(c.opts.EditRadius)
	for _, t := range c.vertexTargets() {
		pts, err := t.ve.Points()
		if err != nil {
			return err
		}
		i := geom.NearestSegment(ev.Data, pts, radius, t.ve.Closed())
		if i < 0 {
			continue
		}
		if err := t.ve.InsertVertex(i, ev.Data); err != nil {
			return err
		}
		c.vertexEdited(t.tag, t.ve)
		return nil
	}
	return nil
}

func editRemoveVertex(c *Controller, ev Pointer) error {
	radius := c.pickRadius(c.opts.EditRadius)
	for _, t := range c.vertexTargets() {
		pts, err := t.ve.Points()
		if err != nil {
			return err
		}
		i := geom.NearestPoint(ev.Data, pts, radius)
		if i < 0 {
			continue
		}
		if err := t.ve.DeleteVertex(i); err != nil {
			return err
		}
		c.vertexEdited(t.tag, t.ve)
		return nil
	}
	return nil
}

func (c *Controller) vertexEdited(tag string, s shape.Shape) {
	c.canvas.Touch(canvas.WhenceRepaint, tag)
	c.emit(EventEdit, []string{tag}, []shape.Shape{s})
}
