package shape

import (
	"errors"
	"fmt"
	"slices"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// Compound is an ordered container of shapes and is itself a shape.
// Children are drawn in slice order, so the last child is on top.
//
// A compound owns its children: adding a shape attaches it, removing it
// detaches it. A transient compound is a non-owning view over shapes that
// belong elsewhere; it never attaches or detaches them.
type Compound struct {
	Object
	// Opaque compounds are hit-tested and reported as a single unit.
	// Otherwise sweeps look through the compound at its children.
	Opaque bool

	children  []Shape
	transient bool
}

// NewCompound returns a data-space compound owning children. Either all
// children are attached or none is.
func NewCompound(children ...Shape) (*Compound, error) {
	c := &Compound{Object: newObject(DefaultParams())}
	for _, s := range children {
		if err := c.AddChild(s, nil); err != nil {
			c.RemoveAll()
			return nil, err
		}
	}
	return c, nil
}

// NewTransient returns a compound that groups members for the duration of
// a gesture without taking ownership of them.
func NewTransient(members []Shape) *Compound {
	c := &Compound{Object: newObject(DefaultParams()), transient: true}
	c.children = slices.Clone(members)
	return c
}

func (c *Compound) Kind() Kind { return KindCompound }

// Transient reports whether c is a non-owning view.
func (c *Compound) Transient() bool { return c.transient }

// MapperFor resolves a mapper for a child: c's own override when the space
// matches, otherwise c's owner chain.
func (c *Compound) MapperFor(space coord.Space) (coord.Mapper, error) {
	if space == "" {
		space = coord.SpaceData
	}
	if c.mapper != nil && c.Space == space {
		return c.mapper, nil
	}
	if c.owner == nil {
		if space == coord.SpaceData {
			return coord.DataMapper{}, nil
		}
		return nil, fmt.Errorf("%w: %s space needs a container", ErrDetached, space)
	}
	return c.owner.MapperFor(space)
}

// Children returns the children bottom to top. The slice is a copy.
func (c *Compound) Children() []Shape { return slices.Clone(c.children) }

// Len returns the number of children.
func (c *Compound) Len() int { return len(c.children) }

// Index returns the z-position of s, or -1.
func (c *Compound) Index(s Shape) int {
	return slices.IndexFunc(c.children, func(o Shape) bool { return o == s })
}

func (c *Compound) indexOf(s Shape, what string) (int, error) {
	i := c.Index(s)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s not found", ErrConfiguration, what)
	}
	return i, nil
}

// AddChild appends s, or inserts it directly below before when before is
// not nil.
func (c *Compound) AddChild(s Shape, before Shape) error {
	if s == nil {
		return fmt.Errorf("%w: nil shape", ErrConfiguration)
	}
	if s == Shape(c) {
		return fmt.Errorf("%w: compound cannot contain itself", ErrConfiguration)
	}
	if c.Index(s) >= 0 {
		return fmt.Errorf("%w: shape is already a child", ErrConfiguration)
	}
	at := len(c.children)
	if before != nil {
		i, err := c.indexOf(before, "sibling")
		if err != nil {
			return err
		}
		at = i
	}
	if !c.transient {
		if err := s.Base().Attach(c); err != nil {
			return err
		}
	}
	c.children = slices.Insert(c.children, at, s)
	return nil
}

// RaiseChild moves s to the top, or directly above above when above is not
// nil.
func (c *Compound) RaiseChild(s Shape, above Shape) error {
	i, err := c.indexOf(s, "shape")
	if err != nil {
		return err
	}
	if above != nil {
		if _, err := c.indexOf(above, "reference sibling"); err != nil {
			return err
		}
	}
	if above == s {
		return nil
	}
	c.children = slices.Delete(c.children, i, i+1)
	at := len(c.children)
	if above != nil {
		at = c.Index(above) + 1
	}
	c.children = slices.Insert(c.children, at, s)
	return nil
}

// LowerChild moves s to the bottom, or directly below below when below is
// not nil.
func (c *Compound) LowerChild(s Shape, below Shape) error {
	i, err := c.indexOf(s, "shape")
	if err != nil {
		return err
	}
	if below != nil {
		if _, err := c.indexOf(below, "reference sibling"); err != nil {
			return err
		}
	}
	if below == s {
		return nil
	}
	c.children = slices.Delete(c.children, i, i+1)
	at := 0
	if below != nil {
		at = c.Index(below)
	}
	c.children = slices.Insert(c.children, at, s)
	return nil
}

// RemoveChild takes s out of c and detaches it, leaving s intact so it can
// be added elsewhere.
func (c *Compound) RemoveChild(s Shape) error {
	i := c.Index(s)
	if i < 0 {
		return ErrNotChild
	}
	c.children = slices.Delete(c.children, i, i+1)
	if !c.transient {
		s.Base().Detach()
	}
	return nil
}

// DeleteChild removes s and, when s is a compound, deletes its subtree.
func (c *Compound) DeleteChild(s Shape) error {
	if err := c.RemoveChild(s); err != nil {
		return err
	}
	if sub, ok := s.(*Compound); ok && !c.transient && !sub.transient {
		sub.DeleteAll()
	}
	return nil
}

// DeleteAll deletes every child.
func (c *Compound) DeleteAll() {
	for len(c.children) > 0 {
		_ = c.DeleteChild(c.children[len(c.children)-1])
	}
}

// RemoveAll detaches every child without deleting subtrees.
func (c *Compound) RemoveAll() {
	for len(c.children) > 0 {
		_ = c.RemoveChild(c.children[len(c.children)-1])
	}
}

func (c *Compound) Points() ([]vec.Vec2, error) {
	var pts []vec.Vec2
	for _, s := range c.children {
		p, err := s.Points()
		if err != nil {
			return nil, err
		}
		pts = append(pts, p...)
	}
	return pts, nil
}

// Center is the center of the bounding box.
func (c *Compound) Center() (vec.Vec2, error) {
	r, err := c.LLUR()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Center(r), nil
}

func (c *Compound) Contains(p vec.Vec2) (bool, error) {
	for _, s := range c.children {
		ok, err := s.Contains(p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ContainsPoints is the union of the children's masks.
func (c *Compound) ContainsPoints(pts []vec.Vec2) ([]bool, error) {
	mask := make([]bool, len(pts))
	for _, s := range c.children {
		sub, err := ContainsPoints(s, pts)
		if err != nil {
			return nil, err
		}
		for i, hit := range sub {
			mask[i] = mask[i] || hit
		}
	}
	return mask, nil
}

func (c *Compound) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	for _, s := range c.children {
		ok, err := s.SelectContains(v, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Compound) EditPoints() ([]EditPoint, error) {
	r, err := c.LLUR()
	if err != nil {
		return nil, err
	}
	ctr := geom.Center(r)
	scale, rot := boxHandles(ctr, r.Dx()/2, r.Dy()/2, 0)
	return []EditPoint{
		{Pos: ctr, Role: HandleMove},
		{Pos: scale, Role: HandleScale},
		{Pos: rot, Role: HandleRotate},
	}, nil
}

func (c *Compound) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	if err := checkIndex(c, i, 3); err != nil {
		return err
	}
	if i == 0 {
		return c.MoveTo(p)
	}
	eps, err := c.EditPoints()
	if err != nil {
		return err
	}
	d, err = detailFor(c, d, eps[i].Pos)
	if err != nil {
		return err
	}
	if i == 1 {
		return dragScale(c, d, p)
	}
	return dragRotate(c, d, p)
}

// LLUR is the union of the children's boxes, computed on every call.
func (c *Compound) LLUR() (rect.Rect, error) {
	var u rect.Rect
	have := false
	for _, s := range c.children {
		r, err := s.LLUR()
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			return rect.Rect{}, err
		}
		if !have {
			u, have = r, true
			continue
		}
		u.Add(r.LLx, r.LLy)
		u.Add(r.URx, r.URy)
	}
	if !have {
		return rect.Rect{}, ErrEmpty
	}
	return u, nil
}

func (c *Compound) MoveDelta(dx, dy float64) error {
	return c.each(func(s Shape) error { return s.MoveDelta(dx, dy) })
}

func (c *Compound) MoveTo(p vec.Vec2) error { return moveTo(c, p) }

func (c *Compound) RotateBy(deg float64, pivot vec.Vec2) error {
	return c.each(func(s Shape) error { return s.RotateBy(deg, pivot) })
}

func (c *Compound) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	return c.each(func(s Shape) error { return s.ScaleBy(sx, sy, pivot) })
}

func (c *Compound) each(fn func(Shape) error) error {
	for _, s := range c.children {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// Draw draws the children bottom to top. A child that fails to draw does
// not stop the others.
func (c *Compound) Draw(r Renderer, v coord.Viewer) error {
	var errs []error
	for _, s := range c.children {
		if err := s.Draw(r, v); err != nil {
			errs = append(errs, fmt.Errorf("draw %s: %w", s.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// GetItemsAt returns the shapes whose exact geometry contains p, bottom to
// top. Non-opaque nested compounds are looked through; opaque ones are
// reported as a unit.
func (c *Compound) GetItemsAt(p vec.Vec2) []Shape {
	return c.query(func(s Shape) (bool, error) { return s.Contains(p) }, nil)
}

// SelectItemsAt is GetItemsAt with each shape's pick tolerance, restricted
// to shapes accepted by pred when pred is not nil.
func (c *Compound) SelectItemsAt(v coord.Viewer, p vec.Vec2, pred func(Shape) bool) []Shape {
	return c.query(func(s Shape) (bool, error) { return s.SelectContains(v, p) }, pred)
}

// SelectChildrenAt is SelectItemsAt without flattening: every direct child
// is hit-tested as a unit, compounds included.
func (c *Compound) SelectChildrenAt(v coord.Viewer, p vec.Vec2, pred func(Shape) bool) []Shape {
	var items []Shape
	for _, s := range c.children {
		if pred != nil && !pred(s) {
			continue
		}
		hit, err := hitTest(s, func(s Shape) (bool, error) { return s.SelectContains(v, p) })
		if err != nil {
			Logger().Warn("hit test sweep abandoned", "err", err)
			return nil
		}
		if hit {
			items = append(items, s)
		}
	}
	return items
}

// query runs a sweep. A shape whose test fails or panics is logged and the
// whole sweep comes back empty, so one malformed shape cannot surface as a
// partial answer or abort the caller.
func (c *Compound) query(test func(Shape) (bool, error), pred func(Shape) bool) []Shape {
	items, err := c.sweep(test, pred, nil)
	if err != nil {
		Logger().Warn("hit test sweep abandoned", "err", err)
		return nil
	}
	return items
}

func (c *Compound) sweep(test func(Shape) (bool, error), pred func(Shape) bool, items []Shape) ([]Shape, error) {
	for _, s := range c.children {
		if sub, ok := s.(*Compound); ok && !sub.Opaque {
			var err error
			if items, err = sub.sweep(test, pred, items); err != nil {
				return nil, err
			}
			continue
		}
		if pred != nil && !pred(s) {
			continue
		}
		hit, err := hitTest(s, test)
		if err != nil {
			return nil, err
		}
		if hit {
			items = append(items, s)
		}
	}
	return items, nil
}

// hitTest runs test on one shape, turning a panic into an error.
func hitTest(s Shape, test func(Shape) (bool, error)) (hit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			hit, err = false, fmt.Errorf("%s hit test panicked: %v", s.Kind(), r)
		}
	}()
	hit, err = test(s)
	if err != nil {
		return false, fmt.Errorf("%s hit test: %w", s.Kind(), err)
	}
	return hit, nil
}
