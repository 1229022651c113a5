package shape

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// DefaultSelectRadius is the pick tolerance in canvas pixels given to new
// shapes.
const DefaultSelectRadius = 5.0

// Style holds the drawing attributes shared by all kinds.
type Style struct {
	Color     string    `json:"color"`
	LineWidth float64   `json:"lineWidth"`
	Alpha     float64   `json:"alpha"`
	Fill      bool      `json:"fill,omitempty"`
	FillColor string    `json:"fillColor,omitempty"`
	FillAlpha float64   `json:"fillAlpha,omitempty"`
	Dash      []float64 `json:"dash,omitempty"`
}

// DefaultStyle returns a thin opaque yellow outline.
func DefaultStyle() Style {
	return Style{Color: "#ffff00", LineWidth: 1, Alpha: 1, FillAlpha: 1}
}

// Object carries the state common to every shape. Concrete kinds embed it.
type Object struct {
	Style    Style
	Space    coord.Space
	Editable bool
	// SelectRadius is the pick tolerance in canvas pixels.
	SelectRadius float64

	owner  Owner
	mapper coord.Mapper
}

func newObject(p Params) Object {
	space := p.Space
	if space == "" {
		space = coord.SpaceData
	}
	st := p.Style
	if st.Color == "" {
		st = DefaultStyle()
	}
	radius := p.SelectRadius
	if radius <= 0 {
		radius = DefaultSelectRadius
	}
	return Object{Style: st, Space: space, Editable: p.Editable, SelectRadius: radius}
}

func (o *Object) Base() *Object { return o }

// Owner returns the container the shape is attached to, or nil.
func (o *Object) Owner() Owner { return o.owner }

// Attached reports whether the shape belongs to a container.
func (o *Object) Attached() bool { return o.owner != nil }

// Attach records owner as the shape's container. A shape belongs to at most
// one container.
func (o *Object) Attach(owner Owner) error {
	if owner == nil {
		return fmt.Errorf("%w: nil owner", ErrConfiguration)
	}
	if o.owner != nil && o.owner != owner {
		return fmt.Errorf("%w: shape already has an owner", ErrConfiguration)
	}
	o.owner = owner
	return nil
}

// Detach drops the owner reference. Later mapper lookups fall back to the
// detached behaviour.
func (o *Object) Detach() { o.owner = nil }

// SetMapper overrides the mapper inherited from the owner. Pass nil to
// inherit again.
func (o *Object) SetMapper(m coord.Mapper) { o.mapper = m }

// Mapper resolves the coordinate mapper for the shape's space: the override
// if set, otherwise whatever the owner chain provides. A detached data-space
// shape maps through the identity.
func (o *Object) Mapper() (coord.Mapper, error) {
	if o.mapper != nil {
		return o.mapper, nil
	}
	if o.owner == nil {
		if o.Space == "" || o.Space == coord.SpaceData {
			return coord.DataMapper{}, nil
		}
		return nil, fmt.Errorf("%w: %s space needs a container", ErrDetached, o.Space)
	}
	return o.owner.MapperFor(o.Space)
}

func (o *Object) toData(pts ...vec.Vec2) ([]vec.Vec2, error) {
	m, err := o.Mapper()
	if err != nil {
		return nil, err
	}
	return coord.MapAll(m.ToData, pts)
}

func (o *Object) fromData(pts ...vec.Vec2) ([]vec.Vec2, error) {
	m, err := o.Mapper()
	if err != nil {
		return nil, err
	}
	return coord.MapAll(m.DataTo, pts)
}

// offsetAll moves local points by data units in place.
func (o *Object) offsetAll(pts []vec.Vec2, dx, dy float64) error {
	m, err := o.Mapper()
	if err != nil {
		return err
	}
	for i, p := range pts {
		q, err := m.Offset(p, dx, dy)
		if err != nil {
			return err
		}
		pts[i] = q
	}
	return nil
}

// rotateAll rotates local points about a data-space pivot in place.
func (o *Object) rotateAll(pts []vec.Vec2, deg float64, pivot vec.Vec2) error {
	m, err := o.Mapper()
	if err != nil {
		return err
	}
	for i, p := range pts {
		q, err := m.Rotate(p, deg, pivot)
		if err != nil {
			return err
		}
		pts[i] = q
	}
	return nil
}

// scaleAll scales local points about a data-space pivot in place.
func (o *Object) scaleAll(pts []vec.Vec2, sx, sy float64, pivot vec.Vec2) error {
	d, err := o.toData(pts...)
	if err != nil {
		return err
	}
	for i := range d {
		d[i] = geom.ScalePoint(d[i], sx, sy, pivot)
	}
	l, err := o.fromData(d...)
	if err != nil {
		return err
	}
	copy(pts, l)
	return nil
}

// unitRatio returns how many data units one local unit spans at c, along
// the x axis or the y axis. Radii and text sizes are stored in local units
// and converted with it.
func (o *Object) unitRatio(c vec.Vec2, yAxis bool) (float64, error) {
	step := vec.Vec2{X: 1}
	if yAxis {
		step = vec.Vec2{Y: 1}
	}
	d, err := o.toData(c, c.Add(step))
	if err != nil {
		return 0, err
	}
	r := geom.Distance(d[0], d[1])
	if r < geom.Epsilon {
		return 1, nil
	}
	return r, nil
}

// pickRadius converts the pixel tolerance to data units for v.
func (o *Object) pickRadius(v coord.Viewer) float64 {
	px := o.SelectRadius
	if px <= 0 {
		px = DefaultSelectRadius
	}
	if v == nil {
		return px
	}
	sx, sy := v.ScaleXY()
	return geom.DataRadius(px, sx, sy)
}

// canvasPoints maps data-space points to the canvas of v.
func canvasPoints(v coord.Viewer, pts []vec.Vec2) []vec.Vec2 {
	if v == nil {
		return pts
	}
	out := make([]vec.Vec2, len(pts))
	for i, p := range pts {
		out[i] = v.DataToCanvas(p)
	}
	return out
}

// canvasLength converts a data length at c to canvas pixels for v.
func canvasLength(v coord.Viewer, c vec.Vec2, l float64) float64 {
	if v == nil {
		return l
	}
	a := v.DataToCanvas(c)
	b := v.DataToCanvas(vec.Vec2{X: c.X + l, Y: c.Y})
	return geom.Distance(a, b)
}

// EditDetail tracks a handle drag from pointer-down to pointer-up so that
// scale and rotate handles apply the total change since the gesture began,
// not the change since the previous pointer position.
type EditDetail struct {
	// Start is the pointer position when the drag began.
	Start vec.Vec2
	// Center is the pivot for scale and rotate handles.
	Center vec.Vec2

	scaled  float64
	rotated float64
	// anchor is the local corner held fixed during a rectangle corner drag.
	anchor   vec.Vec2
	anchored bool
}

// NewEditDetail starts a handle drag on s at start.
func NewEditDetail(s Shape, start vec.Vec2) (*EditDetail, error) {
	c, err := s.Center()
	if err != nil {
		return nil, err
	}
	return &EditDetail{Start: start, Center: c, scaled: 1}, nil
}

// detailFor returns d, or a fresh detail anchored at the handle position
// when the caller did not supply one.
func detailFor(s Shape, d *EditDetail, handle vec.Vec2) (*EditDetail, error) {
	if d != nil {
		if d.scaled == 0 {
			d.scaled = 1
		}
		return d, nil
	}
	return NewEditDetail(s, handle)
}

func dragScale(s Shape, d *EditDetail, p vec.Vec2) error {
	r0 := geom.Distance(d.Center, d.Start)
	r1 := geom.Distance(d.Center, p)
	if r0 < geom.Epsilon || r1 < geom.Epsilon {
		return nil
	}
	want := r1 / r0
	f := want / d.scaled
	d.scaled = want
	return s.ScaleBy(f, f, d.Center)
}

func dragRotate(s Shape, d *EditDetail, p vec.Vec2) error {
	if geom.Distance(d.Center, p) < geom.Epsilon {
		return nil
	}
	want := geom.Angle(d.Center, p) - geom.Angle(d.Center, d.Start)
	delta := want - d.rotated
	d.rotated = want
	return s.RotateBy(delta, d.Center)
}

// boxHandles returns the scale and rotate handle positions for a frame of
// half-widths xr, yr rotated by rot degrees about c.
func boxHandles(c vec.Vec2, xr, yr, rot float64) (scale, rotate vec.Vec2) {
	pad := 0.1 * math.Max(math.Abs(xr), math.Abs(yr))
	scale = geom.RotatePoint(vec.Vec2{X: c.X + xr + pad, Y: c.Y - yr - pad}, rot, c)
	rotate = geom.RotatePoint(vec.Vec2{X: c.X, Y: c.Y + yr + 2*pad}, rot, c)
	return scale, rotate
}

// rotatedCorners returns the corners of a frame with half-widths xr, yr
// centered on c and rotated by rot degrees, counter-clockwise from the lower left.
func rotatedCorners(c vec.Vec2, xr, yr, rot float64) []vec.Vec2 {
	pts := []vec.Vec2{
		{X: c.X - xr, Y: c.Y - yr},
		{X: c.X + xr, Y: c.Y - yr},
		{X: c.X + xr, Y: c.Y + yr},
		{X: c.X - xr, Y: c.Y + yr},
	}
	return geom.RotatePoints(pts, rot, c)
}

// unrotate maps p into the frame of a shape rotated by rot about c.
func unrotate(p vec.Vec2, rot float64, c vec.Vec2) vec.Vec2 {
	return geom.RotatePoint(p, -rot, c)
}

func checkIndex(s Shape, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s has no edit point %d", ErrConfiguration, s.Kind(), i)
	}
	return nil
}
