package shape

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// Rectangle is an axis-aligned rectangle given by two corners. The corners
// are kept normalized: P1 is the lower-left and P2 the upper-right corner
// in local coordinates.
type Rectangle struct {
	Object
	P1, P2 vec.Vec2
}

// NewRectangle returns a data-space rectangle. The corners may be given in
// any order.
func NewRectangle(x1, y1, x2, y2 float64) *Rectangle {
	s := &Rectangle{Object: newObject(DefaultParams()), P1: vec.Vec2{X: x1, Y: y1}, P2: vec.Vec2{X: x2, Y: y2}}
	s.normalize()
	return s
}

func (s *Rectangle) normalize() {
	if s.P1.X > s.P2.X {
		s.P1.X, s.P2.X = s.P2.X, s.P1.X
	}
	if s.P1.Y > s.P2.Y {
		s.P1.Y, s.P2.Y = s.P2.Y, s.P1.Y
	}
}

func (s *Rectangle) Kind() Kind { return KindRectangle }

// Points returns the four corners counter-clockwise from P1.
func (s *Rectangle) Points() ([]vec.Vec2, error) {
	return s.toData(
		s.P1,
		vec.Vec2{X: s.P2.X, Y: s.P1.Y},
		s.P2,
		vec.Vec2{X: s.P1.X, Y: s.P2.Y},
	)
}

func (s *Rectangle) Center() (vec.Vec2, error) {
	pts, err := s.Points()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Mean(pts), nil
}

func (s *Rectangle) Contains(p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.PointInPolygon(p, pts), nil
}

func (s *Rectangle) ContainsPoints(pts []vec.Vec2) ([]bool, error) {
	poly, err := s.Points()
	if err != nil {
		return nil, err
	}
	return geom.PointsInPolygon(pts, poly), nil
}

func (s *Rectangle) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return selectPolygon(p, pts, s.pickRadius(v)), nil
}

func (s *Rectangle) EditPoints() ([]EditPoint, error) {
	pts, err := s.Points()
	if err != nil {
		return nil, err
	}
	r, _ := geom.Bounds(pts)
	c := geom.Mean(pts)
	scale, _ := boxHandles(c, r.Dx()/2, r.Dy()/2, 0)
	eps := []EditPoint{{Pos: c, Role: HandleMove}}
	for _, p := range pts {
		eps = append(eps, EditPoint{Pos: p, Role: HandleVertex})
	}
	return append(eps, EditPoint{Pos: scale, Role: HandleScale}), nil
}

func (s *Rectangle) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	if err := checkIndex(s, i, 6); err != nil {
		return err
	}
	switch i {
	case 0:
		return s.MoveTo(p)
	case 5:
		eps, err := s.EditPoints()
		if err != nil {
			return err
		}
		d, err = detailFor(s, d, eps[5].Pos)
		if err != nil {
			return err
		}
		return dragScale(s, d, p)
	}

	l, err := s.fromData(p)
	if err != nil {
		return err
	}
	// The corner opposite the handle stays put for the whole drag, even
	// after the handle crosses it and the corners renormalize.
	var fixed vec.Vec2
	if d != nil && d.anchored {
		fixed = d.anchor
	} else {
		fixed = s.opposite(i)
		if d != nil {
			d.anchor, d.anchored = fixed, true
		}
	}
	s.P1, s.P2 = fixed, l[0]
	s.normalize()
	return nil
}

// opposite returns the local corner diagonally across from corner handle i.
func (s *Rectangle) opposite(i int) vec.Vec2 {
	switch i {
	case 1:
		return s.P2
	case 2:
		return vec.Vec2{X: s.P1.X, Y: s.P2.Y}
	case 3:
		return s.P1
	default:
		return vec.Vec2{X: s.P2.X, Y: s.P1.Y}
	}
}

func (s *Rectangle) LLUR() (rect.Rect, error) {
	pts, err := s.Points()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(pts)
	return r, nil
}

func (s *Rectangle) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	return nil
}

func (s *Rectangle) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

// RotateBy turns both corners about pivot. The result is normalized back to
// an axis-aligned rectangle; use a Box for a rotated frame.
func (s *Rectangle) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	s.normalize()
	return nil
}

func (s *Rectangle) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	s.normalize()
	return nil
}

func (s *Rectangle) Draw(r Renderer, v coord.Viewer) error {
	pts, err := s.Points()
	if err != nil {
		return err
	}
	r.DrawPolygon(canvasPoints(v, pts), s.Style)
	return nil
}

// Box is a rectangle given by its center and half-widths, rotated by
// Rotation degrees counter-clockwise about the center.
type Box struct {
	Object
	C                vec.Vec2
	XRadius, YRadius float64
	Rotation         float64
}

// NewBox returns a data-space box.
func NewBox(cx, cy, xr, yr, rot float64) *Box {
	return &Box{
		Object:   newObject(DefaultParams()),
		C:        vec.Vec2{X: cx, Y: cy},
		XRadius:  math.Abs(xr),
		YRadius:  math.Abs(yr),
		Rotation: rot,
	}
}

func (s *Box) Kind() Kind { return KindBox }

// frame returns the center and half-widths in data space.
func (s *Box) frame() (c vec.Vec2, xr, yr float64, err error) {
	return radiiFrame(&s.Object, s.C, s.XRadius, s.YRadius)
}

// radiiFrame converts a local center and local half-widths to data space.
func radiiFrame(o *Object, lc vec.Vec2, lxr, lyr float64) (c vec.Vec2, xr, yr float64, err error) {
	d, err := o.toData(lc)
	if err != nil {
		return vec.Vec2{}, 0, 0, err
	}
	rx, err := o.unitRatio(lc, false)
	if err != nil {
		return vec.Vec2{}, 0, 0, err
	}
	ry, err := o.unitRatio(lc, true)
	if err != nil {
		return vec.Vec2{}, 0, 0, err
	}
	return d[0], lxr * rx, lyr * ry, nil
}

// Points returns the rotated corners counter-clockwise from the lower left.
func (s *Box) Points() ([]vec.Vec2, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return nil, err
	}
	return rotatedCorners(c, xr, yr, s.Rotation), nil
}

func (s *Box) Center() (vec.Vec2, error) {
	c, _, _, err := s.frame()
	return c, err
}

// Contains uses the same half-open edge rule as Rectangle: the lower and
// left edges of an unrotated box are inside, the upper and right ones are not.
func (s *Box) Contains(p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.PointInPolygon(p, pts), nil
}

func (s *Box) ContainsPoints(pts []vec.Vec2) ([]bool, error) {
	poly, err := s.Points()
	if err != nil {
		return nil, err
	}
	return geom.PointsInPolygon(pts, poly), nil
}

func (s *Box) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return false, err
	}
	pad := s.pickRadius(v)
	q := unrotate(p, s.Rotation, c)
	return math.Abs(q.X-c.X) <= xr+pad && math.Abs(q.Y-c.Y) <= yr+pad, nil
}

func (s *Box) EditPoints() ([]EditPoint, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return nil, err
	}
	eps := []EditPoint{{Pos: c, Role: HandleMove}}
	for _, p := range rotatedCorners(c, xr, yr, s.Rotation) {
		eps = append(eps, EditPoint{Pos: p, Role: HandleVertex})
	}
	scale, rot := boxHandles(c, xr, yr, s.Rotation)
	return append(eps,
		EditPoint{Pos: scale, Role: HandleScale},
		EditPoint{Pos: rot, Role: HandleRotate},
	), nil
}

func (s *Box) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	if err := checkIndex(s, i, 7); err != nil {
		return err
	}
	switch i {
	case 0:
		return s.MoveTo(p)
	case 5, 6:
		eps, err := s.EditPoints()
		if err != nil {
			return err
		}
		d, err = detailFor(s, d, eps[i].Pos)
		if err != nil {
			return err
		}
		if i == 5 {
			return dragScale(s, d, p)
		}
		return dragRotate(s, d, p)
	}

	// A corner sets both half-widths, measured in the box's own frame.
	c, _, _, err := s.frame()
	if err != nil {
		return err
	}
	q := unrotate(p, s.Rotation, c)
	rx, err := s.unitRatio(s.C, false)
	if err != nil {
		return err
	}
	ry, err := s.unitRatio(s.C, true)
	if err != nil {
		return err
	}
	s.XRadius = math.Abs(q.X-c.X) / rx
	s.YRadius = math.Abs(q.Y-c.Y) / ry
	return nil
}

func (s *Box) LLUR() (rect.Rect, error) {
	pts, err := s.Points()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(pts)
	return r, nil
}

func (s *Box) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.C}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.C = pts[0]
	return nil
}

func (s *Box) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Box) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	s.Rotation = geom.NormalizeDegrees(s.Rotation + deg)
	return nil
}

func (s *Box) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	s.XRadius *= math.Abs(sx)
	s.YRadius *= math.Abs(sy)
	return nil
}

func (s *Box) Draw(r Renderer, v coord.Viewer) error {
	pts, err := s.Points()
	if err != nil {
		return err
	}
	r.DrawPolygon(canvasPoints(v, pts), s.Style)
	return nil
}

// selectPolygon is the forgiving pick test for closed outlines: inside, or
// within r of an edge.
func selectPolygon(p vec.Vec2, pts []vec.Vec2, r float64) bool {
	if geom.PointInPolygon(p, pts) {
		return true
	}
	return geom.NearestSegment(p, pts, r, true) >= 0
}
