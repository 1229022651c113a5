package shape

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// moveTo translates s so that its center lands on p.
func moveTo(s Shape, p vec.Vec2) error {
	c, err := s.Center()
	if err != nil {
		return err
	}
	return s.MoveDelta(p.X-c.X, p.Y-c.Y)
}

// Point is a cross-shaped marker.
type Point struct {
	Object
	Pos vec.Vec2
	// Radius is the half-size of the marker in local units.
	Radius float64
}

// NewPoint returns a data-space marker at (x, y).
func NewPoint(x, y, radius float64) *Point {
	p := DefaultParams()
	return &Point{Object: newObject(p), Pos: vec.Vec2{X: x, Y: y}, Radius: radius}
}

func (s *Point) Kind() Kind { return KindPoint }

func (s *Point) Points() ([]vec.Vec2, error) { return s.toData(s.Pos) }

func (s *Point) Center() (vec.Vec2, error) {
	pts, err := s.Points()
	if err != nil {
		return vec.Vec2{}, err
	}
	return pts[0], nil
}

func (s *Point) dataRadius() (vec.Vec2, float64, error) {
	c, err := s.Center()
	if err != nil {
		return vec.Vec2{}, 0, err
	}
	ratio, err := s.unitRatio(s.Pos, false)
	if err != nil {
		return vec.Vec2{}, 0, err
	}
	return c, s.Radius * ratio, nil
}

func (s *Point) Contains(p vec.Vec2) (bool, error) {
	c, r, err := s.dataRadius()
	if err != nil {
		return false, err
	}
	return geom.Distance(c, p) <= r, nil
}

func (s *Point) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	c, r, err := s.dataRadius()
	if err != nil {
		return false, err
	}
	return geom.Distance(c, p) <= math.Max(r, s.pickRadius(v)), nil
}

func (s *Point) EditPoints() ([]EditPoint, error) {
	c, err := s.Center()
	if err != nil {
		return nil, err
	}
	return []EditPoint{{Pos: c, Role: HandleMove}}, nil
}

func (s *Point) SetEditPoint(i int, p vec.Vec2, _ *EditDetail) error {
	if err := checkIndex(s, i, 1); err != nil {
		return err
	}
	return s.MoveTo(p)
}

func (s *Point) LLUR() (rect.Rect, error) {
	c, r, err := s.dataRadius()
	if err != nil {
		return rect.Rect{}, err
	}
	return rect.Rect{LLx: c.X - r, LLy: c.Y - r, URx: c.X + r, URy: c.Y + r}, nil
}

func (s *Point) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.Pos = pts[0]
	return nil
}

func (s *Point) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Point) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.Pos = pts[0]
	return nil
}

func (s *Point) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.Pos = pts[0]
	s.Radius *= math.Max(math.Abs(sx), math.Abs(sy))
	return nil
}

func (s *Point) Draw(r Renderer, v coord.Viewer) error {
	c, rd, err := s.dataRadius()
	if err != nil {
		return err
	}
	pts := canvasPoints(v, []vec.Vec2{c})
	rc := canvasLength(v, c, rd)
	cp := pts[0]
	r.DrawLine(vec.Vec2{X: cp.X - rc, Y: cp.Y}, vec.Vec2{X: cp.X + rc, Y: cp.Y}, s.Style)
	r.DrawLine(vec.Vec2{X: cp.X, Y: cp.Y - rc}, vec.Vec2{X: cp.X, Y: cp.Y + rc}, s.Style)
	return nil
}

// Line is a straight segment between two points.
type Line struct {
	Object
	P1, P2 vec.Vec2
}

// NewLine returns a data-space segment.
func NewLine(x1, y1, x2, y2 float64) *Line {
	return &Line{Object: newObject(DefaultParams()), P1: vec.Vec2{X: x1, Y: y1}, P2: vec.Vec2{X: x2, Y: y2}}
}

func (s *Line) Kind() Kind { return KindLine }

func (s *Line) Points() ([]vec.Vec2, error) { return s.toData(s.P1, s.P2) }

func (s *Line) Center() (vec.Vec2, error) {
	pts, err := s.Points()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Mean(pts), nil
}

func (s *Line) Contains(p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.PointNearSegment(p, pts[0], pts[1], geom.Epsilon), nil
}

func (s *Line) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.PointNearSegment(p, pts[0], pts[1], s.pickRadius(v)), nil
}

func (s *Line) EditPoints() ([]EditPoint, error) {
	pts, err := s.Points()
	if err != nil {
		return nil, err
	}
	return []EditPoint{
		{Pos: geom.Mean(pts), Role: HandleMove},
		{Pos: pts[0], Role: HandleVertex},
		{Pos: pts[1], Role: HandleVertex},
	}, nil
}

func (s *Line) SetEditPoint(i int, p vec.Vec2, _ *EditDetail) error {
	if err := checkIndex(s, i, 3); err != nil {
		return err
	}
	if i == 0 {
		return s.MoveTo(p)
	}
	l, err := s.fromData(p)
	if err != nil {
		return err
	}
	if i == 1 {
		s.P1 = l[0]
	} else {
		s.P2 = l[0]
	}
	return nil
}

func (s *Line) LLUR() (rect.Rect, error) {
	pts, err := s.Points()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(pts)
	return r, nil
}

func (s *Line) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	return nil
}

func (s *Line) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Line) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	return nil
}

func (s *Line) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.P1, s.P2}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.P1, s.P2 = pts[0], pts[1]
	return nil
}

func (s *Line) Draw(r Renderer, v coord.Viewer) error {
	pts, err := s.Points()
	if err != nil {
		return err
	}
	c := canvasPoints(v, pts)
	r.DrawLine(c[0], c[1], s.Style)
	return nil
}
