package shape

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// ellipseSegments is the number of chords used to draw an ellipse.
const ellipseSegments = 72

// Circle is given by its center and radius.
type Circle struct {
	Object
	C      vec.Vec2
	Radius float64
}

// NewCircle returns a data-space circle.
func NewCircle(cx, cy, r float64) *Circle {
	return &Circle{Object: newObject(DefaultParams()), C: vec.Vec2{X: cx, Y: cy}, Radius: math.Abs(r)}
}

func (s *Circle) Kind() Kind { return KindCircle }

func (s *Circle) frame() (vec.Vec2, float64, error) {
	c, r, _, err := radiiFrame(&s.Object, s.C, s.Radius, 0)
	return c, r, err
}

func (s *Circle) Points() ([]vec.Vec2, error) { return s.toData(s.C) }

func (s *Circle) Center() (vec.Vec2, error) {
	c, _, err := s.frame()
	return c, err
}

func (s *Circle) Contains(p vec.Vec2) (bool, error) {
	c, r, err := s.frame()
	if err != nil {
		return false, err
	}
	return geom.Distance(c, p) <= r, nil
}

func (s *Circle) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	c, r, err := s.frame()
	if err != nil {
		return false, err
	}
	return geom.Distance(c, p) <= r+s.pickRadius(v), nil
}

func (s *Circle) EditPoints() ([]EditPoint, error) {
	c, r, err := s.frame()
	if err != nil {
		return nil, err
	}
	return []EditPoint{
		{Pos: c, Role: HandleMove},
		{Pos: vec.Vec2{X: c.X + r, Y: c.Y}, Role: HandleRadius},
	}, nil
}

func (s *Circle) SetEditPoint(i int, p vec.Vec2, _ *EditDetail) error {
	if err := checkIndex(s, i, 2); err != nil {
		return err
	}
	if i == 0 {
		return s.MoveTo(p)
	}
	c, _, err := s.frame()
	if err != nil {
		return err
	}
	ratio, err := s.unitRatio(s.C, false)
	if err != nil {
		return err
	}
	s.Radius = geom.Distance(c, p) / ratio
	return nil
}

func (s *Circle) LLUR() (rect.Rect, error) {
	c, r, err := s.frame()
	if err != nil {
		return rect.Rect{}, err
	}
	return rect.Rect{LLx: c.X - r, LLy: c.Y - r, URx: c.X + r, URy: c.Y + r}, nil
}

func (s *Circle) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.C}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.C = pts[0]
	return nil
}

func (s *Circle) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Circle) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	return nil
}

func (s *Circle) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	s.Radius *= math.Max(math.Abs(sx), math.Abs(sy))
	return nil
}

func (s *Circle) Draw(r Renderer, v coord.Viewer) error {
	c, rd, err := s.frame()
	if err != nil {
		return err
	}
	r.DrawCircle(canvasPoints(v, []vec.Vec2{c})[0], canvasLength(v, c, rd), s.Style)
	return nil
}

// Ellipse is given by its center, two half-axes and a rotation in degrees.
type Ellipse struct {
	Object
	C                vec.Vec2
	XRadius, YRadius float64
	Rotation         float64
}

// NewEllipse returns a data-space ellipse.
func NewEllipse(cx, cy, xr, yr, rot float64) *Ellipse {
	return &Ellipse{
		Object:   newObject(DefaultParams()),
		C:        vec.Vec2{X: cx, Y: cy},
		XRadius:  math.Abs(xr),
		YRadius:  math.Abs(yr),
		Rotation: rot,
	}
}

func (s *Ellipse) Kind() Kind { return KindEllipse }

func (s *Ellipse) frame() (c vec.Vec2, xr, yr float64, err error) {
	return radiiFrame(&s.Object, s.C, s.XRadius, s.YRadius)
}

func (s *Ellipse) Points() ([]vec.Vec2, error) { return s.toData(s.C) }

func (s *Ellipse) Center() (vec.Vec2, error) {
	c, _, _, err := s.frame()
	return c, err
}

func inEllipse(p, c vec.Vec2, xr, yr, rot float64) bool {
	if xr < geom.Epsilon || yr < geom.Epsilon {
		return false
	}
	q := unrotate(p, rot, c)
	dx, dy := (q.X-c.X)/xr, (q.Y-c.Y)/yr
	return dx*dx+dy*dy <= 1
}

func (s *Ellipse) Contains(p vec.Vec2) (bool, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return false, err
	}
	return inEllipse(p, c, xr, yr, s.Rotation), nil
}

func (s *Ellipse) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return false, err
	}
	pad := s.pickRadius(v)
	return inEllipse(p, c, xr+pad, yr+pad, s.Rotation), nil
}

func (s *Ellipse) EditPoints() ([]EditPoint, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return nil, err
	}
	scale, rot := boxHandles(c, xr, yr, s.Rotation)
	return []EditPoint{
		{Pos: c, Role: HandleMove},
		{Pos: geom.RotatePoint(vec.Vec2{X: c.X + xr, Y: c.Y}, s.Rotation, c), Role: HandleRadius},
		{Pos: geom.RotatePoint(vec.Vec2{X: c.X, Y: c.Y + yr}, s.Rotation, c), Role: HandleRadius},
		{Pos: scale, Role: HandleScale},
		{Pos: rot, Role: HandleRotate},
	}, nil
}

func (s *Ellipse) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	if err := checkIndex(s, i, 5); err != nil {
		return err
	}
	switch i {
	case 0:
		return s.MoveTo(p)
	case 1, 2:
		c, _, _, err := s.frame()
		if err != nil {
			return err
		}
		q := unrotate(p, s.Rotation, c)
		ratio, err := s.unitRatio(s.C, i == 2)
		if err != nil {
			return err
		}
		if i == 1 {
			s.XRadius = math.Abs(q.X-c.X) / ratio
		} else {
			s.YRadius = math.Abs(q.Y-c.Y) / ratio
		}
		return nil
	}
	eps, err := s.EditPoints()
	if err != nil {
		return err
	}
	d, err = detailFor(s, d, eps[i].Pos)
	if err != nil {
		return err
	}
	if i == 3 {
		return dragScale(s, d, p)
	}
	return dragRotate(s, d, p)
}

// LLUR bounds the rotated frame of the ellipse, which contains it.
func (s *Ellipse) LLUR() (rect.Rect, error) {
	c, xr, yr, err := s.frame()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(rotatedCorners(c, xr, yr, s.Rotation))
	return r, nil
}

func (s *Ellipse) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.C}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.C = pts[0]
	return nil
}

func (s *Ellipse) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Ellipse) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	s.Rotation = geom.NormalizeDegrees(s.Rotation + deg)
	return nil
}

func (s *Ellipse) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.C}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.C = pts[0]
	s.XRadius *= math.Abs(sx)
	s.YRadius *= math.Abs(sy)
	return nil
}

// Draw approximates the outline with chords in data space so that any
// viewer transform, flips included, is honoured.
func (s *Ellipse) Draw(r Renderer, v coord.Viewer) error {
	c, xr, yr, err := s.frame()
	if err != nil {
		return err
	}
	pts := make([]vec.Vec2, ellipseSegments)
	for k := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(k) / ellipseSegments)
		pts[k] = vec.Vec2{X: c.X + xr*cos, Y: c.Y + yr*sin}
	}
	r.DrawPolygon(canvasPoints(v, geom.RotatePoints(pts, s.Rotation, c)), s.Style)
	return nil
}
