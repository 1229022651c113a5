package shape

import (
	"fmt"
	"slices"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

const (
	minPolygonPoints = 3
	minPathPoints    = 2
)

// Polygon is a closed outline through its vertices.
type Polygon struct {
	Object
	Pts []vec.Vec2
}

// NewPolygon returns a data-space polygon. It needs at least three points.
func NewPolygon(pts []vec.Vec2) (*Polygon, error) {
	if len(pts) < minPolygonPoints {
		return nil, fmt.Errorf("%w: polygon needs %d points, got %d", ErrConfiguration, minPolygonPoints, len(pts))
	}
	return &Polygon{Object: newObject(DefaultParams()), Pts: slices.Clone(pts)}, nil
}

// Path is an open polyline through its vertices.
type Path struct {
	Object
	Pts []vec.Vec2
}

// NewPath returns a data-space path. It needs at least two points.
func NewPath(pts []vec.Vec2) (*Path, error) {
	if len(pts) < minPathPoints {
		return nil, fmt.Errorf("%w: path needs %d points, got %d", ErrConfiguration, minPathPoints, len(pts))
	}
	return &Path{Object: newObject(DefaultParams()), Pts: slices.Clone(pts)}, nil
}

func (s *Polygon) Kind() Kind   { return KindPolygon }
func (s *Polygon) Closed() bool { return true }
func (s *Path) Kind() Kind      { return KindPath }
func (s *Path) Closed() bool    { return false }

func (s *Polygon) Points() ([]vec.Vec2, error) { return s.toData(s.Pts...) }
func (s *Path) Points() ([]vec.Vec2, error)    { return s.toData(s.Pts...) }

// Center is the area centroid, which lies inside any convex polygon.
func (s *Polygon) Center() (vec.Vec2, error) {
	pts, err := s.Points()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Centroid(pts), nil
}

// Center is the mean of the vertices.
func (s *Path) Center() (vec.Vec2, error) {
	pts, err := s.Points()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Mean(pts), nil
}

func (s *Polygon) Contains(p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.PointInPolygon(p, pts), nil
}

func (s *Polygon) ContainsPoints(pts []vec.Vec2) ([]bool, error) {
	poly, err := s.Points()
	if err != nil {
		return nil, err
	}
	return geom.PointsInPolygon(pts, poly), nil
}

// Contains reports whether p lies on the path. A path encloses no area.
func (s *Path) Contains(p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.NearestSegment(p, pts, geom.Epsilon, false) >= 0, nil
}

func (s *Polygon) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return selectPolygon(p, pts, s.pickRadius(v)), nil
}

func (s *Path) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	pts, err := s.Points()
	if err != nil {
		return false, err
	}
	return geom.NearestSegment(p, pts, s.pickRadius(v), false) >= 0, nil
}

// vertexHandles lays out move, vertex, scale and rotate handles for a shape
// defined by its data-space vertices and grabbed at c.
func vertexHandles(pts []vec.Vec2, c vec.Vec2) []EditPoint {
	eps := make([]EditPoint, 0, len(pts)+3)
	eps = append(eps, EditPoint{Pos: c, Role: HandleMove})
	for _, p := range pts {
		eps = append(eps, EditPoint{Pos: p, Role: HandleVertex})
	}
	r, _ := geom.Bounds(pts)
	bc := geom.Center(r)
	scale, rot := boxHandles(bc, r.Dx()/2, r.Dy()/2, 0)
	return append(eps,
		EditPoint{Pos: scale, Role: HandleScale},
		EditPoint{Pos: rot, Role: HandleRotate},
	)
}

func (s *Polygon) EditPoints() ([]EditPoint, error) {
	pts, err := s.Points()
	if err != nil {
		return nil, err
	}
	return vertexHandles(pts, geom.Centroid(pts)), nil
}

func (s *Path) EditPoints() ([]EditPoint, error) {
	pts, err := s.Points()
	if err != nil {
		return nil, err
	}
	return vertexHandles(pts, geom.Mean(pts)), nil
}

// setVertexHandle applies a drag of handle i to a vertex shape.
func setVertexHandle(s Shape, o *Object, local []vec.Vec2, i int, p vec.Vec2, d *EditDetail) error {
	n := len(local)
	if err := checkIndex(s, i, n+3); err != nil {
		return err
	}
	switch {
	case i == 0:
		return s.MoveTo(p)
	case i <= n:
		l, err := o.fromData(p)
		if err != nil {
			return err
		}
		local[i-1] = l[0]
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
	if i == n+1 {
		return dragScale(s, d, p)
	}
	return dragRotate(s, d, p)
}

func (s *Polygon) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	return setVertexHandle(s, &s.Object, s.Pts, i, p, d)
}

func (s *Path) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	return setVertexHandle(s, &s.Object, s.Pts, i, p, d)
}

func boundsOf(s Shape) (rect.Rect, error) {
	pts, err := s.Points()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(pts)
	return r, nil
}

func (s *Polygon) LLUR() (rect.Rect, error) { return boundsOf(s) }
func (s *Path) LLUR() (rect.Rect, error)    { return boundsOf(s) }

func (s *Polygon) MoveDelta(dx, dy float64) error { return s.offsetAll(s.Pts, dx, dy) }
func (s *Path) MoveDelta(dx, dy float64) error    { return s.offsetAll(s.Pts, dx, dy) }

func (s *Polygon) MoveTo(p vec.Vec2) error { return moveTo(s, p) }
func (s *Path) MoveTo(p vec.Vec2) error    { return moveTo(s, p) }

func (s *Polygon) RotateBy(deg float64, pivot vec.Vec2) error {
	return s.rotateAll(s.Pts, deg, pivot)
}

func (s *Path) RotateBy(deg float64, pivot vec.Vec2) error {
	return s.rotateAll(s.Pts, deg, pivot)
}

func (s *Polygon) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	return s.scaleAll(s.Pts, sx, sy, pivot)
}

func (s *Path) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	return s.scaleAll(s.Pts, sx, sy, pivot)
}

func insertVertex(o *Object, pts []vec.Vec2, i int, p vec.Vec2) ([]vec.Vec2, error) {
	if i < 0 || i >= len(pts) {
		return pts, fmt.Errorf("%w: no vertex %d", ErrConfiguration, i)
	}
	l, err := o.fromData(p)
	if err != nil {
		return pts, err
	}
	return slices.Insert(pts, i+1, l[0]), nil
}

func deleteVertex(pts []vec.Vec2, i, least int) ([]vec.Vec2, error) {
	if i < 0 || i >= len(pts) {
		return pts, fmt.Errorf("%w: no vertex %d", ErrConfiguration, i)
	}
	if len(pts) <= least {
		return pts, fmt.Errorf("%w: cannot go below %d vertices", ErrConfiguration, least)
	}
	return slices.Delete(pts, i, i+1), nil
}

func (s *Polygon) InsertVertex(i int, p vec.Vec2) (err error) {
	s.Pts, err = insertVertex(&s.Object, s.Pts, i, p)
	return err
}

func (s *Path) InsertVertex(i int, p vec.Vec2) (err error) {
	s.Pts, err = insertVertex(&s.Object, s.Pts, i, p)
	return err
}

func (s *Polygon) DeleteVertex(i int) (err error) {
	s.Pts, err = deleteVertex(s.Pts, i, minPolygonPoints)
	return err
}

func (s *Path) DeleteVertex(i int) (err error) {
	s.Pts, err = deleteVertex(s.Pts, i, minPathPoints)
	return err
}

func (s *Polygon) Draw(r Renderer, v coord.Viewer) error {
	pts, err := s.Points()
	if err != nil {
		return err
	}
	r.DrawPolygon(canvasPoints(v, pts), s.Style)
	return nil
}

func (s *Path) Draw(r Renderer, v coord.Viewer) error {
	pts, err := s.Points()
	if err != nil {
		return err
	}
	r.DrawPath(canvasPoints(v, pts), s.Style)
	return nil
}
