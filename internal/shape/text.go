package shape

import (
	"math"
	"unicode/utf8"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// DefaultFontSize is used when a text shape is built without a size.
const DefaultFontSize = 14.0

// Text is a string anchored at its lower-left corner and rotated about
// that anchor.
type Text struct {
	Object
	Pos      vec.Vec2
	Text     string
	FontSize float64
	Rotation float64

	// extent is the size of the rendered string in data units, recorded
	// the last time the shape was drawn.
	extent    vec.Vec2
	hasExtent bool
}

// NewText returns a data-space text shape.
func NewText(x, y float64, text string, size float64) *Text {
	if size <= 0 {
		size = DefaultFontSize
	}
	return &Text{Object: newObject(DefaultParams()), Pos: vec.Vec2{X: x, Y: y}, Text: text, FontSize: size}
}

func (s *Text) Kind() Kind { return KindText }

// size returns the width and height of the text in data units. Before the
// first draw it estimates from the font size, treating one pixel as one
// data unit.
func (s *Text) size() (float64, float64) {
	if s.hasExtent {
		return s.extent.X, s.extent.Y
	}
	n := float64(utf8.RuneCountInString(s.Text))
	return 0.6 * s.FontSize * n, s.FontSize
}

// frame returns the anchor in data space and the corners of the rotated
// text box.
func (s *Text) frame() (vec.Vec2, []vec.Vec2, error) {
	d, err := s.toData(s.Pos)
	if err != nil {
		return vec.Vec2{}, nil, err
	}
	a := d[0]
	w, h := s.size()
	corners := []vec.Vec2{
		a,
		{X: a.X + w, Y: a.Y},
		{X: a.X + w, Y: a.Y + h},
		{X: a.X, Y: a.Y + h},
	}
	return a, geom.RotatePoints(corners, s.Rotation, a), nil
}

func (s *Text) Points() ([]vec.Vec2, error) { return s.toData(s.Pos) }

func (s *Text) Center() (vec.Vec2, error) {
	_, corners, err := s.frame()
	if err != nil {
		return vec.Vec2{}, err
	}
	return geom.Mean(corners), nil
}

func (s *Text) inFrame(p vec.Vec2, pad float64) (bool, error) {
	a, _, err := s.frame()
	if err != nil {
		return false, err
	}
	w, h := s.size()
	q := unrotate(p, s.Rotation, a)
	return q.X >= a.X-pad && q.X <= a.X+w+pad && q.Y >= a.Y-pad && q.Y <= a.Y+h+pad, nil
}

func (s *Text) Contains(p vec.Vec2) (bool, error) { return s.inFrame(p, 0) }

func (s *Text) SelectContains(v coord.Viewer, p vec.Vec2) (bool, error) {
	return s.inFrame(p, s.pickRadius(v))
}

func (s *Text) EditPoints() ([]EditPoint, error) {
	a, corners, err := s.frame()
	if err != nil {
		return nil, err
	}
	w, h := s.size()
	c := geom.Mean(corners)
	// Handles are laid out in the unrotated frame around the box center.
	cu := vec.Vec2{X: a.X + w/2, Y: a.Y + h/2}
	scale, rot := boxHandles(cu, w/2, h/2, 0)
	return []EditPoint{
		{Pos: c, Role: HandleMove},
		{Pos: geom.RotatePoint(scale, s.Rotation, a), Role: HandleScale},
		{Pos: geom.RotatePoint(rot, s.Rotation, a), Role: HandleRotate},
	}, nil
}

func (s *Text) SetEditPoint(i int, p vec.Vec2, d *EditDetail) error {
	if err := checkIndex(s, i, 3); err != nil {
		return err
	}
	if i == 0 {
		return s.MoveTo(p)
	}
	eps, err := s.EditPoints()
	if err != nil {
		return err
	}
	d, err = detailFor(s, d, eps[i].Pos)
	if err != nil {
		return err
	}
	if i == 1 {
		return dragScale(s, d, p)
	}
	return dragRotate(s, d, p)
}

func (s *Text) LLUR() (rect.Rect, error) {
	_, corners, err := s.frame()
	if err != nil {
		return rect.Rect{}, err
	}
	r, _ := geom.Bounds(corners)
	return r, nil
}

func (s *Text) MoveDelta(dx, dy float64) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.offsetAll(pts, dx, dy); err != nil {
		return err
	}
	s.Pos = pts[0]
	return nil
}

func (s *Text) MoveTo(p vec.Vec2) error { return moveTo(s, p) }

func (s *Text) RotateBy(deg float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.rotateAll(pts, deg, pivot); err != nil {
		return err
	}
	s.Pos = pts[0]
	s.Rotation = geom.NormalizeDegrees(s.Rotation + deg)
	return nil
}

func (s *Text) ScaleBy(sx, sy float64, pivot vec.Vec2) error {
	pts := []vec.Vec2{s.Pos}
	if err := s.scaleAll(pts, sx, sy, pivot); err != nil {
		return err
	}
	s.Pos = pts[0]
	f := math.Max(math.Abs(sx), math.Abs(sy))
	s.FontSize *= f
	s.extent = s.extent.Mul(f)
	return nil
}

// Draw renders the string and records its extent for later hit-tests.
func (s *Text) Draw(r Renderer, v coord.Viewer) error {
	d, err := s.toData(s.Pos)
	if err != nil {
		return err
	}
	a := d[0]
	wd, ht := r.TextExtents(s.Text, s.FontSize)
	if v != nil {
		sx, sy := v.ScaleXY()
		if sx > geom.Epsilon && sy > geom.Epsilon {
			wd, ht = wd/sx, ht/sy
		}
	}
	s.extent = vec.Vec2{X: wd, Y: ht}
	s.hasExtent = true

	r.DrawText(canvasPoints(v, []vec.Vec2{a})[0], s.Text, s.FontSize, s.Rotation, s.Style)
	return nil
}
