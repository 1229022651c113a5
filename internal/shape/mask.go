package shape

import (
	"fmt"

	"seehuhn.de/go/geom/vec"
)

// Masker is implemented by shapes that test a whole grid of points in one
// pass over their edges.
type Masker interface {
	ContainsPoints(pts []vec.Vec2) ([]bool, error)
}

var (
	_ Masker = (*Rectangle)(nil)
	_ Masker = (*Box)(nil)
	_ Masker = (*Polygon)(nil)
	_ Masker = (*Compound)(nil)
)

// ContainsPoints reports s.Contains for every point of pts. Shapes without
// a batch test fall back to one Contains call per point.
func ContainsPoints(s Shape, pts []vec.Vec2) (mask []bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			mask, err = nil, fmt.Errorf("%s mask panicked: %v", s.Kind(), r)
		}
	}()
	if m, ok := s.(Masker); ok {
		return m.ContainsPoints(pts)
	}
	mask = make([]bool, len(pts))
	for i, p := range pts {
		if mask[i], err = s.Contains(p); err != nil {
			return nil, fmt.Errorf("%s mask: %w", s.Kind(), err)
		}
	}
	return mask, nil
}
