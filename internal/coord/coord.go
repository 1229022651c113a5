// Package coord translates points between the coordinate spaces a canvas
// shape can live in: data space, window pixels, a centered cartesian pixel
// frame, sky (WCS) coordinates, and offsets from a live reference shape.
package coord

import (
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Space selects the coordinate system a shape's points are stored in.
type Space string

const (
	SpaceData      Space = "data"
	SpaceWindow    Space = "window"
	SpaceCartesian Space = "cartesian"
	SpaceWCS       Space = "wcs"
	SpaceOffset    Space = "offset"
)

// ParseSpace returns the Space named by s. The empty string means data.
func ParseSpace(s string) (Space, error) {
	switch Space(s) {
	case "", SpaceData:
		return SpaceData, nil
	case SpaceWindow, SpaceCartesian, SpaceWCS, SpaceOffset:
		return Space(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSpace, s)
}

// Viewer is the part of a display surface the mappers need: the current
// data<->canvas transform and its scale.
type Viewer interface {
	// ScaleXY returns canvas pixels per data unit along each axis.
	ScaleXY() (sx, sy float64)
	// Zoom returns the overall zoom level.
	Zoom() float64
	CanvasToData(p vec.Vec2) vec.Vec2
	DataToCanvas(p vec.Vec2) vec.Vec2
	// PanRect returns the visible region in data space.
	PanRect() rect.Rect
	// WindowSize returns the canvas size in pixels.
	WindowSize() (wd, ht float64)
}

// Mapper converts points stored in one coordinate space.
//
// ToData and DataTo are inverses. Offset moves a local point by dx, dy data
// units and Rotate turns it about a pivot given in data space; both return
// the result in the mapper's own space.
type Mapper interface {
	ToCanvas(p vec.Vec2) (vec.Vec2, error)
	ToData(p vec.Vec2) (vec.Vec2, error)
	DataTo(p vec.Vec2) (vec.Vec2, error)
	Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error)
	Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error)
}

// MapAll converts every point with fn, stopping at the first error.
func MapAll(fn func(vec.Vec2) (vec.Vec2, error), pts []vec.Vec2) ([]vec.Vec2, error) {
	out := make([]vec.Vec2, len(pts))
	for i, p := range pts {
		q, err := fn(p)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}
