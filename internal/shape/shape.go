// Package shape defines the drawable objects of a canvas, their geometric
// queries (containment, picking, bounds, edit handles) and the Compound
// container that owns them.
//
// Points are stored in each shape's local coordinate space and converted
// through a coord.Mapper resolved from the owning container. All query and
// mutation methods take and return data-space points.
package shape

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
)

// Shape is implemented by every canvas object.
type Shape interface {
	Kind() Kind
	Base() *Object

	// Points returns the defining vertices in data space.
	Points() ([]vec.Vec2, error)
	Center() (vec.Vec2, error)

	// Contains is the exact geometric test, suitable for mask generation.
	Contains(p vec.Vec2) (bool, error)
	// SelectContains is Contains with the object's pick tolerance, given in
	// canvas pixels and scaled by the viewer's zoom.
	SelectContains(v coord.Viewer, p vec.Vec2) (bool, error)

	// EditPoints lists the control handles: index 0 moves the whole shape,
	// then come the vertices, then the scale and rotate handles if the kind
	// has them.
	EditPoints() ([]EditPoint, error)
	// SetEditPoint drags handle i to p. d carries the state of a running
	// gesture and may be nil for a one-off change.
	SetEditPoint(i int, p vec.Vec2, d *EditDetail) error

	// LLUR returns the axis-aligned bounding box in data space.
	LLUR() (rect.Rect, error)

	MoveDelta(dx, dy float64) error
	MoveTo(p vec.Vec2) error
	RotateBy(deg float64, pivot vec.Vec2) error
	ScaleBy(sx, sy float64, pivot vec.Vec2) error

	Draw(r Renderer, v coord.Viewer) error
}

// VertexEditor is implemented by shapes whose vertices can be added and
// removed interactively.
type VertexEditor interface {
	Shape
	// Closed reports whether the last vertex connects back to the first.
	Closed() bool
	// InsertVertex inserts p (data space) after vertex i.
	InsertVertex(i int, p vec.Vec2) error
	// DeleteVertex removes vertex i.
	DeleteVertex(i int) error
}

// Owner is the weak back-reference a shape holds to its container.
type Owner interface {
	MapperFor(space coord.Space) (coord.Mapper, error)
}

// HandleRole describes what dragging an edit point does.
type HandleRole uint8

const (
	HandleMove HandleRole = iota
	HandleVertex
	HandleRadius
	HandleScale
	HandleRotate
)

func (r HandleRole) String() string {
	switch r {
	case HandleMove:
		return "move"
	case HandleVertex:
		return "vertex"
	case HandleRadius:
		return "radius"
	case HandleScale:
		return "scale"
	case HandleRotate:
		return "rotate"
	}
	return "unknown"
}

// EditPoint is a control handle in data space.
type EditPoint struct {
	Pos  vec.Vec2
	Role HandleRole
}

// Renderer is the drawing backend. Coordinates are canvas pixels.
type Renderer interface {
	DrawLine(a, b vec.Vec2, st Style)
	DrawPolygon(pts []vec.Vec2, st Style)
	DrawPath(pts []vec.Vec2, st Style)
	DrawCircle(c vec.Vec2, r float64, st Style)
	DrawText(p vec.Vec2, text string, size, rot float64, st Style)
	TextExtents(text string, size float64) (wd, ht float64)
}
