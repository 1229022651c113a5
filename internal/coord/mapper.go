package coord

import (
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/geom"
)

// offsetVia moves p by data units through m's data space.
func offsetVia(m Mapper, p vec.Vec2, dx, dy float64) (vec.Vec2, error) {
	d, err := m.ToData(p)
	if err != nil {
		return vec.Vec2{}, err
	}
	return m.DataTo(vec.Vec2{X: d.X + dx, Y: d.Y + dy})
}

// rotateVia converts p to data space, rotates it there and converts back.
func rotateVia(m Mapper, p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	d, err := m.ToData(p)
	if err != nil {
		return vec.Vec2{}, err
	}
	return m.DataTo(geom.RotatePoint(d, deg, pivot))
}

// DataMapper stores points directly in data space.
// Without a viewer it maps data to canvas as the identity.
type DataMapper struct {
	V Viewer
}

func (m DataMapper) ToCanvas(p vec.Vec2) (vec.Vec2, error) {
	if m.V == nil {
		return p, nil
	}
	return m.V.DataToCanvas(p), nil
}

func (m DataMapper) ToData(p vec.Vec2) (vec.Vec2, error) { return p, nil }
func (m DataMapper) DataTo(p vec.Vec2) (vec.Vec2, error) { return p, nil }

func (m DataMapper) Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error) {
	return vec.Vec2{X: p.X + dx, Y: p.Y + dy}, nil
}

func (m DataMapper) Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	return geom.RotatePoint(p, deg, pivot), nil
}

// CanvasMapper stores points in window pixels, so ToCanvas is the identity.
type CanvasMapper struct {
	V Viewer
}

func (m CanvasMapper) ToCanvas(p vec.Vec2) (vec.Vec2, error) { return p, nil }

func (m CanvasMapper) ToData(p vec.Vec2) (vec.Vec2, error) {
	if m.V == nil {
		return vec.Vec2{}, coordErr("to data", SpaceWindow, ErrNoViewer)
	}
	return m.V.CanvasToData(p), nil
}

func (m CanvasMapper) DataTo(p vec.Vec2) (vec.Vec2, error) {
	if m.V == nil {
		return vec.Vec2{}, coordErr("from data", SpaceWindow, ErrNoViewer)
	}
	return m.V.DataToCanvas(p), nil
}

func (m CanvasMapper) Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error) {
	return offsetVia(m, p, dx, dy)
}

func (m CanvasMapper) Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	return rotateVia(m, p, deg, pivot)
}

// CartesianMapper stores points in pixels relative to the window center,
// with y pointing up.
type CartesianMapper struct {
	V Viewer
}

func (m CartesianMapper) ToCanvas(p vec.Vec2) (vec.Vec2, error) {
	if m.V == nil {
		return vec.Vec2{}, coordErr("to canvas", SpaceCartesian, ErrNoViewer)
	}
	wd, ht := m.V.WindowSize()
	return vec.Vec2{X: wd/2 + p.X, Y: ht/2 - p.Y}, nil
}

func (m CartesianMapper) fromCanvas(p vec.Vec2) vec.Vec2 {
	wd, ht := m.V.WindowSize()
	return vec.Vec2{X: p.X - wd/2, Y: ht/2 - p.Y}
}

func (m CartesianMapper) ToData(p vec.Vec2) (vec.Vec2, error) {
	c, err := m.ToCanvas(p)
	if err != nil {
		return vec.Vec2{}, err
	}
	return m.V.CanvasToData(c), nil
}

func (m CartesianMapper) DataTo(p vec.Vec2) (vec.Vec2, error) {
	if m.V == nil {
		return vec.Vec2{}, coordErr("from data", SpaceCartesian, ErrNoViewer)
	}
	return m.fromCanvas(m.V.DataToCanvas(p)), nil
}

func (m CartesianMapper) Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error) {
	return offsetVia(m, p, dx, dy)
}

func (m CartesianMapper) Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	return rotateVia(m, p, deg, pivot)
}

// Reference is anything with a current position in data space. Every
// canvas shape satisfies it through its Center method. A reference that
// also has an Attached method stops resolving once it reports false, so
// points anchored to a deleted shape fail instead of following it.
type Reference interface {
	Center() (vec.Vec2, error)
}

// OffsetMapper stores points as data-unit deltas from a reference whose
// position is looked up again on every call, so the points follow the
// reference as it moves. Offset and Rotate leave points unchanged.
type OffsetMapper struct {
	Ref Reference
	V   Viewer
}

// NewOffsetMapper returns a mapper anchored to ref.
func NewOffsetMapper(ref Reference, v Viewer) *OffsetMapper {
	return &OffsetMapper{Ref: ref, V: v}
}

func (m *OffsetMapper) origin(op string) (vec.Vec2, error) {
	if m.Ref == nil {
		return vec.Vec2{}, coordErr(op, SpaceOffset, ErrUnknownSpace)
	}
	if a, ok := m.Ref.(interface{ Attached() bool }); ok && !a.Attached() {
		return vec.Vec2{}, coordErr(op, SpaceOffset, ErrDetached)
	}
	o, err := m.Ref.Center()
	if err != nil {
		return vec.Vec2{}, coordErr(op, SpaceOffset, err)
	}
	return o, nil
}

func (m *OffsetMapper) ToData(p vec.Vec2) (vec.Vec2, error) {
	o, err := m.origin("to data")
	if err != nil {
		return vec.Vec2{}, err
	}
	return o.Add(p), nil
}

func (m *OffsetMapper) DataTo(p vec.Vec2) (vec.Vec2, error) {
	o, err := m.origin("from data")
	if err != nil {
		return vec.Vec2{}, err
	}
	return p.Sub(o), nil
}

func (m *OffsetMapper) ToCanvas(p vec.Vec2) (vec.Vec2, error) {
	d, err := m.ToData(p)
	if err != nil {
		return vec.Vec2{}, err
	}
	return DataMapper{V: m.V}.ToCanvas(d)
}

func (m *OffsetMapper) Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error) { return p, nil }

func (m *OffsetMapper) Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	return p, nil
}

// Solver is an astrometric solution mapping data pixels to sky coordinates
// in degrees.
type Solver interface {
	PixToRaDec(x, y float64) (ra, dec float64, err error)
	RaDecToPix(ra, dec float64) (x, y float64, err error)
}

// WCSMapper stores points as (ra, dec) in degrees. Every call fails with a
// *CoordinateError while no solver is attached.
type WCSMapper struct {
	Solver Solver
	V      Viewer
}

func (m WCSMapper) ToData(p vec.Vec2) (vec.Vec2, error) {
	if m.Solver == nil {
		return vec.Vec2{}, coordErr("to data", SpaceWCS, ErrNoSolution)
	}
	x, y, err := m.Solver.RaDecToPix(p.X, p.Y)
	if err != nil {
		return vec.Vec2{}, coordErr("to data", SpaceWCS, err)
	}
	return vec.Vec2{X: x, Y: y}, nil
}

func (m WCSMapper) DataTo(p vec.Vec2) (vec.Vec2, error) {
	if m.Solver == nil {
		return vec.Vec2{}, coordErr("from data", SpaceWCS, ErrNoSolution)
	}
	ra, dec, err := m.Solver.PixToRaDec(p.X, p.Y)
	if err != nil {
		return vec.Vec2{}, coordErr("from data", SpaceWCS, err)
	}
	return vec.Vec2{X: ra, Y: dec}, nil
}

func (m WCSMapper) ToCanvas(p vec.Vec2) (vec.Vec2, error) {
	d, err := m.ToData(p)
	if err != nil {
		return vec.Vec2{}, err
	}
	return DataMapper{V: m.V}.ToCanvas(d)
}

func (m WCSMapper) Offset(p vec.Vec2, dx, dy float64) (vec.Vec2, error) {
	return offsetVia(m, p, dx, dy)
}

// Rotate works in data space; rotating (ra, dec) pairs directly would
// distort the shape away from the equator.
func (m WCSMapper) Rotate(p vec.Vec2, deg float64, pivot vec.Vec2) (vec.Vec2, error) {
	return rotateVia(m, p, deg, pivot)
}
