package coord

import (
	"fmt"
	"math"
	"sync"

	"seehuhn.de/go/geom/vec"
)

// Set is the per-viewer table of mappers, looked up by space name.
type Set struct {
	mu      sync.RWMutex
	mappers map[Space]Mapper
}

// NewSet returns the standard mappers bound to v. solver may be nil, in
// which case the wcs mapper fails until SetSolver is called.
func NewSet(v Viewer, solver Solver) *Set {
	return &Set{
		mappers: map[Space]Mapper{
			SpaceData:      DataMapper{V: v},
			SpaceWindow:    CanvasMapper{V: v},
			SpaceCartesian: CartesianMapper{V: v},
			SpaceWCS:       WCSMapper{Solver: solver, V: v},
		},
	}
}

// Get returns the mapper for space.
func (s *Set) Get(space Space) (Mapper, error) {
	if space == "" {
		space = SpaceData
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappers[space]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpace, space)
	}
	return m, nil
}

// Register adds or replaces the mapper for space.
func (s *Set) Register(space Space, m Mapper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappers[space] = m
}

// SetSolver attaches a new astrometric solution to the wcs mapper.
func (s *Set) SetSolver(solver Solver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v Viewer
	if old, ok := s.mappers[SpaceWCS].(WCSMapper); ok {
		v = old.V
	}
	s.mappers[SpaceWCS] = WCSMapper{Solver: solver, V: v}
}

// BadWCS is shown in place of sky coordinates that cannot be computed.
const BadWCS = "BAD WCS"

// FormatSky renders the sky position of a data point as sexagesimal
// right ascension and declination. Coordinate errors become BadWCS.
func FormatSky(solver Solver, p vec.Vec2) string {
	if solver == nil {
		return BadWCS
	}
	return SkyOrBad(solver.PixToRaDec(p.X, p.Y))
}

// SkyOrBad is FormatSky for callers that already hold a conversion result.
func SkyOrBad(ra, dec float64, err error) string {
	if err != nil || math.IsNaN(ra) || math.IsNaN(dec) {
		return BadWCS
	}
	return fmt.Sprintf("RA %s  DEC %s", formatHMS(ra), formatDMS(dec))
}

func formatHMS(deg float64) string {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	h /= 15
	hh := math.Floor(h)
	m := (h - hh) * 60
	mm := math.Floor(m)
	ss := (m - mm) * 60
	return fmt.Sprintf("%02d:%02d:%06.3f", int(hh), int(mm), ss)
}

func formatDMS(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	dd := math.Floor(deg)
	m := (deg - dd) * 60
	mm := math.Floor(m)
	ss := (m - mm) * 60
	return fmt.Sprintf("%s%02d:%02d:%05.2f", sign, int(dd), int(mm), ss)
}
