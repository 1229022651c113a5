// Package wcs provides a linear gnomonic (TAN) astrometric solution, the
// projection most imaging pipelines write into FITS headers.
package wcs

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

var (
	// ErrNoSolution is returned when the header does not describe a usable
	// projection.
	ErrNoSolution = errors.New("no valid wcs solution")
	// ErrOutOfProjection is returned for sky positions 90 degrees or more
	// from the tangent point, which TAN cannot represent.
	ErrOutOfProjection = errors.New("position outside projection")
)

const deg = math.Pi / 180

// TAN maps data pixels to sky coordinates. CRPix is the reference pixel in
// data coordinates, CRVal its (ra, dec) in degrees, and CD the linear part
// taking pixel offsets to degrees on the tangent plane.
type TAN struct {
	CRPix vec.Vec2
	CRVal vec.Vec2
	CD    [2][2]float64

	cd, inv matrix.Matrix
}

var _ coord.Solver = (*TAN)(nil)

// NewTAN validates the solution. A singular CD matrix has no inverse and
// is reported as ErrNoSolution.
func NewTAN(crpix, crval vec.Vec2, cd [2][2]float64) (*TAN, error) {
	if math.Abs(crval.Y) > 90 {
		return nil, fmt.Errorf("%w: reference declination %g", ErrNoSolution, crval.Y)
	}
	m := matrix.Matrix{cd[0][0], cd[1][0], cd[0][1], cd[1][1], 0, 0}
	inv, ok := geom.Invert(m)
	if !ok {
		return nil, fmt.Errorf("%w: singular CD matrix", ErrNoSolution)
	}
	return &TAN{CRPix: crpix, CRVal: crval, CD: cd, cd: m, inv: inv}, nil
}

// FromHeader builds a solution from FITS keywords. CD1_1..CD2_2 are used
// when present, otherwise CDELT1, CDELT2 and CROTA2.
func FromHeader(h map[string]float64) (*TAN, error) {
	need := func(k string) (float64, error) {
		v, ok := h[k]
		if !ok {
			return 0, fmt.Errorf("%w: missing %s", ErrNoSolution, k)
		}
		return v, nil
	}
	var vals [4]float64
	for i, k := range []string{"CRPIX1", "CRPIX2", "CRVAL1", "CRVAL2"} {
		v, err := need(k)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	var cd [2][2]float64
	if _, ok := h["CD1_1"]; ok {
		for i, k := range []string{"CD1_1", "CD1_2", "CD2_1", "CD2_2"} {
			cd[i/2][i%2] = h[k]
		}
	} else {
		d1, err := need("CDELT1")
		if err != nil {
			return nil, err
		}
		d2, err := need("CDELT2")
		if err != nil {
			return nil, err
		}
		sin, cos := math.Sincos(h["CROTA2"] * deg)
		cd = [2][2]float64{{d1 * cos, -d2 * sin}, {d1 * sin, d2 * cos}}
	}
	return NewTAN(vec.Vec2{X: vals[0], Y: vals[1]}, vec.Vec2{X: vals[2], Y: vals[3]}, cd)
}

// PixToRaDec returns the sky position of data pixel (x, y) in degrees,
// with ra in [0, 360).
func (t *TAN) PixToRaDec(x, y float64) (ra, dec float64, err error) {
	plane := geom.Apply(t.cd, vec.Vec2{X: x - t.CRPix.X, Y: y - t.CRPix.Y})
	xi, eta := plane.X*deg, plane.Y*deg
	ra0, dec0 := t.CRVal.X*deg, t.CRVal.Y*deg

	sinD0, cosD0 := math.Sincos(dec0)
	rho := math.Hypot(xi, eta)
	if rho < geom.Epsilon {
		return normRA(t.CRVal.X), t.CRVal.Y, nil
	}
	c := math.Atan(rho)
	sinC, cosC := math.Sincos(c)
	dec = math.Asin(cosC*sinD0 + eta*sinC*cosD0/rho)
	ra = ra0 + math.Atan2(xi*sinC, rho*cosD0*cosC-eta*sinD0*sinC)
	return normRA(ra / deg), dec / deg, nil
}

// RaDecToPix returns the data pixel of sky position (ra, dec) in degrees.
func (t *TAN) RaDecToPix(ra, dec float64) (x, y float64, err error) {
	if math.IsNaN(ra) || math.IsNaN(dec) || math.Abs(dec) > 90 {
		return 0, 0, fmt.Errorf("%w: ra %g dec %g", ErrOutOfProjection, ra, dec)
	}
	sinD, cosD := math.Sincos(dec * deg)
	sinD0, cosD0 := math.Sincos(t.CRVal.Y * deg)
	sinDA, cosDA := math.Sincos((ra - t.CRVal.X) * deg)

	cosC := sinD0*sinD + cosD0*cosD*cosDA
	if cosC < geom.Epsilon {
		return 0, 0, fmt.Errorf("%w: ra %g dec %g", ErrOutOfProjection, ra, dec)
	}
	xi := cosD * sinDA / cosC
	eta := (cosD0*sinD - sinD0*cosD*cosDA) / cosC
	off := geom.Apply(t.inv, vec.Vec2{X: xi / deg, Y: eta / deg})
	return off.X + t.CRPix.X, off.Y + t.CRPix.Y, nil
}

// PixelScale returns the mean size of a pixel in arcseconds.
func (t *TAN) PixelScale() float64 {
	return math.Sqrt(math.Abs(t.cd[0]*t.cd[3]-t.cd[1]*t.cd[2])) * 3600
}

func normRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
