package geom

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Apply transforms p by m.
func Apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	x, y := m.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}

// Invert returns the inverse of m. ok is false if m is singular, where
// matrix.Matrix.Inv would panic. Tiny but nonzero determinants are fine:
// a CD matrix for sub-arcsecond pixels has one near 1e-12.
func Invert(m matrix.Matrix) (inv matrix.Matrix, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Identity, false
	}
	return m.Inv(), true
}
