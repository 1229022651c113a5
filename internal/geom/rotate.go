package geom

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// RotatePoint rotates p by deg degrees counter-clockwise about pivot.
func RotatePoint(p vec.Vec2, deg float64, pivot vec.Vec2) vec.Vec2 {
	if deg == 0 {
		return p
	}
	sin, cos := math.Sincos(deg * math.Pi / 180.0)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return vec.Vec2{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// RotatePoints rotates every point of pts about pivot into a new slice.
func RotatePoints(pts []vec.Vec2, deg float64, pivot vec.Vec2) []vec.Vec2 {
	out := make([]vec.Vec2, len(pts))
	for i, p := range pts {
		out[i] = RotatePoint(p, deg, pivot)
	}
	return out
}

// ScalePoint scales p about pivot.
func ScalePoint(p vec.Vec2, sx, sy float64, pivot vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: pivot.X + (p.X-pivot.X)*sx,
		Y: pivot.Y + (p.Y-pivot.Y)*sy,
	}
}

// Angle returns the direction of p as seen from origin, in degrees.
func Angle(origin, p vec.Vec2) float64 {
	return math.Atan2(p.Y-origin.Y, p.X-origin.X) * 180.0 / math.Pi
}

// NormalizeDegrees maps deg into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
