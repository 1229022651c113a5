package geom

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// PointInPolygon reports whether p lies inside poly using the ray-casting
// (even-odd) rule. The polygon is implicitly closed.
//
// Edges are half-open: an edge is counted only when exactly one of its end
// points lies strictly above the ray, and a crossing is counted only when p is
// strictly left of it. For a polygon with axis-aligned sides this puts points
// on the left and bottom edges inside and points on the right and top edges
// outside, so two polygons sharing an edge never both claim a point on it.
func PointInPolygon(p vec.Vec2, poly []vec.Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			// yi != yj here, so the division is safe.
			xc := (xj-xi)*(p.Y-yi)/(yj-yi) + xi
			if p.X < xc {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PointsInPolygon runs the PointInPolygon test for many points at once.
// The loop is edge-major so each edge is loaded once per sweep, which is what
// mask generation over large point grids needs.
func PointsInPolygon(pts []vec.Vec2, poly []vec.Vec2) []bool {
	res := make([]bool, len(pts))
	n := len(poly)
	if n < 3 {
		return res
	}

	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		for k, p := range pts {
			if (yi > p.Y) != (yj > p.Y) {
				xc := (xj-xi)*(p.Y-yi)/(yj-yi) + xi
				if p.X < xc {
					res[k] = !res[k]
				}
			}
		}
		j = i
	}
	return res
}

// Centroid returns the area-weighted centroid of an irregular polygon.
// Degenerate polygons (near-zero area) fall back to the vertex mean.
func Centroid(poly []vec.Vec2) vec.Vec2 {
	n := len(poly)
	if n < 3 {
		return Mean(poly)
	}

	// Work relative to the first vertex to keep the cross products small.
	o := poly[0]
	var a, cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := poly[i].X-o.X, poly[i].Y-o.Y
		xj, yj := poly[j].X-o.X, poly[j].Y-o.Y
		cross := xi*yj - xj*yi
		a += cross
		cx += (xi + xj) * cross
		cy += (yi + yj) * cross
	}
	if math.Abs(a) < Epsilon {
		return Mean(poly)
	}
	return vec.Vec2{X: o.X + cx/(3*a), Y: o.Y + cy/(3*a)}
}
