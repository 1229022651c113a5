package geom

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// PointNearSegment reports whether p is within radius of the segment a-b.
//
// The perpendicular distance to the infinite line through a and b must not
// exceed radius, and p must also lie inside the segment's bounding box padded
// by radius, so points beyond the segment ends are not flagged. A zero-length
// segment is treated as a point.
func PointNearSegment(p, a, b vec.Vec2, radius float64) bool {
	xd, yd := b.X-a.X, b.Y-a.Y
	length := math.Hypot(xd, yd)
	if length < Epsilon {
		return Distance(p, a) <= radius
	}

	dist := math.Abs(yd*p.X-xd*p.Y+b.X*a.Y-b.Y*a.X) / length
	if dist > radius {
		return false
	}

	box := pad(normalize(rect.Rect{LLx: a.X, LLy: a.Y, URx: b.X, URy: b.Y}), radius)
	return covers(box, p)
}

// DataRadius converts a radius in canvas pixels to data units using the
// smaller per-axis scale factor, so the tolerance never shrinks below the
// requested pixel size.
func DataRadius(canvasRadius, scaleX, scaleY float64) float64 {
	s := math.Min(scaleX, scaleY)
	if s < Epsilon {
		return canvasRadius
	}
	return canvasRadius / s
}

// SegmentDistance returns the distance from p to the closest point of the
// segment a-b.
func SegmentDistance(p, a, b vec.Vec2) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 < Epsilon {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, a.Add(d.Mul(t)))
}

// NearestSegment returns the index i of the segment pts[i]-pts[i+1] closest
// to p, or -1 if none lies within radius. With closed set the segment from
// the last point back to the first is considered as well and reported as
// index len(pts)-1.
func NearestSegment(p vec.Vec2, pts []vec.Vec2, radius float64, closed bool) int {
	n := len(pts)
	best, bestDist := -1, math.Inf(1)
	last := n - 1
	if closed {
		last = n
	}
	for i := 0; i < last; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if !PointNearSegment(p, a, b, radius) {
			continue
		}
		if d := SegmentDistance(p, a, b); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// NearestPoint returns the index of the point in pts closest to p, or -1 if
// none lies within radius.
func NearestPoint(p vec.Vec2, pts []vec.Vec2, radius float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, q := range pts {
		if d := Distance(p, q); d <= radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
