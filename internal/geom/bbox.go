package geom

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Epsilon guards divisions and comparisons against degenerate geometry.
const Epsilon = 1e-9

// Pt is shorthand for building a point.
func Pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b vec.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Mean returns the arithmetic mean of the points, or the origin for an empty slice.
func Mean(pts []vec.Vec2) vec.Vec2 {
	if len(pts) == 0 {
		return vec.Vec2{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return vec.Vec2{X: sx / n, Y: sy / n}
}

// Bounds returns the axis-aligned bounding box of pts.
// ok is false when pts is empty.
func Bounds(pts []vec.Vec2) (r rect.Rect, ok bool) {
	if len(pts) == 0 {
		return rect.Rect{}, false
	}
	r = rect.Rect{LLx: pts[0].X, LLy: pts[0].Y, URx: pts[0].X, URy: pts[0].Y}
	for _, p := range pts[1:] {
		r.Add(p.X, p.Y)
	}
	return r, true
}

// normalize orders the corners so that LLx <= URx and LLy <= URy.
func normalize(r rect.Rect) rect.Rect {
	if r.LLx > r.URx {
		r.LLx, r.URx = r.URx, r.LLx
	}
	if r.LLy > r.URy {
		r.LLy, r.URy = r.URy, r.LLy
	}
	return r
}

// pad grows the box by d on every side.
func pad(r rect.Rect, d float64) rect.Rect {
	return rect.Rect{LLx: r.LLx - d, LLy: r.LLy - d, URx: r.URx + d, URy: r.URy + d}
}

// covers reports whether p lies inside or on the border of r.
func covers(r rect.Rect, p vec.Vec2) bool {
	return r.Covers(rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y})
}

// Corners returns the four corners of r counter-clockwise from the lower left.
func Corners(r rect.Rect) []vec.Vec2 {
	return []vec.Vec2{
		{X: r.LLx, Y: r.LLy},
		{X: r.URx, Y: r.LLy},
		{X: r.URx, Y: r.URy},
		{X: r.LLx, Y: r.URy},
	}
}

// Center returns the center point of the box.
func Center(r rect.Rect) vec.Vec2 {
	return vec.Vec2{X: (r.LLx + r.URx) / 2, Y: (r.LLy + r.URy) / 2}
}
