package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/render"
	"github.com/inamate/skycanvas/internal/shape"
)

// Each terminal cell holds a 2x4 braille dot grid; one dot is one window
// unit of the viewer.
const (
	dotsX = 2
	dotsY = 4
)

var dotBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type brailleBuf struct {
	w, h   int       // in cells
	m      [][]uint8 // per-cell 8-bit mask
	color  [][]string
	labels [][]rune
}

func newBrailleBuf(w, h int) *brailleBuf {
	b := &brailleBuf{w: w, h: h}
	b.m = make([][]uint8, h)
	b.color = make([][]string, h)
	b.labels = make([][]rune, h)
	for i := range b.m {
		b.m[i] = make([]uint8, w)
		b.color[i] = make([]string, w)
		b.labels[i] = make([]rune, w)
	}
	return b
}

func (b *brailleBuf) cell(mx, my int) (cx, cy int, ok bool) {
	if mx < 0 || my < 0 {
		return 0, 0, false
	}
	cx, cy = mx/dotsX, my/dotsY
	return cx, cy, cx < b.w && cy < b.h
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, color string) {
	cx, cy, ok := b.cell(mx, my)
	if !ok {
		return
	}
	b.m[cy][cx] |= dotBits[mx%dotsX][my%dotsY]
	b.color[cy][cx] = color
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, color string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// label writes s into the cells starting at micro coords (mx, my).
func (b *brailleBuf) label(mx, my int, s string, color string) {
	cx, cy, ok := b.cell(mx, my)
	if !ok {
		return
	}
	for _, r := range s {
		if cx >= b.w {
			break
		}
		b.labels[cy][cx] = r
		b.color[cy][cx] = color
		cx++
	}
}

// toLines renders each row, grouping runs of equally coloured cells.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	var sb, run strings.Builder
	for y := 0; y < b.h; y++ {
		sb.Reset()
		run.Reset()
		cur := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur == "" {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cur)).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < b.w; x++ {
			r := ' '
			switch {
			case b.labels[y][x] != 0:
				r = b.labels[y][x]
			case b.m[y][x] != 0:
				r = rune(0x2800 + int(b.m[y][x]))
			}
			color := b.color[y][x]
			if r == ' ' {
				color = cur
			}
			if color != cur {
				flush()
				cur = color
			}
			run.WriteRune(r)
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// circleSegments is the number of chords drawn per circle.
const circleSegments = 48

// brailleRenderer draws shapes into a brailleBuf. Fills are not drawn.
type brailleRenderer struct {
	buf *brailleBuf
}

var _ shape.Renderer = brailleRenderer{}

func dot(p vec.Vec2) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

func (r brailleRenderer) polyline(pts []vec.Vec2, closed bool, st shape.Style) {
	if len(pts) == 0 {
		return
	}
	color := render.Hex(st.Color)
	if len(pts) == 1 {
		x, y := dot(pts[0])
		r.buf.setPixel(x, y, color)
		return
	}
	for i := 1; i < len(pts); i++ {
		x0, y0 := dot(pts[i-1])
		x1, y1 := dot(pts[i])
		r.buf.drawLineMicro(x0, y0, x1, y1, color)
	}
	if closed {
		x0, y0 := dot(pts[len(pts)-1])
		x1, y1 := dot(pts[0])
		r.buf.drawLineMicro(x0, y0, x1, y1, color)
	}
}

func (r brailleRenderer) DrawLine(a, b vec.Vec2, st shape.Style) {
	r.polyline([]vec.Vec2{a, b}, false, st)
}

func (r brailleRenderer) DrawPolygon(pts []vec.Vec2, st shape.Style) { r.polyline(pts, true, st) }
func (r brailleRenderer) DrawPath(pts []vec.Vec2, st shape.Style)    { r.polyline(pts, false, st) }

func (r brailleRenderer) DrawCircle(c vec.Vec2, radius float64, st shape.Style) {
	pts := make([]vec.Vec2, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = vec.Vec2{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	r.polyline(pts, true, st)
}

// DrawText places the string on the cell grid; size and rotation do not
// apply to terminal glyphs.
func (r brailleRenderer) DrawText(p vec.Vec2, s string, _, _ float64, st shape.Style) {
	x, y := dot(p)
	r.buf.label(x, y, s, render.Hex(st.Color))
}

// TextExtents reports one cell per rune, in dots.
func (r brailleRenderer) TextExtents(s string, _ float64) (wd, ht float64) {
	if s == "" {
		return 0, 0
	}
	return float64(dotsX * len([]rune(s))), dotsY
}
