package shape

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// scaledViewer shows data at a fixed scale with the origin in the corner.
type scaledViewer struct{ scale float64 }

func (v scaledViewer) ScaleXY() (float64, float64)    { return v.scale, v.scale }
func (v scaledViewer) Zoom() float64                  { return v.scale }
func (v scaledViewer) WindowSize() (float64, float64) { return 500, 500 }
func (v scaledViewer) PanRect() rect.Rect             { return rect.Rect{URx: 500 / v.scale, URy: 500 / v.scale} }
func (v scaledViewer) DataToCanvas(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: p.X * v.scale, Y: p.Y * v.scale}
}
func (v scaledViewer) CanvasToData(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: p.X / v.scale, Y: p.Y / v.scale}
}

// countingRenderer records which primitives were drawn.
type countingRenderer struct {
	lines, polygons, paths, circles, texts int
	lastPolygon                            []vec.Vec2
	lastCircle                             float64
}

func (r *countingRenderer) DrawLine(a, b vec.Vec2, st Style) { r.lines++ }
func (r *countingRenderer) DrawPolygon(pts []vec.Vec2, st Style) {
	r.polygons++
	r.lastPolygon = pts
}
func (r *countingRenderer) DrawPath(pts []vec.Vec2, st Style) { r.paths++ }
func (r *countingRenderer) DrawCircle(c vec.Vec2, rad float64, st Style) {
	r.circles++
	r.lastCircle = rad
}
func (r *countingRenderer) DrawText(p vec.Vec2, text string, size, rot float64, st Style) {
	r.texts++
}
func (r *countingRenderer) TextExtents(text string, size float64) (float64, float64) {
	return float64(len(text)) * size / 2, size
}

func closeTo(a, b vec.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func mustPolygon(t *testing.T, pts ...vec.Vec2) *Polygon {
	t.Helper()
	p, err := NewPolygon(pts)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func unitSquare(t *testing.T, size float64) *Polygon {
	return mustPolygon(t,
		geom.Pt(0, 0), geom.Pt(size, 0), geom.Pt(size, size), geom.Pt(0, size))
}

func TestRectangleNormalizesCorners(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		x1, y1 := rng.Float64()*200-100, rng.Float64()*200-100
		x2, y2 := rng.Float64()*200-100, rng.Float64()*200-100
		r := NewRectangle(x1, y1, x2, y2)
		if r.P1.X > r.P2.X || r.P1.Y > r.P2.Y {
			t.Fatalf("NewRectangle(%v, %v, %v, %v) = %v-%v, not normalized", x1, y1, x2, y2, r.P1, r.P2)
		}

		s, err := NewRegistry().Build(KindRectangle, Params{Points: []vec.Vec2{{X: x1, Y: y1}, {X: x2, Y: y2}}})
		if err != nil {
			t.Fatal(err)
		}
		b := s.(*Rectangle)
		if b.P1.X > b.P2.X || b.P1.Y > b.P2.Y {
			t.Fatalf("Build(rectangle) = %v-%v, not normalized", b.P1, b.P2)
		}
	}
}

func TestRectangleCornerDragRenormalizes(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	// Drag the lower-left corner past the upper-right one.
	if err := r.SetEditPoint(1, geom.Pt(20, 20), nil); err != nil {
		t.Fatal(err)
	}
	if r.P1 != geom.Pt(10, 10) || r.P2 != geom.Pt(20, 20) {
		t.Errorf("after drag corners = %v-%v, want (10,10)-(20,20)", r.P1, r.P2)
	}
}

func TestRectangleCornerDragKeepsOppositeEdge(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	d, err := NewEditDetail(r, geom.Pt(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	// Drag the lower-left corner right, across the x=10 edge and beyond.
	for _, x := range []float64{5, 15, 16, 17} {
		if err := r.SetEditPoint(1, geom.Pt(x, 0), d); err != nil {
			t.Fatal(err)
		}
	}
	if r.P1 != geom.Pt(10, 0) || r.P2 != geom.Pt(17, 10) {
		t.Errorf("after drag corners = %v-%v, want (10,0)-(17,10)", r.P1, r.P2)
	}

	// Handle 4 pins the lower-right corner.
	r = NewRectangle(0, 0, 10, 10)
	d, _ = NewEditDetail(r, geom.Pt(0, 10))
	for _, p := range []vec.Vec2{geom.Pt(2, 12), geom.Pt(12, -3), geom.Pt(14, -4)} {
		if err := r.SetEditPoint(4, p, d); err != nil {
			t.Fatal(err)
		}
	}
	if r.P1 != geom.Pt(10, -4) || r.P2 != geom.Pt(14, 0) {
		t.Errorf("after drag corners = %v-%v, want (10,-4)-(14,0)", r.P1, r.P2)
	}
}

func TestCircleContainsMatchesDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		cx, cy, r := rng.Float64()*100, rng.Float64()*100, 1+rng.Float64()*30
		c := NewCircle(cx, cy, r)
		for k := 0; k < 100; k++ {
			p := geom.Pt(cx+rng.Float64()*80-40, cy+rng.Float64()*80-40)
			want := math.Hypot(p.X-cx, p.Y-cy) <= r
			got, err := c.Contains(p)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("Circle(%v,%v,%v).Contains(%v) = %v, want %v", cx, cy, r, p, got, want)
			}
		}
	}
}

func TestSelectContainsScalesWithZoom(t *testing.T) {
	c := NewCircle(0, 0, 10)
	p := geom.Pt(12, 0)
	// 5 px at 1 px/unit is 5 units: inside the tolerance ring.
	if ok, _ := c.SelectContains(scaledViewer{scale: 1}, p); !ok {
		t.Error("SelectContains at scale 1 = false, want true")
	}
	// 5 px at 10 px/unit is half a unit: outside.
	if ok, _ := c.SelectContains(scaledViewer{scale: 10}, p); ok {
		t.Error("SelectContains at scale 10 = true, want false")
	}
	if ok, _ := c.Contains(p); ok {
		t.Error("Contains(12, 0) = true, want false")
	}
}

func TestBoxRotatedContainment(t *testing.T) {
	b := NewBox(0, 0, 10, 2, 90)
	tests := []struct {
		p    vec.Vec2
		want bool
	}{
		{geom.Pt(0, 8), true},
		{geom.Pt(8, 0), false},
		{geom.Pt(1.5, -9), true},
	}
	for _, tt := range tests {
		if got, _ := b.Contains(tt.p); got != tt.want {
			t.Errorf("Box.Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	r, _ := NewBox(0, 0, 1, 1, 45).LLUR()
	s := math.Sqrt2
	if math.Abs(r.URx-s) > 1e-9 || math.Abs(r.LLy+s) > 1e-9 {
		t.Errorf("rotated Box.LLUR() = %v, want ±%v", r, s)
	}
}

func TestBoxEdgeRuleMatchesRectangle(t *testing.T) {
	b := NewBox(5, 5, 5, 5, 0)
	r := NewRectangle(0, 0, 10, 10)
	tests := []struct {
		name string
		p    vec.Vec2
		want bool
	}{
		{"interior", geom.Pt(5, 5), true},
		{"left edge", geom.Pt(0, 5), true},
		{"bottom edge", geom.Pt(5, 0), true},
		{"right edge", geom.Pt(10, 5), false},
		{"top edge", geom.Pt(5, 10), false},
		{"lower-left corner", geom.Pt(0, 0), true},
		{"upper-right corner", geom.Pt(10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := b.Contains(tt.p); got != tt.want {
				t.Errorf("Box.Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
			if got, _ := r.Contains(tt.p); got != tt.want {
				t.Errorf("Rectangle.Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestContainsPointsMatchesContains(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pts := make([]vec.Vec2, 400)
	for i := range pts {
		pts[i] = geom.Pt(rng.Float64()*40-10, rng.Float64()*40-10)
	}
	// Grid points land exactly on the axis-aligned edges.
	for x := 0.0; x <= 20; x += 5 {
		for y := 0.0; y <= 20; y += 5 {
			pts = append(pts, geom.Pt(x, y))
		}
	}
	poly, _ := NewPolygon([]vec.Vec2{geom.Pt(0, 0), geom.Pt(20, 0), geom.Pt(20, 20), geom.Pt(10, 5), geom.Pt(0, 20)})
	inner, _ := NewCompound(NewCircle(3, 3, 2), NewBox(15, 15, 3, 1, 30))
	shapes := []Shape{
		NewRectangle(0, 0, 10, 20),
		NewBox(10, 10, 6, 3, 35),
		poly,
		NewCircle(10, 10, 7),
		inner,
	}
	for _, s := range shapes {
		mask, err := ContainsPoints(s, pts)
		if err != nil {
			t.Fatalf("ContainsPoints(%s) error = %v", s.Kind(), err)
		}
		for i, p := range pts {
			want, _ := s.Contains(p)
			if mask[i] != want {
				t.Fatalf("ContainsPoints(%s)[%v] = %v, want %v", s.Kind(), p, mask[i], want)
			}
		}
	}
}

func TestEllipseContains(t *testing.T) {
	e := NewEllipse(0, 0, 10, 5, 0)
	if ok, _ := e.Contains(geom.Pt(9, 0)); !ok {
		t.Error("Contains(9, 0) = false, want true")
	}
	if ok, _ := e.Contains(geom.Pt(0, 6)); ok {
		t.Error("Contains(0, 6) = true, want false")
	}
	e.Rotation = 90
	if ok, _ := e.Contains(geom.Pt(0, 9)); !ok {
		t.Error("rotated Contains(0, 9) = false, want true")
	}
	flat := NewEllipse(0, 0, 0, 5, 0)
	if ok, _ := flat.Contains(geom.Pt(0, 0)); ok {
		t.Error("degenerate ellipse should contain nothing")
	}
}

func TestPolygonConstruction(t *testing.T) {
	if _, err := NewPolygon([]vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("NewPolygon(2 points) error = %v, want ErrConfiguration", err)
	}
	if _, err := NewPath([]vec.Vec2{{X: 0, Y: 0}}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("NewPath(1 point) error = %v, want ErrConfiguration", err)
	}
	reg := NewRegistry()
	if _, err := reg.Build(KindPolygon, Params{Points: []vec.Vec2{{}, {X: 1}}}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Build(polygon, 2 points) error = %v, want ErrConfiguration", err)
	}
	if _, err := reg.Build(KindCircle, Params{Points: []vec.Vec2{{}}, Radius: -1}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Build(circle, r=-1) error = %v, want ErrConfiguration", err)
	}
}

func TestPolygonVertexEdit(t *testing.T) {
	p := unitSquare(t, 10)
	eps, err := p.EditPoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 7 {
		t.Fatalf("len(EditPoints()) = %d, want 7", len(eps))
	}
	if eps[0].Role != HandleMove || eps[3].Pos != geom.Pt(10, 10) || eps[5].Role != HandleScale || eps[6].Role != HandleRotate {
		t.Fatalf("unexpected handle layout %v", eps)
	}

	if err := p.SetEditPoint(3, geom.Pt(20, 20), nil); err != nil {
		t.Fatal(err)
	}
	want := []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 20}, {X: 0, Y: 10}}
	if !reflect.DeepEqual(p.Pts, want) {
		t.Errorf("after edit Pts = %v, want %v", p.Pts, want)
	}
	if err := p.SetEditPoint(7, geom.Pt(0, 0), nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("SetEditPoint(7) error = %v, want ErrConfiguration", err)
	}
}

func TestPolygonMoveGrabsCentroid(t *testing.T) {
	// An L shape whose vertex mean differs from its centroid.
	p := mustPolygon(t,
		geom.Pt(0, 0), geom.Pt(4, 0), geom.Pt(4, 1), geom.Pt(1, 1), geom.Pt(1, 4), geom.Pt(0, 4))
	c, _ := p.Center()
	if want := geom.Centroid(p.Pts); c != want {
		t.Fatalf("Center() = %v, want centroid %v", c, want)
	}
	if err := p.MoveTo(geom.Pt(100, 100)); err != nil {
		t.Fatal(err)
	}
	c, _ = p.Center()
	if !closeTo(c, geom.Pt(100, 100)) {
		t.Errorf("Center() after MoveTo = %v, want (100, 100)", c)
	}
}

func TestScaleHandleIsAbsolute(t *testing.T) {
	p := unitSquare(t, 10)
	eps, _ := p.EditPoints()
	d, err := NewEditDetail(p, eps[5].Pos)
	if err != nil {
		t.Fatal(err)
	}
	// Pull the handle to twice its distance from the center, twice in a
	// row: the second move must not scale again.
	c := d.Center
	target := c.Add(eps[5].Pos.Sub(c).Mul(2))
	for i := 0; i < 2; i++ {
		if err := p.SetEditPoint(5, target, d); err != nil {
			t.Fatal(err)
		}
	}
	r, _ := p.LLUR()
	if math.Abs(r.Dx()-20) > 1e-9 {
		t.Errorf("width after scale drag = %v, want 20", r.Dx())
	}
}

func TestRotateHandle(t *testing.T) {
	b := NewBox(0, 0, 4, 2, 0)
	eps, _ := b.EditPoints()
	d, _ := NewEditDetail(b, eps[6].Pos)
	// The rotate handle starts straight above the center; drag it to the left.
	for i := 0; i < 3; i++ {
		if err := b.SetEditPoint(6, geom.Pt(-10, 0), d); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(b.Rotation-90) > 1e-9 {
		t.Errorf("Rotation = %v, want 90", b.Rotation)
	}
}

func TestEditPointsAndContainsAreStable(t *testing.T) {
	shapes := []Shape{
		NewPoint(1, 1, 2),
		NewLine(0, 0, 5, 5),
		NewRectangle(0, 0, 4, 3),
		NewBox(1, 1, 3, 2, 30),
		NewCircle(2, 2, 3),
		NewEllipse(2, 2, 3, 1, 15),
		unitSquare(t, 5),
		NewText(0, 0, "hello", 10),
	}
	sample := geom.Pt(1.5, 1.2)
	for _, s := range shapes {
		e1, err := s.EditPoints()
		if err != nil {
			t.Fatal(err)
		}
		c1, _ := s.Contains(sample)
		for i := 0; i < 3; i++ {
			e2, _ := s.EditPoints()
			c2, _ := s.Contains(sample)
			if !reflect.DeepEqual(e1, e2) || c1 != c2 {
				t.Errorf("%s: repeated queries differ", s.Kind())
			}
		}
	}
}

func TestDetachedShapes(t *testing.T) {
	c := NewCircle(0, 0, 1)
	c.Space = coord.SpaceWindow
	if _, err := c.Contains(geom.Pt(0, 0)); !errors.Is(err, ErrDetached) {
		t.Errorf("detached window-space Contains error = %v, want ErrDetached", err)
	}
	c.Space = coord.SpaceData
	if ok, err := c.Contains(geom.Pt(0, 0)); err != nil || !ok {
		t.Errorf("detached data-space Contains = %v, %v, want true, nil", ok, err)
	}
}

func TestAttachOnce(t *testing.T) {
	s := NewCircle(0, 0, 1)
	a, _ := NewCompound()
	b, _ := NewCompound()
	if err := a.AddChild(s, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(s, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("adding owned shape error = %v, want ErrConfiguration", err)
	}
	if b.Len() != 0 {
		t.Errorf("b.Len() = %d after failed add, want 0", b.Len())
	}
	if err := a.RemoveChild(s); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(s, nil); err != nil {
		t.Errorf("re-adding removed shape: %v", err)
	}
}

func TestOffsetSpaceFollowsReference(t *testing.T) {
	ref := NewCircle(10, 10, 1)
	holder, _ := NewCompound(ref)
	label := NewPoint(2, 3, 1)
	label.Space = coord.SpaceOffset
	label.SetMapper(coord.NewOffsetMapper(ref, nil))

	c, _ := label.Center()
	if c != geom.Pt(12, 13) {
		t.Fatalf("Center() = %v, want (12, 13)", c)
	}
	ref.MoveDelta(5, 0)
	c, _ = label.Center()
	if c != geom.Pt(17, 13) {
		t.Errorf("Center() after reference moved = %v, want (17, 13)", c)
	}
	// Moving the label itself is a no-op; it is pinned to the reference.
	label.MoveDelta(100, 100)
	if label.Pos != geom.Pt(2, 3) {
		t.Errorf("Pos after MoveDelta = %v, want (2, 3)", label.Pos)
	}

	// Once the reference is deleted the label no longer resolves.
	if err := holder.DeleteChild(ref); err != nil {
		t.Fatal(err)
	}
	if _, err := label.Center(); !errors.Is(err, ErrDetached) {
		t.Errorf("Center() after reference deleted error = %v, want ErrDetached", err)
	}
}

func TestTextExtentRecordedOnDraw(t *testing.T) {
	txt := NewText(0, 0, "abcd", 10)
	before, _ := txt.LLUR()
	r := &countingRenderer{}
	if err := txt.Draw(r, scaledViewer{scale: 2}); err != nil {
		t.Fatal(err)
	}
	after, _ := txt.LLUR()
	// countingRenderer reports 20x10 px, which is 10x5 data units at scale 2.
	if want := (rect.Rect{URx: 10, URy: 5}); after != want {
		t.Errorf("LLUR() after draw = %v, want %v (before %v)", after, want, before)
	}
	if r.texts != 1 {
		t.Errorf("DrawText calls = %d, want 1", r.texts)
	}
}

func TestVertexInsertDelete(t *testing.T) {
	p := unitSquare(t, 10)
	if err := p.InsertVertex(0, geom.Pt(5, -1)); err != nil {
		t.Fatal(err)
	}
	if len(p.Pts) != 5 || p.Pts[1] != geom.Pt(5, -1) {
		t.Fatalf("after insert Pts = %v", p.Pts)
	}
	for len(p.Pts) > 3 {
		if err := p.DeleteVertex(0); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.DeleteVertex(0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("deleting below 3 vertices error = %v, want ErrConfiguration", err)
	}
}

func TestDrawPrimitives(t *testing.T) {
	r := &countingRenderer{}
	v := scaledViewer{scale: 2}
	NewCircle(5, 5, 3).Draw(r, v)
	if r.circles != 1 || r.lastCircle != 6 {
		t.Errorf("circle drawn %d times with radius %v, want once with 6", r.circles, r.lastCircle)
	}
	NewEllipse(0, 0, 3, 2, 0).Draw(r, v)
	if r.polygons != 1 || len(r.lastPolygon) != ellipseSegments {
		t.Errorf("ellipse drawn as %d-gon", len(r.lastPolygon))
	}
	path, _ := NewPath([]vec.Vec2{{}, {X: 1, Y: 1}, {X: 2, Y: 0}})
	path.Draw(r, v)
	NewPoint(1, 1, 1).Draw(r, v)
	if r.paths != 1 || r.lines != 2 {
		t.Errorf("paths = %d, lines = %d, want 1 and 2", r.paths, r.lines)
	}
}

func TestKindText(t *testing.T) {
	for _, k := range NewRegistry().Kinds() {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Errorf("round trip of %s = %v, %v", k, back, err)
		}
	}
	if _, err := ParseKind("hexagon"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ParseKind(hexagon) error = %v, want ErrConfiguration", err)
	}
}

func TestRegistryDrawers(t *testing.T) {
	reg := NewRegistry()
	draw, ok := reg.Drawer(KindRectangle)
	if !ok {
		t.Fatal("no rectangle drawer")
	}
	s, err := draw(geom.Pt(50, 50), geom.Pt(10, 10), nil, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	r, _ := s.LLUR()
	if r != (rect.Rect{LLx: 10, LLy: 10, URx: 50, URy: 50}) {
		t.Errorf("drawn rectangle LLUR = %v", r)
	}

	poly, _ := reg.Drawer(KindPolygon)
	if _, err := poly(geom.Pt(0, 0), geom.Pt(1, 1), []vec.Vec2{{}}, DefaultParams()); !errors.Is(err, ErrConfiguration) {
		t.Errorf("polygon drawer with 2 points error = %v, want ErrConfiguration", err)
	}
	if _, ok := reg.Drawer(KindCompound); ok {
		t.Error("compound should have no drawer")
	}
	if len(reg.DrawableKinds()) != len(reg.Kinds())-1 {
		t.Errorf("DrawableKinds() = %v", reg.DrawableKinds())
	}
}

func TestParamsSelectRadius(t *testing.T) {
	reg := NewRegistry()
	for _, tt := range []struct{ in, want float64 }{{0, DefaultSelectRadius}, {-2, DefaultSelectRadius}, {12, 12}} {
		s, err := reg.Build(KindPoint, Params{Points: []vec.Vec2{{}}, Radius: 1, SelectRadius: tt.in})
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Base().SelectRadius; got != tt.want {
			t.Errorf("SelectRadius(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
