package interact

import (
	"errors"
	"slices"
	"testing"
	"time"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
	"github.com/inamate/skycanvas/internal/shape"
)

// fakeHost is a 1:1 viewer that counts redraws.
type fakeHost struct {
	mappers *coord.Set
	redraws int
}

func newFakeHost() *fakeHost {
	h := &fakeHost{}
	h.mappers = coord.NewSet(h, nil)
	return h
}

func (h *fakeHost) ScaleXY() (float64, float64)      { return 1, 1 }
func (h *fakeHost) Zoom() float64                    { return 1 }
func (h *fakeHost) CanvasToData(p vec.Vec2) vec.Vec2 { return p }
func (h *fakeHost) DataToCanvas(p vec.Vec2) vec.Vec2 { return p }
func (h *fakeHost) PanRect() rect.Rect               { return rect.Rect{URx: 400, URy: 400} }
func (h *fakeHost) WindowSize() (float64, float64)   { return 400, 400 }
func (h *fakeHost) Redraw(canvas.Whence)             { h.redraws++ }
func (h *fakeHost) MapperFor(space coord.Space) (coord.Mapper, error) {
	return h.mappers.Get(space)
}

type fixture struct {
	cv   *canvas.Canvas
	host *fakeHost
	ctrl *Controller
	now  time.Time
}

func newFixture(t *testing.T, edit func(*Options)) *fixture {
	t.Helper()
	f := &fixture{cv: canvas.New(), host: newFakeHost(), now: time.Unix(1000, 0)}
	f.cv.SetViewer(f.host)
	opts := DefaultOptions()
	opts.Now = func() time.Time { return f.now }
	if edit != nil {
		edit(&opts)
	}
	ctrl, err := New(f.cv, shape.NewRegistry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	f.ctrl = ctrl
	f.host.redraws = 0
	return f
}

func at(x, y float64) Pointer { return Pointer{Data: geom.Pt(x, y)} }

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) add(t *testing.T, s shape.Shape, tag string) {
	t.Helper()
	if _, err := f.cv.Add(s, canvas.WithTag(tag)); err != nil {
		t.Fatal(err)
	}
}

func TestDrawRectangle(t *testing.T) {
	f := newFixture(t, nil)
	var drawn []string
	f.ctrl.On(EventDraw, func(ev Event) { drawn = append(drawn, ev.Tags...) })

	must(t, f.ctrl.PointerDown(at(10, 10)))
	must(t, f.ctrl.PointerMove(at(50, 50)))
	must(t, f.ctrl.PointerUp(at(50, 50)))

	if len(drawn) != 1 {
		t.Fatalf("draw events = %v, want one tag", drawn)
	}
	s, err := f.cv.Get(drawn[0])
	if err != nil {
		t.Fatal(err)
	}
	r, ok := s.(*shape.Rectangle)
	if !ok {
		t.Fatalf("drawn shape is %T, want *shape.Rectangle", s)
	}
	if r.P1 != geom.Pt(10, 10) || r.P2 != geom.Pt(50, 50) {
		t.Errorf("rectangle corners = %v-%v, want (10,10)-(50,50)", r.P1, r.P2)
	}
	if got := f.ctrl.Selection(); !slices.Equal(got, drawn) {
		t.Errorf("Selection() after auto-select = %v, want %v", got, drawn)
	}
	if f.ctrl.Drawing() != nil {
		t.Error("draw context survived pointer-up")
	}
}

func TestDrawProspectiveShape(t *testing.T) {
	f := newFixture(t, nil)
	must(t, f.ctrl.PointerDown(at(0, 0)))
	must(t, f.ctrl.PointerMove(at(20, 30)))

	d := f.ctrl.Drawing()
	if d == nil || d.Shape == nil {
		t.Fatal("no prospective shape during drag")
	}
	if got, _ := d.Shape.LLUR(); got != (rect.Rect{URx: 20, URy: 30}) {
		t.Errorf("prospective LLUR() = %v", got)
	}
	if f.cv.Len() != 0 {
		t.Error("prospective shape was added to the canvas")
	}
}

func TestPointerDownDiscardsPendingDraw(t *testing.T) {
	f := newFixture(t, nil)
	must(t, f.ctrl.PointerDown(at(0, 0)))
	must(t, f.ctrl.PointerMove(at(5, 5)))
	// The pointer-up for the first gesture never arrives.
	must(t, f.ctrl.PointerDown(at(100, 100)))
	must(t, f.ctrl.PointerUp(at(120, 130)))

	if f.cv.Len() != 1 {
		t.Fatalf("canvas has %d objects, want 1", f.cv.Len())
	}
	got, _ := f.cv.LLUR()
	if want := (rect.Rect{LLx: 100, LLy: 100, URx: 120, URy: 130}); got != want {
		t.Errorf("LLUR() = %v, want %v", got, want)
	}
}

func TestDrawPolygonWithVertices(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.DrawKind = shape.KindPolygon })
	must(t, f.ctrl.PointerDown(at(0, 0)))
	must(t, f.ctrl.PointerMove(at(10, 0)))
	if f.ctrl.Drawing().Shape != nil {
		t.Error("two points made a polygon")
	}
	must(t, f.ctrl.AddVertex(at(10, 0)))
	must(t, f.ctrl.PointerMove(at(10, 10)))
	must(t, f.ctrl.PointerUp(at(10, 10)))

	objs := f.cv.Objects()
	if len(objs) != 1 {
		t.Fatalf("canvas has %d objects, want 1", len(objs))
	}
	p := objs[0].(*shape.Polygon)
	want := []vec.Vec2{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}
	if !slices.Equal(p.Pts, want) {
		t.Errorf("polygon = %v, want %v", p.Pts, want)
	}
}

func TestDrawPolygonTooFewPoints(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.DrawKind = shape.KindPolygon })
	must(t, f.ctrl.PointerDown(at(0, 0)))
	err := f.ctrl.PointerUp(at(10, 0))
	if !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("PointerUp() error = %v, want ErrConfiguration", err)
	}
	if f.cv.Len() != 0 || f.ctrl.Drawing() != nil {
		t.Error("failed draw left state behind")
	}
}

func TestDrawRemoveVertex(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.DrawKind = shape.KindPath })
	must(t, f.ctrl.PointerDown(at(0, 0)))
	must(t, f.ctrl.AddVertex(at(5, 0)))
	must(t, f.ctrl.AddVertex(at(5, 5)))
	must(t, f.ctrl.RemoveVertex(at(5, 5)))
	if got := len(f.ctrl.Drawing().Verts); got != 2 {
		t.Errorf("len(Verts) after remove = %d, want 2", got)
	}
	must(t, f.ctrl.RemoveVertex(at(0, 0)))
	must(t, f.ctrl.RemoveVertex(at(0, 0)))
	if got := len(f.ctrl.Drawing().Verts); got != 1 {
		t.Errorf("len(Verts) = %d, want the start point to stay", got)
	}
}

func TestEditPolygonVertex(t *testing.T) {
	f := newFixture(t, nil)
	poly, err := shape.NewPolygon([]vec.Vec2{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)})
	must(t, err)
	f.add(t, poly, "poly")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("poly"))

	var edited []string
	f.ctrl.On(EventEdit, func(ev Event) { edited = append(edited, ev.Tags...) })

	must(t, f.ctrl.PointerDown(at(10.5, 9.6)))
	tags, handle, ok := f.ctrl.Editing()
	if !ok || handle != 3 || !slices.Equal(tags, []string{"poly"}) {
		t.Fatalf("Editing() = %v, %d, %v, want [poly], 3, true", tags, handle, ok)
	}
	must(t, f.ctrl.PointerMove(at(15, 15)))
	must(t, f.ctrl.PointerMove(at(20, 20)))
	must(t, f.ctrl.PointerUp(at(20, 20)))

	want := []vec.Vec2{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 20), geom.Pt(0, 10)}
	if !slices.Equal(poly.Pts, want) {
		t.Errorf("polygon after drag = %v, want %v", poly.Pts, want)
	}
	if !slices.Equal(edited, []string{"poly"}) {
		t.Errorf("edit events = %v, want [poly]", edited)
	}
}

func TestEditMoveSelectedBody(t *testing.T) {
	f := newFixture(t, nil)
	r := shape.NewRectangle(0, 0, 100, 100)
	f.add(t, r, "r")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("r"))

	must(t, f.ctrl.PointerDown(at(20, 70)))
	if _, handle, _ := f.ctrl.Editing(); handle != -1 {
		t.Fatalf("grabbed handle %d, want a body move", handle)
	}
	must(t, f.ctrl.PointerMove(at(30, 80)))
	must(t, f.ctrl.PointerUp(at(30, 80)))
	if r.P1 != geom.Pt(10, 10) || r.P2 != geom.Pt(110, 110) {
		t.Errorf("rectangle after move = %v-%v, want (10,10)-(110,110)", r.P1, r.P2)
	}
}

func TestEditClickSelectsTopmost(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, shape.NewCircle(0, 0, 10), "below")
	f.add(t, shape.NewCircle(2, 0, 10), "above")
	locked := shape.NewCircle(1, 0, 10)
	locked.Editable = false
	f.add(t, locked, "locked")
	must(t, f.ctrl.SetMode(ModeEdit))

	var selections [][]string
	f.ctrl.On(EventSelect, func(ev Event) { selections = append(selections, ev.Tags) })

	must(t, f.ctrl.PointerDown(at(1, 0)))
	must(t, f.ctrl.PointerUp(at(1, 0)))
	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"above"}) {
		t.Errorf("Selection() = %v, want [above]", got)
	}

	must(t, f.ctrl.PointerDown(at(300, 300)))
	if got := f.ctrl.Selection(); len(got) != 0 {
		t.Errorf("Selection() after empty click = %v, want empty", got)
	}
	if len(selections) != 2 {
		t.Errorf("%d edit-select events, want 2", len(selections))
	}
}

func TestSingleSelectReplaces(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, shape.NewPoint(0, 0, 1), "a")
	f.add(t, shape.NewPoint(9, 9, 1), "b")
	must(t, f.ctrl.Select("a"))
	must(t, f.ctrl.Select("b"))
	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Selection() = %v, want [b]", got)
	}
	if err := f.ctrl.Select("ghost"); !errors.Is(err, canvas.ErrTagNotFound) {
		t.Errorf("Select(ghost) error = %v, want ErrTagNotFound", err)
	}
}

func TestMultiSelectMergesForOneGesture(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MultiSelect = true })
	a, b, c := shape.NewCircle(0, 0, 5), shape.NewCircle(50, 0, 5), shape.NewCircle(100, 0, 5)
	f.add(t, a, "a")
	f.add(t, b, "b")
	f.add(t, c, "c")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("a"))
	must(t, f.ctrl.Select("b"))

	must(t, f.ctrl.PointerDown(at(100, 0)))
	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Selection() = %v, want [a b c]", got)
	}
	must(t, f.ctrl.PointerMove(at(110, 10)))
	must(t, f.ctrl.PointerUp(at(110, 10)))

	for _, s := range []*shape.Circle{a, b, c} {
		if s.Base().Owner() != shape.Owner(f.cv.Root()) {
			t.Errorf("circle at %v no longer belongs to the canvas", s.C)
		}
	}
	if a.C != geom.Pt(10, 10) || b.C != geom.Pt(60, 10) || c.C != geom.Pt(110, 10) {
		t.Errorf("centers after group move = %v %v %v", a.C, b.C, c.C)
	}
	if f.cv.Len() != 3 || f.cv.Root().Len() != 3 {
		t.Error("the transient group leaked into the canvas")
	}
	if _, _, ok := f.ctrl.Editing(); ok {
		t.Error("gesture still active after pointer-up")
	}
}

func TestModifierTogglesSelection(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MultiSelect = true })
	// Large circles so the clicks land on the body, clear of the handles.
	f.add(t, shape.NewCircle(0, 0, 20), "a")
	f.add(t, shape.NewCircle(100, 0, 20), "b")
	must(t, f.ctrl.SetMode(ModeEdit))

	click := func(x, y float64, mod bool) {
		t.Helper()
		ev := Pointer{Data: geom.Pt(x, y), Modifier: mod}
		must(t, f.ctrl.PointerDown(ev))
		must(t, f.ctrl.PointerUp(ev))
	}
	click(100, 12, false)
	click(0, 12, true)
	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Selection() = %v, want [b a]", got)
	}
	click(100, 12, true)
	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Selection() after modifier click on b = %v, want [a]", got)
	}
}

func TestDeletePurgesSelection(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MultiSelect = true })
	f.add(t, shape.NewCircle(0, 0, 5), "a")
	f.add(t, shape.NewCircle(50, 0, 5), "b")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("a"))
	must(t, f.ctrl.Select("b"))
	must(t, f.ctrl.PointerDown(at(0, 0)))

	var last []string
	f.ctrl.On(EventSelect, func(ev Event) { last = ev.Tags })
	must(t, f.cv.DeleteByTag("a"))

	if got := f.ctrl.Selection(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Selection() after delete = %v, want [b]", got)
	}
	if !slices.Equal(last, []string{"b"}) {
		t.Errorf("edit-select after delete = %v, want [b]", last)
	}
	if _, _, ok := f.ctrl.Editing(); ok {
		t.Error("gesture on a deleted object survived")
	}
	// Moving now must not touch the deleted object.
	must(t, f.ctrl.PointerMove(at(5, 5)))
}

func TestEditVertexInsertDelete(t *testing.T) {
	f := newFixture(t, nil)
	poly, err := shape.NewPolygon([]vec.Vec2{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)})
	must(t, err)
	f.add(t, poly, "p")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("p"))

	must(t, f.ctrl.AddVertex(at(5, 0.5)))
	want := []vec.Vec2{geom.Pt(0, 0), geom.Pt(5, 0.5), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)}
	if !slices.Equal(poly.Pts, want) {
		t.Fatalf("after AddVertex = %v, want %v", poly.Pts, want)
	}
	must(t, f.ctrl.RemoveVertex(at(10, 9)))
	want = []vec.Vec2{geom.Pt(0, 0), geom.Pt(5, 0.5), geom.Pt(10, 0), geom.Pt(0, 10)}
	if !slices.Equal(poly.Pts, want) {
		t.Errorf("after RemoveVertex = %v, want %v", poly.Pts, want)
	}

	// Far from any edge nothing happens.
	must(t, f.ctrl.AddVertex(at(200, 200)))
	if len(poly.Pts) != 4 {
		t.Errorf("AddVertex far away changed the polygon: %v", poly.Pts)
	}
}

func TestRemoveVertexKeepsMinimum(t *testing.T) {
	f := newFixture(t, nil)
	tri, err := shape.NewPolygon([]vec.Vec2{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0, 10)})
	must(t, err)
	f.add(t, tri, "t")
	must(t, f.ctrl.SetMode(ModeEdit))
	must(t, f.ctrl.Select("t"))
	if err := f.ctrl.RemoveVertex(at(10, 0)); !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("RemoveVertex on a triangle error = %v, want ErrConfiguration", err)
	}
	if len(tri.Pts) != 3 {
		t.Errorf("triangle lost a vertex: %v", tri.Pts)
	}
}

func TestThrottle(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottle(20*time.Millisecond, func() time.Time { return now })
	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{0, true},
		{5 * time.Millisecond, false},
		{10 * time.Millisecond, false},
		{5 * time.Millisecond, true},
		{19 * time.Millisecond, false},
		{time.Millisecond, true},
	}
	for i, s := range steps {
		now = now.Add(s.advance)
		if got := th.Ready(); got != s.want {
			t.Errorf("step %d: Ready() = %v, want %v", i, got, s.want)
		}
	}
	th.Reset()
	if !th.Ready() {
		t.Error("Ready() after Reset = false")
	}
}

func TestDragRepaintsAreThrottled(t *testing.T) {
	f := newFixture(t, nil)
	must(t, f.ctrl.PointerDown(at(0, 0)))
	for i := 1; i <= 10; i++ {
		must(t, f.ctrl.PointerMove(at(float64(i), float64(i))))
	}
	if f.host.redraws != 1 {
		t.Errorf("redraws during a frozen-clock drag = %d, want 1", f.host.redraws)
	}
	f.now = f.now.Add(DefaultRedrawInterval)
	must(t, f.ctrl.PointerMove(at(20, 20)))
	if f.host.redraws != 2 {
		t.Errorf("redraws after the interval = %d, want 2", f.host.redraws)
	}
}

func TestModesAndDispatch(t *testing.T) {
	f := newFixture(t, nil)
	var seen []vec.Vec2
	must(t, f.ctrl.RegisterMode("inspect", map[Op]Handler{
		OpPointerDown: func(c *Controller, ev Pointer) error {
			seen = append(seen, ev.Data)
			return nil
		},
	}))
	if err := f.ctrl.SetMode("nope"); !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("SetMode(nope) error = %v, want ErrConfiguration", err)
	}
	must(t, f.ctrl.SetMode("inspect"))
	if got := f.ctrl.Modes(); !slices.Equal(got, []Mode{ModeDraw, ModeEdit, "inspect"}) {
		t.Errorf("Modes() = %v", got)
	}

	ok, err := f.ctrl.Dispatch("cursor-down", at(3, 4))
	if !ok || err != nil {
		t.Fatalf("Dispatch(cursor-down) = %v, %v", ok, err)
	}
	// Unhandled operations in a mode are ignored.
	if ok, err := f.ctrl.Dispatch("cursor-up", at(3, 4)); !ok || err != nil {
		t.Errorf("Dispatch(cursor-up) = %v, %v", ok, err)
	}
	if ok, _ := f.ctrl.Dispatch("key-q", at(0, 0)); ok {
		t.Error("Dispatch of an unbound name reported bound")
	}
	if !slices.Equal(seen, []vec.Vec2{geom.Pt(3, 4)}) {
		t.Errorf("inspect mode saw %v", seen)
	}
}

func TestNewRejectsUndrawableKind(t *testing.T) {
	opts := DefaultOptions()
	opts.DrawKind = shape.KindCompound
	if _, err := New(canvas.New(), shape.NewRegistry(), opts); !errors.Is(err, shape.ErrConfiguration) {
		t.Errorf("New() with compound draw kind error = %v, want ErrConfiguration", err)
	}
}

func TestSelection(t *testing.T) {
	var s Selection
	s.Add("a")
	s.Add("b")
	if s.Add("a") {
		t.Error("Add(a) twice reported new")
	}
	s.Add("c")
	s.Remove("b")
	if got := s.Tags(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Tags() = %v, want [a c]", got)
	}
	s.Set("x", "x", "y")
	if got := s.Tags(); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("Tags() after Set = %v, want [x y]", got)
	}
	if !s.Clear() || s.Len() != 0 || s.Clear() {
		t.Error("Clear() misreported")
	}
}
