package shape

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// brokenShape panics on every hit-test.
type brokenShape struct{ *Circle }

func (brokenShape) Contains(vec.Vec2) (bool, error) { panic("corrupt geometry") }
func (brokenShape) SelectContains(coord.Viewer, vec.Vec2) (bool, error) {
	return false, errors.New("corrupt geometry")
}

func order(c *Compound) []Shape { return c.Children() }

func sameOrder(got []Shape, want ...Shape) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCompoundLLURIsUnion(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c, _ := NewCompound()
	if _, err := c.LLUR(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty LLUR() error = %v, want ErrEmpty", err)
	}
	var want rect.Rect
	for i := 0; i < 20; i++ {
		s := NewCircle(rng.Float64()*100, rng.Float64()*100, 1+rng.Float64()*5)
		if err := c.AddChild(s, nil); err != nil {
			t.Fatal(err)
		}
		r, _ := s.LLUR()
		if i == 0 {
			want = r
		} else {
			want.Add(r.LLx, r.LLy)
			want.Add(r.URx, r.URy)
		}
		got, err := c.LLUR()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("LLUR() after %d children = %v, want %v", i+1, got, want)
		}
	}

	before, _ := c.LLUR()
	c.AddChild(NewPoint(before.URx+50, before.URy+50, 1), nil)
	after, _ := c.LLUR()
	if !after.Covers(before) || after.URx <= before.URx || after.URy <= before.URy {
		t.Errorf("adding an outside shape did not expand %v, got %v", before, after)
	}
}

func TestAddChildBefore(t *testing.T) {
	a, b, x := NewCircle(0, 0, 1), NewCircle(1, 1, 1), NewCircle(2, 2, 1)
	c, err := NewCompound(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AddChild(x, b); err != nil {
		t.Fatal(err)
	}
	if !sameOrder(order(c), a, x, b) {
		t.Errorf("order after AddChild(x, before b) is wrong")
	}

	stranger := NewCircle(9, 9, 1)
	y := NewCircle(3, 3, 1)
	if err := c.AddChild(y, stranger); !errors.Is(err, ErrConfiguration) {
		t.Errorf("AddChild with missing sibling error = %v, want ErrConfiguration", err)
	}
	if y.Attached() || c.Len() != 3 {
		t.Error("failed AddChild left a partial insert")
	}
	if err := c.AddChild(a, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("duplicate AddChild error = %v, want ErrConfiguration", err)
	}
}

func TestRaiseLowerChild(t *testing.T) {
	a, b, d := NewCircle(0, 0, 1), NewCircle(1, 1, 1), NewCircle(2, 2, 1)
	c, _ := NewCompound(a, b, d)

	if err := c.RaiseChild(a, nil); err != nil {
		t.Fatal(err)
	}
	if !sameOrder(order(c), b, d, a) {
		t.Error("RaiseChild(a, nil) did not move a to the top")
	}
	if err := c.LowerChild(a, nil); err != nil {
		t.Fatal(err)
	}
	if !sameOrder(order(c), a, b, d) {
		t.Error("LowerChild(a, nil) did not move a to the bottom")
	}
	if err := c.RaiseChild(a, b); err != nil {
		t.Fatal(err)
	}
	if !sameOrder(order(c), b, a, d) {
		t.Error("RaiseChild(a, b) did not put a directly above b")
	}
	if err := c.LowerChild(d, a); err != nil {
		t.Fatal(err)
	}
	if !sameOrder(order(c), b, d, a) {
		t.Error("LowerChild(d, a) did not put d directly below a")
	}

	stranger := NewCircle(5, 5, 1)
	if err := c.RaiseChild(a, stranger); !errors.Is(err, ErrConfiguration) {
		t.Errorf("RaiseChild with missing reference error = %v, want ErrConfiguration", err)
	}
	if err := c.LowerChild(stranger, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("LowerChild of non-child error = %v, want ErrConfiguration", err)
	}
	if !sameOrder(order(c), b, d, a) {
		t.Error("failed reorder changed the order")
	}
}

func TestDeleteChildCascades(t *testing.T) {
	inner1, inner2 := NewCircle(0, 0, 1), NewCircle(5, 5, 1)
	group, _ := NewCompound(inner1, inner2)
	top, _ := NewCompound(group)

	if err := top.DeleteChild(group); err != nil {
		t.Fatal(err)
	}
	if group.Attached() || inner1.Attached() || inner2.Attached() {
		t.Error("DeleteChild left attached shapes behind")
	}
	if group.Len() != 0 {
		t.Errorf("deleted group still has %d children", group.Len())
	}
	if err := top.DeleteChild(group); !errors.Is(err, ErrNotChild) {
		t.Errorf("second DeleteChild error = %v, want ErrNotChild", err)
	}
}

func TestSelectItemsAtFlattensNonOpaque(t *testing.T) {
	a := NewCircle(0, 0, 5)
	b := NewCircle(1, 0, 5)
	inner, _ := NewCompound(b)
	opaqueChild := NewCircle(2, 0, 5)
	opaque, _ := NewCompound(opaqueChild)
	opaque.Opaque = true
	far := NewCircle(100, 100, 1)
	root, _ := NewCompound(a, inner, opaque, far)

	got := root.GetItemsAt(geom.Pt(1, 0))
	if !sameOrder(got, a, b, opaque) {
		t.Errorf("GetItemsAt = %v, want [a b opaque]", got)
	}

	onlyCircles := func(s Shape) bool { return s.Kind() == KindCircle }
	got = root.SelectItemsAt(nil, geom.Pt(1, 0), onlyCircles)
	if !sameOrder(got, a, b) {
		t.Errorf("SelectItemsAt with predicate = %v, want [a b]", got)
	}
}

func TestSweepWithBrokenShapeIsEmpty(t *testing.T) {
	good := NewCircle(0, 0, 5)
	bad := brokenShape{NewCircle(0, 0, 5)}
	root, _ := NewCompound(good, bad)

	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer SetLogger(nil)

	if got := root.GetItemsAt(geom.Pt(0, 0)); len(got) != 0 {
		t.Errorf("GetItemsAt with panicking shape = %v, want empty", got)
	}
	if !strings.Contains(logs.String(), "hit test sweep abandoned") {
		t.Errorf("log = %q, want the abandoned sweep warning", logs.String())
	}
	if _, err := ContainsPoints(root, []vec.Vec2{geom.Pt(0, 0)}); err == nil {
		t.Error("ContainsPoints with panicking shape error = nil, want error")
	}
	if got := root.SelectItemsAt(nil, geom.Pt(0, 0), nil); len(got) != 0 {
		t.Errorf("SelectItemsAt with failing shape = %v, want empty", got)
	}

	// The predicate keeps the broken shape out of the sweep entirely.
	circles := func(s Shape) bool {
		_, broken := s.(brokenShape)
		return !broken
	}
	if got := root.SelectItemsAt(nil, geom.Pt(0, 0), circles); !sameOrder(got, good) {
		t.Errorf("SelectItemsAt filtering the broken shape = %v, want [good]", got)
	}
}

func TestTransientDoesNotOwn(t *testing.T) {
	a, b := NewCircle(0, 0, 1), NewCircle(10, 0, 1)
	owner, _ := NewCompound(a, b)

	tr := NewTransient([]Shape{a, b})
	if err := tr.MoveDelta(1, 1); err != nil {
		t.Fatal(err)
	}
	if a.C != geom.Pt(1, 1) || b.C != geom.Pt(11, 1) {
		t.Errorf("transient move: a=%v b=%v", a.C, b.C)
	}
	if err := tr.RemoveChild(a); err != nil {
		t.Fatal(err)
	}
	if a.Owner() != Owner(owner) {
		t.Error("removing from a transient compound detached the shape from its owner")
	}
	r, _ := tr.LLUR()
	if r.LLx != 10 {
		t.Errorf("transient LLUR after removal = %v", r)
	}
}

func TestChildInheritsMapper(t *testing.T) {
	s := NewCircle(1, 1, 1)
	s.Space = coord.SpaceOffset
	group, _ := NewCompound(s)
	group.Space = coord.SpaceOffset
	anchor := NewPoint(100, 0, 1)
	other := NewPoint(0, 50, 1)
	if _, err := NewCompound(anchor, other); err != nil {
		t.Fatal(err)
	}
	group.SetMapper(coord.NewOffsetMapper(anchor, nil))

	c, err := s.Center()
	if err != nil {
		t.Fatal(err)
	}
	if c != geom.Pt(101, 1) {
		t.Errorf("child Center() through inherited mapper = %v, want (101, 1)", c)
	}

	// An explicit override on the child wins.
	s.SetMapper(coord.NewOffsetMapper(other, nil))
	c, _ = s.Center()
	if c != geom.Pt(1, 51) {
		t.Errorf("child Center() with override = %v, want (1, 51)", c)
	}
}

func TestSelectChildrenAtKeepsUnits(t *testing.T) {
	a := NewCircle(0, 0, 5)
	inner, _ := NewCompound(NewCircle(1, 0, 5))
	root, _ := NewCompound(a, inner)

	got := root.SelectChildrenAt(nil, geom.Pt(1, 0), nil)
	if !sameOrder(got, a, inner) {
		t.Errorf("SelectChildrenAt = %v, want [a inner]", got)
	}
}
