package shape

import (
	"fmt"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/geom"
)

// Params describes a shape to build. Which fields matter depends on the
// kind; points and lengths are in the local units of Space.
type Params struct {
	Space    coord.Space
	Style    Style
	Editable bool
	// SelectRadius is the pick tolerance in canvas pixels; zero means
	// DefaultSelectRadius.
	SelectRadius float64

	Points   []vec.Vec2
	Radius   float64
	XRadius  float64
	YRadius  float64
	Rotation float64
	Text     string
	FontSize float64

	Opaque   bool
	Children []Shape
}

// DefaultParams returns editable data-space parameters with the default
// style.
func DefaultParams() Params {
	return Params{
		Space:    coord.SpaceData,
		Style:    DefaultStyle(),
		Editable: true,
		Radius:   5,
		Text:     "EDIT ME",
		FontSize: DefaultFontSize,
	}
}

// Factory builds a shape of one kind from parameters.
type Factory func(p Params) (Shape, error)

// Drawer is the incremental constructor used while a shape is being drawn.
// start is where the gesture began, cur the current pointer position and
// verts the vertices collected so far (starting with start). All points
// are in the local units of p.Space.
type Drawer func(start, cur vec.Vec2, verts []vec.Vec2, p Params) (Shape, error)

type entry struct {
	build Factory
	draw  Drawer
}

// Registry maps kinds to their constructors. Build one at startup with
// NewRegistry and pass it to whatever needs to create shapes.
type Registry struct {
	kinds map[Kind]entry
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[Kind]entry)}
	r.Register(KindPoint, buildPoint, func(_, cur vec.Vec2, _ []vec.Vec2, p Params) (Shape, error) {
		p.Points = []vec.Vec2{cur}
		return buildPoint(p)
	})
	r.Register(KindLine, buildLine, twoPoint(buildLine))
	r.Register(KindRectangle, buildRectangle, twoPoint(buildRectangle))
	r.Register(KindBox, buildBox, centerRadii(buildBox))
	r.Register(KindCircle, buildCircle, func(start, cur vec.Vec2, _ []vec.Vec2, p Params) (Shape, error) {
		p.Points = []vec.Vec2{start}
		p.Radius = geom.Distance(start, cur)
		return buildCircle(p)
	})
	r.Register(KindEllipse, buildEllipse, centerRadii(buildEllipse))
	r.Register(KindPolygon, buildPolygon, vertexList(buildPolygon))
	r.Register(KindPath, buildPath, vertexList(buildPath))
	r.Register(KindText, buildText, func(start, _ vec.Vec2, _ []vec.Vec2, p Params) (Shape, error) {
		p.Points = []vec.Vec2{start}
		return buildText(p)
	})
	r.Register(KindCompound, buildCompound, nil)
	return r
}

// Register adds or replaces a kind. draw may be nil for kinds that cannot
// be drawn interactively.
func (r *Registry) Register(k Kind, build Factory, draw Drawer) {
	r.kinds[k] = entry{build: build, draw: draw}
}

// Build constructs a shape of kind k.
func (r *Registry) Build(k Kind, p Params) (Shape, error) {
	e, ok := r.kinds[k]
	if !ok {
		return nil, fmt.Errorf("%w: kind %s not registered", ErrConfiguration, k)
	}
	return e.build(p)
}

// Drawer returns the incremental constructor for k.
func (r *Registry) Drawer(k Kind) (Drawer, bool) {
	e, ok := r.kinds[k]
	if !ok || e.draw == nil {
		return nil, false
	}
	return e.draw, true
}

// Kinds returns the registered kinds in declaration order.
func (r *Registry) Kinds() []Kind {
	ks := make([]Kind, 0, len(r.kinds))
	for k := range r.kinds {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// DrawableKinds returns the kinds that have a Drawer.
func (r *Registry) DrawableKinds() []Kind {
	var ks []Kind
	for _, k := range r.Kinds() {
		if r.kinds[k].draw != nil {
			ks = append(ks, k)
		}
	}
	return ks
}

func twoPoint(build Factory) Drawer {
	return func(start, cur vec.Vec2, _ []vec.Vec2, p Params) (Shape, error) {
		p.Points = []vec.Vec2{start, cur}
		return build(p)
	}
}

func centerRadii(build Factory) Drawer {
	return func(start, cur vec.Vec2, _ []vec.Vec2, p Params) (Shape, error) {
		p.Points = []vec.Vec2{start}
		p.XRadius = math.Abs(cur.X - start.X)
		p.YRadius = math.Abs(cur.Y - start.Y)
		return build(p)
	}
}

func vertexList(build Factory) Drawer {
	return func(_, cur vec.Vec2, verts []vec.Vec2, p Params) (Shape, error) {
		p.Points = append(slices.Clone(verts), cur)
		return build(p)
	}
}

func needPoints(k Kind, p Params, n int) error {
	if len(p.Points) != n {
		return fmt.Errorf("%w: %s needs %d points, got %d", ErrConfiguration, k, n, len(p.Points))
	}
	return nil
}

func nonNegative(k Kind, vals ...float64) error {
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s with negative size %g", ErrConfiguration, k, v)
		}
	}
	return nil
}

func buildPoint(p Params) (Shape, error) {
	if err := needPoints(KindPoint, p, 1); err != nil {
		return nil, err
	}
	if err := nonNegative(KindPoint, p.Radius); err != nil {
		return nil, err
	}
	return &Point{Object: newObject(p), Pos: p.Points[0], Radius: p.Radius}, nil
}

func buildLine(p Params) (Shape, error) {
	if err := needPoints(KindLine, p, 2); err != nil {
		return nil, err
	}
	return &Line{Object: newObject(p), P1: p.Points[0], P2: p.Points[1]}, nil
}

func buildRectangle(p Params) (Shape, error) {
	if err := needPoints(KindRectangle, p, 2); err != nil {
		return nil, err
	}
	s := &Rectangle{Object: newObject(p), P1: p.Points[0], P2: p.Points[1]}
	s.normalize()
	return s, nil
}

func buildBox(p Params) (Shape, error) {
	if err := needPoints(KindBox, p, 1); err != nil {
		return nil, err
	}
	if err := nonNegative(KindBox, p.XRadius, p.YRadius); err != nil {
		return nil, err
	}
	return &Box{Object: newObject(p), C: p.Points[0], XRadius: p.XRadius, YRadius: p.YRadius, Rotation: p.Rotation}, nil
}

func buildCircle(p Params) (Shape, error) {
	if err := needPoints(KindCircle, p, 1); err != nil {
		return nil, err
	}
	if err := nonNegative(KindCircle, p.Radius); err != nil {
		return nil, err
	}
	return &Circle{Object: newObject(p), C: p.Points[0], Radius: p.Radius}, nil
}

func buildEllipse(p Params) (Shape, error) {
	if err := needPoints(KindEllipse, p, 1); err != nil {
		return nil, err
	}
	if err := nonNegative(KindEllipse, p.XRadius, p.YRadius); err != nil {
		return nil, err
	}
	return &Ellipse{Object: newObject(p), C: p.Points[0], XRadius: p.XRadius, YRadius: p.YRadius, Rotation: p.Rotation}, nil
}

func buildPolygon(p Params) (Shape, error) {
	if len(p.Points) < minPolygonPoints {
		return nil, fmt.Errorf("%w: polygon needs %d points, got %d", ErrConfiguration, minPolygonPoints, len(p.Points))
	}
	return &Polygon{Object: newObject(p), Pts: slices.Clone(p.Points)}, nil
}

func buildPath(p Params) (Shape, error) {
	if len(p.Points) < minPathPoints {
		return nil, fmt.Errorf("%w: path needs %d points, got %d", ErrConfiguration, minPathPoints, len(p.Points))
	}
	return &Path{Object: newObject(p), Pts: slices.Clone(p.Points)}, nil
}

func buildText(p Params) (Shape, error) {
	if err := needPoints(KindText, p, 1); err != nil {
		return nil, err
	}
	size := p.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	return &Text{Object: newObject(p), Pos: p.Points[0], Text: p.Text, FontSize: size, Rotation: p.Rotation}, nil
}

func buildCompound(p Params) (Shape, error) {
	c := &Compound{Object: newObject(p), Opaque: p.Opaque}
	for _, s := range p.Children {
		if err := c.AddChild(s, nil); err != nil {
			c.RemoveAll()
			return nil, err
		}
	}
	return c, nil
}
