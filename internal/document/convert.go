package document

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/shape"
)

// Encode describes s as a node. Points are kept in the shape's own
// coordinate space so that sky and window anchored shapes survive a
// change of viewer.
func Encode(s shape.Shape) (Node, error) {
	b := s.Base()
	n := Node{Kind: s.Kind(), Coord: b.Space, Style: b.Style, Editable: b.Editable}
	n.Style.Dash = slices.Clone(b.Style.Dash)
	pts := func(vs ...vec.Vec2) []Point {
		out := make([]Point, len(vs))
		for i, v := range vs {
			out[i] = pointOf(v)
		}
		return out
	}
	switch s := s.(type) {
	case *shape.Point:
		n.Points, n.Radius = pts(s.Pos), s.Radius
	case *shape.Line:
		n.Points = pts(s.P1, s.P2)
	case *shape.Rectangle:
		n.Points = pts(s.P1, s.P2)
	case *shape.Box:
		n.Points, n.XRadius, n.YRadius, n.Rotation = pts(s.C), s.XRadius, s.YRadius, s.Rotation
	case *shape.Circle:
		n.Points, n.Radius = pts(s.C), s.Radius
	case *shape.Ellipse:
		n.Points, n.XRadius, n.YRadius, n.Rotation = pts(s.C), s.XRadius, s.YRadius, s.Rotation
	case *shape.Polygon:
		n.Points = pts(s.Pts...)
	case *shape.Path:
		n.Points = pts(s.Pts...)
	case *shape.Text:
		n.Points, n.Text, n.FontSize, n.Rotation = pts(s.Pos), s.Text, s.FontSize, s.Rotation
	case *shape.Compound:
		if s.Transient() {
			return Node{}, fmt.Errorf("%w: transient compound", ErrInvalid)
		}
		n.Opaque = s.Opaque
		for _, c := range s.Children() {
			cn, err := Encode(c)
			if err != nil {
				return Node{}, err
			}
			n.Children = append(n.Children, cn)
		}
	default:
		return Node{}, fmt.Errorf("%w: cannot encode %s", ErrInvalid, s.Kind())
	}
	return n, nil
}

// Decode builds the shape n describes with the constructors in reg.
func Decode(n Node, reg *shape.Registry) (shape.Shape, error) {
	p := shape.Params{
		Space:    n.Coord,
		Style:    n.Style,
		Editable: n.Editable,
		Radius:   n.Radius,
		XRadius:  n.XRadius,
		YRadius:  n.YRadius,
		Rotation: n.Rotation,
		Text:     n.Text,
		FontSize: n.FontSize,
		Opaque:   n.Opaque,
	}
	for _, pt := range n.Points {
		p.Points = append(p.Points, pt.Vec())
	}
	for i, cn := range n.Children {
		c, err := Decode(cn, reg)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		p.Children = append(p.Children, c)
	}
	s, err := reg.Build(n.Kind, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return s, nil
}

// Snapshot captures the objects of cv, keeping their tags. The returned
// document has no identity; callers fill in ID and Name.
func Snapshot(cv *canvas.Canvas) (*Document, error) {
	doc := NewEmptyDocument("", "")
	if h := cv.Viewer(); h != nil {
		wd, ht := h.WindowSize()
		doc.Width, doc.Height = int(wd), int(ht)
	}
	for _, tag := range cv.Tags() {
		s, err := cv.Get(tag)
		if err != nil {
			return nil, err
		}
		n, err := Encode(s)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", tag, err)
		}
		n.Tag = tag
		doc.Objects = append(doc.Objects, n)
	}
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return doc, nil
}

// Restore replaces the objects of cv with those of doc. Every node is
// decoded before the canvas is touched, so a bad document leaves cv as it
// was.
func Restore(doc *Document, reg *shape.Registry, cv *canvas.Canvas) error {
	shapes := make([]shape.Shape, len(doc.Objects))
	seen := make(map[string]bool, len(doc.Objects))
	var errs []error
	for i, n := range doc.Objects {
		if n.Tag != "" {
			if seen[n.Tag] {
				errs = append(errs, fmt.Errorf("%w: duplicate tag %q", ErrInvalid, n.Tag))
				continue
			}
			seen[n.Tag] = true
		}
		s, err := Decode(n, reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("object %d: %w", i, err))
			continue
		}
		shapes[i] = s
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	cv.DeleteAll()
	tags := make([]string, 0, len(shapes))
	for i, s := range shapes {
		var opts []canvas.AddOption
		opts = append(opts, canvas.WithoutRedraw())
		if t := doc.Objects[i].Tag; t != "" {
			opts = append(opts, canvas.WithTag(t))
		}
		tag, err := cv.Add(s, opts...)
		if err != nil {
			return fmt.Errorf("restore object %d: %w", i, err)
		}
		tags = append(tags, tag)
	}
	cv.Touch(canvas.WhenceRelayout, tags...)
	return nil
}
