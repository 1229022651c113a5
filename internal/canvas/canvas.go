// Package canvas provides the tag-addressable top-level container a viewer
// draws. Every shape added to a Canvas gets a unique tag; structural changes
// are announced to subscribers and to the owning viewer.
//
// A Canvas is not safe for concurrent use. Hosts with more than one event
// source serialize access through a single goroutine.
package canvas

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/shape"
)

// AutoTagSigil starts every generated tag. Caller prefixes may not use it.
const AutoTagSigil = "@"

// Host is the viewer a canvas is displayed in.
type Host interface {
	coord.Viewer
	// MapperFor returns the viewer's mapper for space.
	MapperFor(space coord.Space) (coord.Mapper, error)
	// Redraw schedules a redraw at the given severity.
	Redraw(whence Whence)
}

// Canvas is a tagged container of shapes.
type Canvas struct {
	root  *shape.Compound
	byTag map[string]shape.Shape
	tagOf map[shape.Shape]string
	// serial is the last counter used for a generated tag.
	serial int

	host Host
	subs notify.Registry[EventType, Event]
}

// New returns an empty canvas not yet shown in any viewer.
func New() *Canvas {
	c := &Canvas{
		byTag: make(map[string]shape.Shape),
		tagOf: make(map[shape.Shape]string),
	}
	c.root, _ = shape.NewCompound()
	// The root is fresh, so attaching cannot fail.
	_ = c.root.Base().Attach(c)
	return c
}

// Root returns the compound holding the canvas objects. Mutating it
// directly bypasses the tag registry.
func (c *Canvas) Root() *shape.Compound { return c.root }

// SetViewer binds the canvas to h. Pass nil to unbind.
func (c *Canvas) SetViewer(h Host) {
	c.host = h
	c.redraw(WhenceRelayout)
}

// Viewer returns the bound host, or nil.
func (c *Canvas) Viewer() Host { return c.host }

// MapperFor resolves mappers for the canvas objects through the viewer.
// Without a viewer only data space is available, as the identity.
func (c *Canvas) MapperFor(space coord.Space) (coord.Mapper, error) {
	if c.host == nil {
		if space == "" || space == coord.SpaceData {
			return coord.DataMapper{}, nil
		}
		return nil, fmt.Errorf("%w: %s space needs a viewer", shape.ErrDetached, space)
	}
	return c.host.MapperFor(space)
}

type addConfig struct {
	tag    string
	prefix string
	before string
	quiet  bool
}

// AddOption configures Add.
type AddOption func(*addConfig)

// WithTag uses tag instead of generating one. A tag already in use is an
// error.
func WithTag(tag string) AddOption { return func(a *addConfig) { a.tag = tag } }

// WithTagPrefix generates the tag as prefix followed by a counter.
func WithTagPrefix(prefix string) AddOption { return func(a *addConfig) { a.prefix = prefix } }

// Before inserts the shape directly below the object tagged tag.
func Before(tag string) AddOption { return func(a *addConfig) { a.before = tag } }

// WithoutRedraw suppresses the viewer redraw. Subscribers are still told.
func WithoutRedraw() AddOption { return func(a *addConfig) { a.quiet = true } }

// Add inserts s on top of the canvas, or below the Before sibling, and
// returns its tag. On error the canvas is unchanged.
func (c *Canvas) Add(s shape.Shape, opts ...AddOption) (string, error) {
	var cfg addConfig
	for _, o := range opts {
		o(&cfg)
	}
	if s == nil {
		return "", fmt.Errorf("%w: nil shape", shape.ErrConfiguration)
	}
	if t, ok := c.tagOf[s]; ok {
		return "", fmt.Errorf("%w: shape already on canvas as %q", shape.ErrConfiguration, t)
	}

	tag, serial, err := c.nextTag(cfg)
	if err != nil {
		return "", err
	}
	var sibling shape.Shape
	if cfg.before != "" {
		sib, ok := c.byTag[cfg.before]
		if !ok {
			return "", fmt.Errorf("%w: sibling %q: %w", shape.ErrConfiguration, cfg.before, ErrTagNotFound)
		}
		sibling = sib
	}
	if err := c.root.AddChild(s, sibling); err != nil {
		return "", err
	}

	c.serial = serial
	c.byTag[tag] = s
	c.tagOf[s] = tag
	logger().Debug("object added", "tag", tag, "kind", s.Kind())

	c.modified(WhenceRepaint, []string{tag}, !cfg.quiet)
	return tag, nil
}

// nextTag picks the tag for an insert without committing the counter.
func (c *Canvas) nextTag(cfg addConfig) (string, int, error) {
	if cfg.tag != "" {
		if _, ok := c.byTag[cfg.tag]; ok {
			return "", 0, fmt.Errorf("%w: tag %q already in use", shape.ErrConfiguration, cfg.tag)
		}
		return cfg.tag, c.serial, nil
	}
	prefix := AutoTagSigil
	if cfg.prefix != "" {
		if strings.HasPrefix(cfg.prefix, AutoTagSigil) {
			return "", 0, fmt.Errorf("%w: tag prefix %q uses the reserved %q", shape.ErrConfiguration, cfg.prefix, AutoTagSigil)
		}
		prefix = cfg.prefix
	}
	n := c.serial
	for {
		n++
		tag := prefix + strconv.Itoa(n)
		if _, ok := c.byTag[tag]; !ok {
			return tag, n, nil
		}
	}
}

// Get returns the object tagged tag.
func (c *Canvas) Get(tag string) (shape.Shape, error) {
	s, ok := c.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTagNotFound, tag)
	}
	return s, nil
}

// Has reports whether tag is in use.
func (c *Canvas) Has(tag string) bool {
	_, ok := c.byTag[tag]
	return ok
}

// TagOf returns the tag of a top-level object.
func (c *Canvas) TagOf(s shape.Shape) (string, bool) {
	t, ok := c.tagOf[s]
	return t, ok
}

// Tags returns all tags bottom to top.
func (c *Canvas) Tags() []string {
	objs := c.root.Children()
	tags := make([]string, 0, len(objs))
	for _, s := range objs {
		tags = append(tags, c.tagOf[s])
	}
	return tags
}

// Objects returns all objects bottom to top.
func (c *Canvas) Objects() []shape.Shape { return c.root.Children() }

// Len returns the number of objects.
func (c *Canvas) Len() int { return len(c.byTag) }

// Index returns the z-position of the object tagged tag, or -1.
func (c *Canvas) Index(tag string) int {
	s, ok := c.byTag[tag]
	if !ok {
		return -1
	}
	return c.root.Index(s)
}

// DeleteByTag deletes the object tagged tag. Deleting a compound cascades
// through its subtree.
func (c *Canvas) DeleteByTag(tag string) error {
	if _, ok := c.byTag[tag]; !ok {
		return fmt.Errorf("%w: %q", ErrTagNotFound, tag)
	}
	c.delete([]string{tag})
	return nil
}

// DeleteByTags deletes every listed object that exists and skips the rest.
// It returns the number deleted.
func (c *Canvas) DeleteByTags(tags []string) int {
	var found []string
	for _, t := range tags {
		if _, ok := c.byTag[t]; ok && !slices.Contains(found, t) {
			found = append(found, t)
		}
	}
	if len(found) > 0 {
		c.delete(found)
	}
	return len(found)
}

// DeleteObject deletes s by identity.
func (c *Canvas) DeleteObject(s shape.Shape) error {
	t, ok := c.tagOf[s]
	if !ok {
		return fmt.Errorf("%w: object is not on the canvas", ErrTagNotFound)
	}
	c.delete([]string{t})
	return nil
}

// DeleteAll empties the canvas.
func (c *Canvas) DeleteAll() {
	if tags := c.Tags(); len(tags) > 0 {
		c.delete(tags)
	}
}

func (c *Canvas) delete(tags []string) {
	shapes := make([]shape.Shape, 0, len(tags))
	for _, t := range tags {
		s := c.byTag[t]
		if err := c.root.DeleteChild(s); err != nil {
			logger().Warn("registry out of step with root", "tag", t, "err", err)
		}
		delete(c.byTag, t)
		delete(c.tagOf, s)
		shapes = append(shapes, s)
	}
	logger().Debug("objects deleted", "tags", tags)
	c.subs.Emit(EventDeleted, Event{Type: EventDeleted, Whence: WhenceRepaint, Tags: tags, Shapes: shapes})
	c.modified(WhenceRepaint, tags, true)
}

// RaiseByTag moves the object to the top, or directly above aboveTag when
// it is not empty.
func (c *Canvas) RaiseByTag(tag, aboveTag string) error {
	s, ref, err := c.pair(tag, aboveTag)
	if err != nil {
		return err
	}
	if err := c.root.RaiseChild(s, ref); err != nil {
		return err
	}
	c.modified(WhenceRepaint, []string{tag}, true)
	return nil
}

// LowerByTag moves the object to the bottom, or directly below belowTag
// when it is not empty.
func (c *Canvas) LowerByTag(tag, belowTag string) error {
	s, ref, err := c.pair(tag, belowTag)
	if err != nil {
		return err
	}
	if err := c.root.LowerChild(s, ref); err != nil {
		return err
	}
	c.modified(WhenceRepaint, []string{tag}, true)
	return nil
}

func (c *Canvas) pair(tag, refTag string) (shape.Shape, shape.Shape, error) {
	s, err := c.Get(tag)
	if err != nil {
		return nil, nil, err
	}
	if refTag == "" {
		return s, nil, nil
	}
	ref, ok := c.byTag[refTag]
	if !ok {
		return nil, nil, fmt.Errorf("%w: reference %q: %w", shape.ErrConfiguration, refTag, ErrTagNotFound)
	}
	return s, ref, nil
}

// Touch reports an in-place change to the listed objects, such as an edit
// drag, so subscribers and the viewer can catch up.
func (c *Canvas) Touch(whence Whence, tags ...string) {
	c.modified(whence, tags, true)
}

// GetItemsAt returns the objects whose exact geometry contains p.
func (c *Canvas) GetItemsAt(p vec.Vec2) []shape.Shape { return c.root.GetItemsAt(p) }

// Mask reports for every point of pts, in data coordinates, whether an
// object's exact geometry contains it. With tags, only those objects count.
func (c *Canvas) Mask(pts []vec.Vec2, tags ...string) ([]bool, error) {
	if len(tags) == 0 {
		return shape.ContainsPoints(c.root, pts)
	}
	mask := make([]bool, len(pts))
	for _, tag := range tags {
		s, err := c.Get(tag)
		if err != nil {
			return nil, err
		}
		sub, err := shape.ContainsPoints(s, pts)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", tag, err)
		}
		for i, hit := range sub {
			mask[i] = mask[i] || hit
		}
	}
	return mask, nil
}

// SelectItemsAt returns the objects within pick tolerance of p, as seen in
// the bound viewer.
func (c *Canvas) SelectItemsAt(p vec.Vec2, pred func(shape.Shape) bool) []shape.Shape {
	var v coord.Viewer
	if c.host != nil {
		v = c.host
	}
	return c.root.SelectItemsAt(v, p, pred)
}

// SelectObjectsAt is SelectItemsAt over the top-level objects only, each
// tested as a unit.
func (c *Canvas) SelectObjectsAt(p vec.Vec2, pred func(shape.Shape) bool) []shape.Shape {
	var v coord.Viewer
	if c.host != nil {
		v = c.host
	}
	return c.root.SelectChildrenAt(v, p, pred)
}

// LLUR returns the union of the objects' boxes.
func (c *Canvas) LLUR() (rect.Rect, error) { return c.root.LLUR() }

// Draw renders every object bottom to top through the bound viewer.
func (c *Canvas) Draw(r shape.Renderer) error {
	var v coord.Viewer
	if c.host != nil {
		v = c.host
	}
	return c.root.Draw(r, v)
}

func (c *Canvas) modified(whence Whence, tags []string, redraw bool) {
	c.subs.Emit(EventModified, Event{Type: EventModified, Whence: whence, Tags: tags})
	if redraw {
		c.redraw(whence)
	}
}

func (c *Canvas) redraw(whence Whence) {
	if c.host != nil {
		c.host.Redraw(whence)
	}
}
