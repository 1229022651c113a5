package canvas

import (
	"errors"

	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/shape"
)

// ErrTagNotFound is returned when no object carries the requested tag.
var ErrTagNotFound = errors.New("tag not found")

// Whence says how much of the display a change invalidates. Lower values
// are more severe; a viewer redrawing at some whence also covers every
// larger one.
type Whence int

const (
	// WhenceRelayout: the data or the viewer geometry changed.
	WhenceRelayout Whence = iota
	// WhenceTransform: zoom, pan or rotation changed.
	WhenceTransform
	// WhenceRecolor: colour mapping changed.
	WhenceRecolor
	// WhenceRepaint: only overlay objects changed.
	WhenceRepaint
)

func (w Whence) String() string {
	switch w {
	case WhenceRelayout:
		return "relayout"
	case WhenceTransform:
		return "transform"
	case WhenceRecolor:
		return "recolor"
	case WhenceRepaint:
		return "repaint"
	}
	return "unknown"
}

// EventType identifies a canvas notification.
type EventType uint8

const (
	// EventModified follows every structural change.
	EventModified EventType = iota
	// EventDeleted lists the objects that just left the canvas. It is
	// delivered before the matching EventModified.
	EventDeleted
)

// Event is delivered to subscribers.
type Event struct {
	Type   EventType
	Whence Whence
	Tags   []string
	// Shapes holds the deleted objects for EventDeleted.
	Shapes []shape.Shape
}

// Subscription removes a registered handler. Remove is safe to call more
// than once.
type Subscription = notify.Handle

// On registers fn for events of type t.
func (c *Canvas) On(t EventType, fn func(Event)) Subscription {
	return c.subs.On(t, fn)
}
