package interact

import "github.com/inamate/skycanvas/internal/shape"

// EventType identifies a controller notification.
type EventType uint8

const (
	// EventDraw follows a committed draw with the new tag.
	EventDraw EventType = iota
	// EventEdit follows the end of an edit gesture with the edited tags.
	EventEdit
	// EventSelect carries the whole selection after it changes.
	EventSelect
)

func (t EventType) String() string {
	switch t {
	case EventDraw:
		return "draw-event"
	case EventEdit:
		return "edit-event"
	case EventSelect:
		return "edit-select"
	}
	return "unknown"
}

// Event is delivered to controller subscribers.
type Event struct {
	Type   EventType
	Tags   []string
	Shapes []shape.Shape
}
