package collab

import (
	"encoding/json"

	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/render/record"
	"github.com/inamate/skycanvas/internal/shape"
)

type Message struct {
	Type     string          `json:"type"`
	CanvasID string          `json:"canvasId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync, both directions: an empty payload asks for the
	// document, a document payload replaces the canvas.
	TypeDocSync = "doc.sync"

	// Client input
	TypePointer      = "pointer"
	TypeModeSet      = "mode.set"
	TypeKindSet      = "kind.set"
	TypeObjectDelete = "object.delete"
	TypeObjectRaise  = "object.raise"
	TypeObjectLower  = "object.lower"

	// Canvas notifications
	TypeCanvasModified = "canvas.modified"
	TypeDrawEvent      = "draw.event"
	TypeEditEvent      = "edit.event"
	TypeEditSelect     = "edit.select"
	TypeRender         = "render"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Mode     string `json:"mode"`
	Kind     string `json:"kind"`
}

type ErrorPayload struct {
	Request string `json:"request"`
	Message string `json:"message"`
}

// PointerPayload is a host input event at a window position. Op is an
// input name such as "cursor-down" or "key-v".
type PointerPayload struct {
	Op       string  `json:"op"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Modifier bool    `json:"modifier,omitempty"`
}

type ModePayload struct {
	Mode string `json:"mode"`
}

// KindPayload selects the kind drawn next. Space and Style, when set,
// apply to every shape drawn from then on.
type KindPayload struct {
	Kind  string       `json:"kind"`
	Space string       `json:"space,omitempty"`
	Style *shape.Style `json:"style,omitempty"`
}

type DeletePayload struct {
	Tags []string `json:"tags"`
}

// OrderPayload moves Tag above (raise) or below (lower) Ref. An empty Ref
// means the top or bottom of the canvas.
type OrderPayload struct {
	Tag string `json:"tag"`
	Ref string `json:"ref,omitempty"`
}

type DocSyncPayload struct {
	Document *document.Document `json:"document,omitempty"`
}

type ModifiedPayload struct {
	Whence string   `json:"whence"`
	Tags   []string `json:"tags"`
}

type TagsPayload struct {
	Tags []string `json:"tags"`
}

type RenderPayload struct {
	Commands []record.DrawCommand `json:"commands"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
