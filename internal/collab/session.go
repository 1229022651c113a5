package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/interact"
	"github.com/inamate/skycanvas/internal/notify"
	"github.com/inamate/skycanvas/internal/render/record"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

// ErrUnknownRequest is returned for message types a session does not handle.
var ErrUnknownRequest = errors.New("unknown request")

// Session is the live canvas of one room: the canvas, its viewer and
// controller, and the notifications waiting to go out. It is owned by the
// hub goroutine and is not safe for concurrent use.
type Session struct {
	canvasID string
	name     string
	reg      *shape.Registry
	cv       *canvas.Canvas
	view     *viewer.Viewer
	rec      record.Recorder

	// wcs is the header the solver was built from, kept for snapshots.
	wcs map[string]float64

	pending []*Message
	subs    []notify.Handle
	dirty   bool
}

// NewSession builds a session showing doc. A nil doc starts empty.
func NewSession(canvasID string, reg *shape.Registry, opts viewer.Options, doc *document.Document) (*Session, error) {
	s := &Session{canvasID: canvasID, reg: reg, cv: canvas.New()}
	if doc != nil {
		s.name = doc.Name
		if doc.Width > 0 && doc.Height > 0 {
			opts.Width, opts.Height = float64(doc.Width), float64(doc.Height)
		}
		solver, err := doc.Solver()
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", canvasID, err)
		}
		opts.Solver, s.wcs = solver, doc.WCS
		if err := document.Restore(doc, reg, s.cv); err != nil {
			return nil, fmt.Errorf("restore %s: %w", canvasID, err)
		}
	}
	v, err := viewer.New(s.cv, reg, opts)
	if err != nil {
		return nil, err
	}
	s.view = v
	ctrl := v.Controller()

	s.subs = append(s.subs,
		s.cv.On(canvas.EventModified, func(ev canvas.Event) {
			s.dirty = true
			s.queue(TypeCanvasModified, ModifiedPayload{Whence: ev.Whence.String(), Tags: ev.Tags})
		}),
		ctrl.On(interact.EventDraw, func(ev interact.Event) {
			s.queue(TypeDrawEvent, TagsPayload{Tags: ev.Tags})
		}),
		ctrl.On(interact.EventEdit, func(ev interact.Event) {
			s.queue(TypeEditEvent, TagsPayload{Tags: ev.Tags})
		}),
		ctrl.On(interact.EventSelect, func(ev interact.Event) {
			s.queue(TypeEditSelect, TagsPayload{Tags: ev.Tags})
		}),
	)
	return s, nil
}

// Close releases the canvas subscriptions.
func (s *Session) Close() {
	for _, h := range s.subs {
		h.Remove()
	}
	s.subs = nil
	s.view.Close()
}

func (s *Session) Canvas() *canvas.Canvas { return s.cv }
func (s *Session) Viewer() *viewer.Viewer { return s.view }

// Dirty reports whether the canvas changed since the last MarkSaved.
func (s *Session) Dirty() bool { return s.dirty }

// MarkSaved clears the unsaved-changes flag.
func (s *Session) MarkSaved() { s.dirty = false }

func (s *Session) queue(typ string, payload any) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		slog.Error("marshal notification", "type", typ, "error", err)
		return
	}
	msg.CanvasID = s.canvasID
	s.pending = append(s.pending, msg)
}

// Document snapshots the canvas.
func (s *Session) Document() (*document.Document, error) {
	doc, err := document.Snapshot(s.cv)
	if err != nil {
		return nil, err
	}
	doc.ID, doc.Name, doc.WCS = s.canvasID, s.name, s.wcs
	return doc, nil
}

// Load replaces the canvas contents with doc. On error the canvas is left
// as it was.
func (s *Session) Load(doc *document.Document) error {
	solver, err := doc.Solver()
	if err != nil {
		return err
	}
	if err := document.Restore(doc, s.reg, s.cv); err != nil {
		return err
	}
	s.wcs = doc.WCS
	s.view.SetSolver(solver)
	if doc.Name != "" {
		s.name = doc.Name
	}
	return nil
}

// Welcome describes the session for a newly joined client.
func (s *Session) Welcome(c *Client) (*Message, error) {
	ctrl := s.view.Controller()
	return newMessage(TypeWelcome, WelcomePayload{
		ClientID: c.ClientID,
		UserID:   c.UserID,
		Mode:     string(ctrl.Mode()),
		Kind:     ctrl.DrawKind().String(),
	})
}

// DocSync returns the current document as a doc.sync message.
func (s *Session) DocSync() (*Message, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return newMessage(TypeDocSync, DocSyncPayload{Document: doc})
}

// Handle applies one client request. The reply, if any, goes to the
// sender only; everything else is queued for Flush.
func (s *Session) Handle(msg *Message) (*Message, error) {
	ctrl := s.view.Controller()
	switch msg.Type {
	case TypePointer:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid pointer payload: %w", err)
		}
		bound, err := s.view.Input(p.Op, vec.Vec2{X: p.X, Y: p.Y}, p.Modifier)
		if err != nil {
			return nil, err
		}
		if !bound {
			return nil, fmt.Errorf("%w: input %q is not bound", ErrUnknownRequest, p.Op)
		}
		return nil, nil

	case TypeModeSet:
		var p ModePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid mode payload: %w", err)
		}
		return nil, ctrl.SetMode(interact.Mode(p.Mode))

	case TypeKindSet:
		var p KindPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid kind payload: %w", err)
		}
		k, err := shape.ParseKind(p.Kind)
		if err != nil {
			return nil, err
		}
		params := ctrl.Options().DrawParams
		if p.Space != "" {
			if params.Space, err = coord.ParseSpace(p.Space); err != nil {
				return nil, err
			}
		}
		if p.Style != nil {
			params.Style = *p.Style
		}
		if err := ctrl.SetDrawKind(k); err != nil {
			return nil, err
		}
		ctrl.SetDrawParams(params)
		return nil, nil

	case TypeObjectDelete:
		var p DeletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid delete payload: %w", err)
		}
		s.cv.DeleteByTags(p.Tags)
		return nil, nil

	case TypeObjectRaise, TypeObjectLower:
		var p OrderPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid order payload: %w", err)
		}
		if msg.Type == TypeObjectRaise {
			return nil, s.cv.RaiseByTag(p.Tag, p.Ref)
		}
		return nil, s.cv.LowerByTag(p.Tag, p.Ref)

	case TypeDocSync:
		var p DocSyncPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return nil, fmt.Errorf("invalid doc payload: %w", err)
			}
		}
		if p.Document == nil {
			return s.DocSync()
		}
		return nil, s.Load(p.Document)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, msg.Type)
}

// Flush returns the queued notifications followed by a render message when
// the viewer needs repainting.
func (s *Session) Flush() []*Message {
	out := s.pending
	s.pending = nil
	if dirty, _ := s.view.Dirty(); !dirty {
		return out
	}
	if msg, err := s.Render(); err != nil {
		slog.Warn("render failed", "canvas", s.canvasID, "error", err)
	} else {
		out = append(out, msg)
	}
	return out
}

// Render draws the canvas into a render message.
func (s *Session) Render() (*Message, error) {
	s.rec.Reset()
	if err := s.view.Render(&s.rec); err != nil {
		return nil, err
	}
	msg, err := newMessage(TypeRender, RenderPayload{Commands: s.rec.Commands})
	if err != nil {
		return nil, err
	}
	msg.CanvasID = s.canvasID
	return msg, nil
}
