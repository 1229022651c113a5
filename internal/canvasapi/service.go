// Package canvasapi serves canvas documents over HTTP: the live document
// of an open room, stored snapshots and PNG renders.
package canvasapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/skycanvas/internal/canvas"
	"github.com/inamate/skycanvas/internal/collab"
	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/store"
	"github.com/inamate/skycanvas/internal/typeid"
)

var (
	ErrNotFound  = errors.New("canvas not found")
	ErrNoStorage = errors.New("persistence disabled")
)

// Live runs fn against the open session of a canvas; *collab.Hub
// implements it.
type Live interface {
	WithSession(ctx context.Context, canvasID string, fn func(*collab.Session)) (bool, error)
}

// Snapshots is the persistence the service needs; *store.Store implements
// it.
type Snapshots interface {
	Latest(ctx context.Context, canvasID string) (*store.Snapshot, error)
	Save(ctx context.Context, canvasID string, doc *document.Document) (*store.Snapshot, error)
}

type Service struct {
	live  Live
	snaps Snapshots
}

// NewService returns a service over live rooms. A nil snaps serves live
// canvases only.
func NewService(live Live, snaps Snapshots) *Service {
	return &Service{live: live, snaps: snaps}
}

// liveDocument snapshots the open session of canvasID. It reports false
// when no room is open.
func (s *Service) liveDocument(ctx context.Context, canvasID string) (*document.Document, bool, error) {
	var (
		doc    *document.Document
		docErr error
	)
	found, err := s.live.WithSession(ctx, canvasID, func(sess *collab.Session) {
		doc, docErr = sess.Document()
	})
	if err != nil {
		return nil, false, fmt.Errorf("live session: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	if docErr != nil {
		return nil, true, fmt.Errorf("snapshot live canvas: %w", docErr)
	}
	return doc, true, nil
}

// Document returns the live document of canvasID when a room is open, or
// else the newest stored snapshot.
func (s *Service) Document(ctx context.Context, canvasID string) (*document.Document, error) {
	doc, found, err := s.liveDocument(ctx, canvasID)
	if found || err != nil {
		return doc, err
	}
	if s.snaps == nil {
		return nil, ErrNotFound
	}
	snap, err := s.snaps.Latest(ctx, canvasID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snap.Document, nil
}

// SaveSnapshot stores the live document of canvasID as a new version.
func (s *Service) SaveSnapshot(ctx context.Context, canvasID string) (*store.Snapshot, error) {
	if s.snaps == nil {
		return nil, ErrNoStorage
	}
	doc, found, err := s.liveDocument(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return s.snaps.Save(ctx, canvasID, doc)
}

// ImportResult describes where an imported document went.
type ImportResult struct {
	CanvasID string `json:"canvasId"`
	// Live is set when the document replaced an open room's canvas.
	Live    bool `json:"live"`
	Version int  `json:"version,omitempty"`
	Objects int  `json:"objects"`
}

// Import replaces the live canvas of canvasID with doc, or stores doc as a
// new snapshot when no room is open.
func (s *Service) Import(ctx context.Context, canvasID string, doc *document.Document) (*ImportResult, error) {
	res := &ImportResult{CanvasID: canvasID, Objects: len(doc.Objects)}
	var loadErr error
	found, err := s.live.WithSession(ctx, canvasID, func(sess *collab.Session) {
		loadErr = sess.Load(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("live session: %w", err)
	}
	if found {
		if loadErr != nil {
			return nil, loadErr
		}
		res.Live = true
		return res, nil
	}
	if s.snaps == nil {
		return nil, ErrNotFound
	}
	// Check the document decodes before it is stored.
	if err := document.Restore(doc, shape.NewRegistry(), canvas.New()); err != nil {
		return nil, err
	}
	doc.ID = canvasID
	snap, err := s.snaps.Save(ctx, canvasID, doc)
	if err != nil {
		return nil, err
	}
	res.Version = snap.Version
	return res, nil
}

// Create starts a new canvas, empty or holding the sample field, and
// stores it as version 1 when persistence is enabled.
func (s *Service) Create(ctx context.Context, name string, sample bool) (*document.Document, error) {
	id := typeid.NewCanvasID()
	doc := document.NewEmptyDocument(id, name)
	if sample {
		doc = document.NewSampleDocument(id)
		if name != "" {
			doc.Name = name
		}
	}
	if s.snaps == nil {
		return doc, nil
	}
	if _, err := s.snaps.Save(ctx, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
