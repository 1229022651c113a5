// Package store keeps versioned canvas documents in Postgres. Every save
// appends a snapshot; loading a canvas reads its newest one.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/typeid"
)

var ErrNotFound = errors.New("snapshot not found")

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS canvas_snapshots (
	id         TEXT PRIMARY KEY,
	canvas_id  TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (canvas_id, version)
)`

const insertSnapshot = `
INSERT INTO canvas_snapshots (id, canvas_id, version, document)
SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3
FROM canvas_snapshots WHERE canvas_id = $2
RETURNING version, created_at`

const latestSnapshot = `
SELECT id, version, document, created_at
FROM canvas_snapshots WHERE canvas_id = $1
ORDER BY version DESC LIMIT 1`

// NewPool connects to databaseURL and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type Snapshot struct {
	ID        string             `json:"id"`
	CanvasID  string             `json:"canvasId"`
	Version   int                `json:"version"`
	Document  *document.Document `json:"document"`
	CreatedAt time.Time          `json:"createdAt"`
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

// Migrate creates the snapshot table if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Save appends doc as the next version of canvasID.
func (s *Store) Save(ctx context.Context, canvasID string, doc *document.Document) (*Snapshot, error) {
	data, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	snap := &Snapshot{CanvasID: canvasID, Document: doc}
	// Two writers can race for the same version; the loser retries once
	// against the new maximum.
	for attempt := 0; ; attempt++ {
		snap.ID = typeid.NewSnapshotID()
		var version int32
		err = s.db.QueryRow(ctx, insertSnapshot, snap.ID, canvasID, data).Scan(&version, &snap.CreatedAt)
		if err == nil {
			snap.Version = int(version)
			return snap, nil
		}
		if !isDuplicateKeyError(err) || attempt > 0 {
			return nil, fmt.Errorf("create snapshot: %w", err)
		}
	}
}

// Latest returns the newest snapshot of canvasID, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, canvasID string) (*Snapshot, error) {
	snap := &Snapshot{CanvasID: canvasID}
	var (
		version int32
		data    []byte
	)
	err := s.db.QueryRow(ctx, latestSnapshot, canvasID).Scan(&snap.ID, &version, &data, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	snap.Version = int(version)
	snap.Document = doc
	return snap, nil
}

// Load returns the newest document of canvasID, or nil for a canvas that
// was never saved. It has the shape of a collab.Loader.
func (s *Store) Load(ctx context.Context, canvasID string) (*document.Document, error) {
	snap, err := s.Latest(ctx, canvasID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Document, nil
}

// Put saves doc and discards the snapshot metadata. It has the shape of a
// collab.Saver.
func (s *Store) Put(ctx context.Context, canvasID string, doc *document.Document) error {
	_, err := s.Save(ctx, canvasID, doc)
	return err
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
