package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/shape"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan %d values into %d targets", len(r.vals), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int32:
			*p = r.vals[i].(int32)
		case *[]byte:
			*p = r.vals[i].([]byte)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

type fakeDB struct {
	execs []string
	rows  []pgx.Row
	args  [][]any
}

func (db *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.args = append(db.args, args)
	if len(db.rows) == 0 {
		return fakeRow{err: errors.New("unexpected query")}
	}
	r := db.rows[0]
	db.rows = db.rows[1:]
	return r
}

var stamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleDoc() *document.Document {
	doc := document.NewEmptyDocument("cnv_a", "field")
	doc.Objects = []document.Node{{Tag: "c", Kind: shape.KindCircle, Points: []document.Point{{1, 2}}, Radius: 3}}
	return doc
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{}
	if err := New(db).Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "canvas_snapshots") {
		t.Errorf("Migrate() ran %q, want the canvas_snapshots schema", db.execs)
	}
}

func TestSave(t *testing.T) {
	db := &fakeDB{rows: []pgx.Row{fakeRow{vals: []any{int32(3), stamp}}}}
	snap, err := New(db).Save(context.Background(), "cnv_a", sampleDoc())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if snap.Version != 3 || !snap.CreatedAt.Equal(stamp) {
		t.Errorf("Save() = version %d at %v, want 3 at %v", snap.Version, snap.CreatedAt, stamp)
	}
	if !strings.HasPrefix(snap.ID, "snap_") {
		t.Errorf("snapshot ID = %q, want snap_ prefix", snap.ID)
	}
	args := db.args[0]
	if args[1] != "cnv_a" {
		t.Errorf("canvas arg = %v, want cnv_a", args[1])
	}
	stored, err := document.Parse(args[2].([]byte))
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Objects) != 1 || stored.Objects[0].Tag != "c" {
		t.Errorf("stored objects = %+v, want circle c", stored.Objects)
	}
}

func TestSaveRetriesVersionConflict(t *testing.T) {
	conflict := &pgconn.PgError{Code: "23505"}
	db := &fakeDB{rows: []pgx.Row{
		fakeRow{err: conflict},
		fakeRow{vals: []any{int32(2), stamp}},
	}}
	snap, err := New(db).Save(context.Background(), "cnv_a", sampleDoc())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("Save() version = %d, want 2", snap.Version)
	}
	if db.args[0][0] == db.args[1][0] {
		t.Error("retry reused the snapshot ID")
	}

	db = &fakeDB{rows: []pgx.Row{fakeRow{err: conflict}, fakeRow{err: conflict}}}
	if _, err := New(db).Save(context.Background(), "cnv_a", sampleDoc()); !errors.As(err, &conflict) {
		t.Errorf("Save() error = %v, want the second conflict", err)
	}
}

func TestLatest(t *testing.T) {
	data, err := sampleDoc().JSON()
	if err != nil {
		t.Fatal(err)
	}
	db := &fakeDB{rows: []pgx.Row{fakeRow{vals: []any{"snap_1", int32(4), data, stamp}}}}
	snap, err := New(db).Latest(context.Background(), "cnv_a")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if snap.ID != "snap_1" || snap.Version != 4 || snap.Document.Name != "field" {
		t.Errorf("Latest() = %+v, want snap_1 v4 of field", snap)
	}
}

func TestLatestErrors(t *testing.T) {
	tests := []struct {
		name string
		row  fakeRow
		want error
	}{
		{"missing", fakeRow{err: pgx.ErrNoRows}, ErrNotFound},
		{"corrupt", fakeRow{vals: []any{"snap_1", int32(1), []byte(`{"version":99}`), stamp}}, document.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{rows: []pgx.Row{tt.row}}
			if _, err := New(db).Latest(context.Background(), "cnv_a"); !errors.Is(err, tt.want) {
				t.Errorf("Latest() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadUnsavedCanvas(t *testing.T) {
	db := &fakeDB{rows: []pgx.Row{fakeRow{err: pgx.ErrNoRows}}}
	doc, err := New(db).Load(context.Background(), "cnv_new")
	if doc != nil || err != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", doc, err)
	}
}
