package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/nse-data/internal/fault"
)

// fakeQuerier scripts the two statements BumpLatestPointer issues.
type fakeQuerier struct {
	updateTag pgconn.CommandTag
	ahead     bool
}

func (f *fakeQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return f.updateTag, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return boolRow(f.ahead)
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

type boolRow bool

func (b boolRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = bool(b)
	return nil
}

func TestBumpLatestPointerMovesForward(t *testing.T) {
	l := New(Config{}, nil, nil)
	q := &fakeQuerier{updateTag: pgconn.NewCommandTag("UPDATE 1")}

	moved, err := l.BumpLatestPointer(context.Background(), q, uuid.New(), uuid.New(), time.Now().UTC(), 5)
	if err != nil {
		t.Fatalf("BumpLatestPointer returned error: %v", err)
	}
	if !moved {
		t.Error("moved = false, want true when the update takes effect")
	}
}

func TestBumpLatestPointerSkipsWhenCurrentIsAhead(t *testing.T) {
	// An ingested tick dated ahead of the clock outranks the new tick; the
	// guard matches nothing and that must not be treated as a failure.
	l := New(Config{}, nil, nil)
	q := &fakeQuerier{updateTag: pgconn.NewCommandTag("UPDATE 0"), ahead: true}

	moved, err := l.BumpLatestPointer(context.Background(), q, uuid.New(), uuid.New(), time.Now().UTC(), 5)
	if err != nil {
		t.Fatalf("BumpLatestPointer returned error: %v", err)
	}
	if moved {
		t.Error("moved = true, want false when the current latest outranks the tick")
	}
}

func TestBumpLatestPointerStalePointerIsConsistencyFault(t *testing.T) {
	l := New(Config{}, nil, nil)
	q := &fakeQuerier{updateTag: pgconn.NewCommandTag("UPDATE 0"), ahead: false}

	_, err := l.BumpLatestPointer(context.Background(), q, uuid.New(), uuid.New(), time.Now().UTC(), 5)
	if !fault.IsConsistency(err) {
		t.Errorf("err = %v, want consistency fault when the pointer resolves nowhere", err)
	}
}
