package sink

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteAppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")

	s, err := NewSQLite(path, "Jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.EnsureHeader(ctx, []string{"Job_ID", "Title", "Score"}); err != nil {
		t.Fatalf("ensure header: %v", err)
	}
	// Second call must not duplicate the header.
	if err := s.EnsureHeader(ctx, []string{"Job_ID", "Title", "Score"}); err != nil {
		t.Fatalf("ensure header: %v", err)
	}

	res, err := s.Append(ctx, []any{"101", "Go Engineer", 85}, []int{0})
	if err != nil || !res.Accepted {
		t.Fatalf("expected accepted append, got %+v (%v)", res, err)
	}

	res, err = s.Append(ctx, []any{"101", "Go Engineer again", 90}, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Accepted || res.Message == "" {
		t.Fatalf("expected duplicate to be rejected with a message, got %+v", res)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path, "Jobs")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	rows, err := reopened.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	if rows[0][0] != "Job_ID" || rows[1][0] != "101" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	// JSON numbers come back as float64.
	if rows[1][2] != 85.0 {
		t.Fatalf("unexpected score cell: %#v", rows[1][2])
	}
}

func TestSQLiteInvalidTable(t *testing.T) {
	if _, err := NewSQLite(filepath.Join(t.TempDir(), "x.db"), "Jobs; DROP"); err == nil {
		t.Fatalf("expected invalid table name error")
	}
}

func TestSQLiteClosedFails(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "jobs.db"), "Jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	if _, err := s.Append(context.Background(), []any{"1"}, []int{0}); !errors.Is(err, ErrSink) {
		t.Fatalf("expected ErrSink, got %v", err)
	}
}
