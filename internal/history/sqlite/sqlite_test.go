package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mpsh/internal/history"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	entries := []history.Entry{
		{Line: "open", Status: "ok", TS: base},
		{Line: "ls", Status: "ok", TS: base.Add(time.Second)},
		{Line: "bogus", Status: "error", ErrorCode: "unknown_command", TS: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save %q: %v", e.Line, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Новые записи первыми.
	if got[0].Line != "bogus" || got[2].Line != "open" {
		t.Fatalf("order: %q %q %q", got[0].Line, got[1].Line, got[2].Line)
	}
	if got[0].Status != "error" || got[0].ErrorCode != "unknown_command" {
		t.Fatalf("entry: %+v", got[0])
	}
	if !got[0].TS.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("ts = %v", got[0].TS)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := history.Entry{Line: "ls", Status: "ok", TS: time.Now().UTC().Add(time.Duration(i) * time.Second)}
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
}

func TestSaveFillsTimestamp(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, history.Entry{Line: "pwd", Status: "ok"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].TS.IsZero() {
		t.Fatalf("entries: %+v", got)
	}
}

func TestParseSQLiteTS(t *testing.T) {
	tests := []string{
		"2026-08-30T10:00:00Z",
		"2026-08-30 10:00:00.123456789-07:00",
		"2026-08-30 10:00:00",
	}
	for _, v := range tests {
		if _, err := parseSQLiteTS(v); err != nil {
			t.Fatalf("parseSQLiteTS(%q): %v", v, err)
		}
	}
	if _, err := parseSQLiteTS("yesterday"); err == nil {
		t.Fatalf("expected error for bad timestamp")
	}
}
