package history_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"momo/pkg/history"
	"momo/pkg/runner"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func outcome(id, test string, status runner.Status, started time.Time) runner.Outcome {
	return runner.Outcome{
		RunID:     id,
		Test:      test,
		Status:    status,
		ExitCode:  0,
		LogPath:   "/tmp/" + id + ".log",
		Lines:     3,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	}
}

// TestStore_RecordAndRecent verifies the insert/query round trip and the
// newest-first ordering.
func TestStore_RecordAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	runs := []runner.Outcome{
		outcome("r1", "RAM Usage", runner.StatusCompleted, base),
		outcome("r2", "Ping Test", runner.StatusCancelled, base.Add(time.Minute)),
		outcome("r3", "Memtester 512M", runner.StatusToolMissing, base.Add(2*time.Minute)),
	}
	for _, o := range runs {
		if err := s.Record(ctx, o); err != nil {
			t.Fatalf("Record(%s) returned error: %v", o.RunID, err)
		}
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].ID != "r3" || entries[2].ID != "r1" {
		t.Errorf("entries not newest-first: %s, %s, %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	got := entries[2]
	if got.TestName != "RAM Usage" || got.Status != "completed" {
		t.Errorf("entry = %+v, want RAM Usage / completed", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", got.Duration)
	}
	if got.LineCount != 3 {
		t.Errorf("line count = %d, want 3", got.LineCount)
	}
}

// TestStore_RecentLimit verifies the limit and its default.
func TestStore_RecentLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 25; i++ {
		o := outcome(fmt.Sprintf("run-%02d", i), "Sensors", runner.StatusCompleted, base.Add(time.Duration(i)*time.Second))
		if err := s.Record(ctx, o); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	entries, err := s.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Recent(5) returned %d entries", len(entries))
	}

	entries, err = s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("Recent(0) returned %d entries, want default 20", len(entries))
	}
}

// TestStore_ByTest verifies the per-test filter.
func TestStore_ByTest(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	_ = s.Record(ctx, outcome("x1", "CPU Info", runner.StatusCompleted, base))
	_ = s.Record(ctx, outcome("x2", "Sensors", runner.StatusCompleted, base.Add(time.Second)))
	_ = s.Record(ctx, outcome("x3", "CPU Info", runner.StatusCancelled, base.Add(2*time.Second)))

	entries, err := s.ByTest(ctx, "CPU Info", 10)
	if err != nil {
		t.Fatalf("ByTest returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "x3" {
		t.Errorf("first entry = %s, want x3 (newest)", entries[0].ID)
	}
}

// TestStore_DuplicateRunIDRejected verifies the primary key constraint.
func TestStore_DuplicateRunIDRejected(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	o := outcome("dup", "Disk Usage", runner.StatusCompleted, time.Now().UTC())
	if err := s.Record(ctx, o); err != nil {
		t.Fatalf("first Record returned error: %v", err)
	}
	if err := s.Record(ctx, o); err == nil {
		t.Error("second Record with same ID should fail")
	}
}
