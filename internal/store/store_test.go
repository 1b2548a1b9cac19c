package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "prism.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUsageReadIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UsageToday(ctx)
	if err != nil {
		t.Fatalf("UsageToday: %v", err)
	}
	second, err := s.UsageToday(ctx)
	if err != nil {
		t.Fatalf("UsageToday: %v", err)
	}
	if first != second {
		t.Fatalf("reads disagree without increment: %d vs %d", first, second)
	}
	if first != 0 {
		t.Fatalf("fresh day should read 0, got %d", first)
	}
}

func TestAddUsageAccumulatesFixedCost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const cost = 20

	for i := 1; i <= 3; i++ {
		total, err := s.AddUsage(ctx, cost)
		if err != nil {
			t.Fatalf("AddUsage: %v", err)
		}
		if total != i*cost {
			t.Fatalf("after %d increments expected %d, got %d", i, i*cost, total)
		}
	}

	units, err := s.UsageToday(ctx)
	if err != nil {
		t.Fatalf("UsageToday: %v", err)
	}
	if units != 3*cost {
		t.Fatalf("expected %d, got %d", 3*cost, units)
	}
}

func TestAddUsageIgnoresNonPositive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.AddUsage(ctx, 5); err != nil {
		t.Fatalf("AddUsage: %v", err)
	}
	total, err := s.AddUsage(ctx, 0)
	if err != nil {
		t.Fatalf("AddUsage(0): %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5, got %d", total)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, pair := range [][2]string{
		{"what is 2+2?", "4"},
		{"capital of france", "Paris"},
		{"/image a red fox", "IMAGE_DATA:https://example.com/fox.png"},
	} {
		if _, err := s.AddHistory(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("AddHistory: %v", err)
		}
	}

	entries, err := s.RecentHistory(ctx, 2)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Query != "/image a red fox" {
		t.Fatalf("expected newest first, got %q", entries[0].Query)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected parsed created_at")
	}
}

func TestAddHistoryRequiresQuery(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddHistory(context.Background(), "   ", "answer"); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestLogErrorSwallowsFailures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.LogError(ctx, "upstream exploded", "search")
	s.LogError(ctx, "", "ignored")

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM error_log").Scan(&count); err != nil {
		t.Fatalf("count error_log: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 error row, got %d", count)
	}

	// Closed store must not panic.
	_ = s.Close()
	s.LogError(ctx, "after close", "search")
}

func TestSchemaMismatchDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.db")
	s, err := OpenPath(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := s.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = s.Close()

	if _, err := OpenPath(path); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}
