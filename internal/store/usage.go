package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// dayKey formats a timestamp as the calendar-date key used by usage_counters.
func dayKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// UsageToday returns the units consumed so far for the current calendar day.
// A day with no record reads as zero.
func (s *Store) UsageToday(ctx context.Context) (int, error) {
	return s.usageFor(ctx, dayKey(time.Now()))
}

func (s *Store) usageFor(ctx context.Context, day string) (int, error) {
	ctx = ensureContext(ctx)
	var units int
	err := s.db.QueryRowContext(ctx, "SELECT units FROM usage_counters WHERE day = ?", day).Scan(&units)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage counter: %w", err)
	}
	return units, nil
}

// AddUsage increments today's counter by units using a read-then-write pair.
// The two statements are deliberately NOT one transaction: the counter is an
// advisory quota, and concurrent requests are allowed to under- or
// over-count. Callers must not rely on it for hard limits.
func (s *Store) AddUsage(ctx context.Context, units int) (int, error) {
	if units <= 0 {
		return s.UsageToday(ctx)
	}
	ctx = ensureContext(ctx)
	day := dayKey(time.Now())

	current, err := s.usageFor(ctx, day)
	if err != nil {
		return 0, err
	}
	next := current + units
	if current == 0 {
		err = s.execWithRetry(ctx,
			"INSERT INTO usage_counters (day, units) VALUES (?, ?) ON CONFLICT(day) DO UPDATE SET units = ?",
			day, next, next)
	} else {
		err = s.execWithRetry(ctx, "UPDATE usage_counters SET units = ? WHERE day = ?", next, day)
	}
	if err != nil {
		return 0, fmt.Errorf("write usage counter: %w", err)
	}
	return next, nil
}
