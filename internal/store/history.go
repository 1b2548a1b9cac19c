package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HistoryEntry is one stored query/answer pair.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// AddHistory persists a query/answer pair and returns its id.
func (s *Store) AddHistory(ctx context.Context, query, answer string) (int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, errors.New("history: query required")
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339)

	var id int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx,
			"INSERT INTO history (query, answer, created_at) VALUES (?, ?, ?)",
			query, answer, now)
		if execErr != nil {
			return execErr
		}
		id, execErr = res.LastInsertId()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}
	return id, nil
}

// RecentHistory returns the most recent limit entries, newest first.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, query, answer, created_at FROM history ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var created string
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.Answer, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339, created); parseErr == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}
