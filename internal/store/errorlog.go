package store

import (
	"context"
	"strings"
	"time"
)

// LogError records a failure for later inspection. The write is fire and
// forget: any insert failure is swallowed so logging can never mask or
// replace the primary error response.
func (s *Store) LogError(ctx context.Context, message, contextLabel string) {
	if s == nil || s.db == nil {
		return
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339)
	_ = s.execWithRetry(ctx,
		"INSERT INTO error_log (message, context, created_at) VALUES (?, ?, ?)",
		message, strings.TrimSpace(contextLabel), now)
}
