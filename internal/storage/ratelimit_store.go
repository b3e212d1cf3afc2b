package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/youruser/deckbuilder/internal/ratelimit"
)

// RateLimitStore implements ratelimit.Store on the rate_limits table so that
// counters survive restarts.
type RateLimitStore struct {
	db *sql.DB
}

func NewRateLimitStore(db *sql.DB) *RateLimitStore {
	return &RateLimitStore{db: db}
}

var _ ratelimit.Store = (*RateLimitStore)(nil)

// Hit upserts the counter for key inside a transaction.
func (s *RateLimitStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (ratelimit.Window, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ratelimit.Window{}, fmt.Errorf("failed to begin rate limit transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	var startMillis int64
	err = tx.QueryRowContext(ctx, "SELECT count, window_start FROM rate_limits WHERE key = ?", key).Scan(&count, &startMillis)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ratelimit.Window{}, fmt.Errorf("failed to read rate limit: %w", err)
	}

	w := ratelimit.Window{Count: count + 1, Start: time.UnixMilli(startMillis)}
	if errors.Is(err, sql.ErrNoRows) || now.Sub(w.Start) > window {
		w = ratelimit.Window{Count: 1, Start: now}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_limits (key, count, window_start) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET count = excluded.count, window_start = excluded.window_start`,
		key, w.Count, w.Start.UnixMilli(),
	)
	if err != nil {
		return ratelimit.Window{}, fmt.Errorf("failed to update rate limit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ratelimit.Window{}, fmt.Errorf("failed to commit rate limit: %w", err)
	}
	return w, nil
}
