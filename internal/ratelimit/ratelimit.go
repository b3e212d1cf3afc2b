// Package ratelimit counts requests per client key in fixed windows that
// restart once they are older than the window length.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

// Window is the counter state of one key.
type Window struct {
	Count int
	Start time.Time
}

// Store records hits. Hit must atomically either start a new window (count 1,
// start now) when none exists or the current one is older than window, or
// increment the current window's count, and return the resulting state.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (Window, error)
}

// Limiter allows at most Limit hits per key per Window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a limiter; non-positive limit or window fall back to the defaults.
func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{store: store, limit: limit, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the number of hits allowed per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow records a hit for key and reports whether it is within the limit.
// The returned window lets callers compute remaining hits and reset time.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, Window, error) {
	w, err := l.store.Hit(ctx, key, l.now(), l.window)
	if err != nil {
		return false, Window{}, err
	}
	return w.Count <= l.limit, w, nil
}

// ResetAt is when the window w stops counting.
func (l *Limiter) ResetAt(w Window) time.Time {
	return w.Start.Add(l.window)
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string]Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string]Window)}
}

func (m *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.hits[key]
	if !ok || now.Sub(w.Start) > window {
		w = Window{Count: 1, Start: now}
	} else {
		w.Count++
	}
	m.hits[key] = w
	return w, nil
}

// Sweep drops windows that ended before now.
func (m *MemoryStore) Sweep(now time.Time, window time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, w := range m.hits {
		if now.Sub(w.Start) > window {
			delete(m.hits, k)
			n++
		}
	}
	return n
}
