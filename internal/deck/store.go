package deck

import (
	"context"
	"errors"
)

var (
	// ErrNoUser is returned by persistence operations called without a user id.
	ErrNoUser = errors.New("a signed-in user is required")
	// ErrDeckNotFound is returned when a saved deck id is unknown.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrSaveLimitReached is returned when saving a new deck would exceed the
	// per-user saved deck limit.
	ErrSaveLimitReached = errors.New("saved deck limit reached")
	// ErrNotEnoughCards is returned when the main deck is too small to draw from.
	ErrNotEnoughCards = errors.New("not enough cards in the main deck")
)

// Store persists deck snapshots scoped by owning user.
type Store interface {
	// Upsert inserts or replaces the deck keyed by (d.ID, userID).
	Upsert(ctx context.Context, d Deck, userID string) error
	// ListByUser returns every deck owned by userID.
	ListByUser(ctx context.Context, userID string) ([]Deck, error)
	// Delete removes the deck only when both deckID and userID match.
	Delete(ctx context.Context, deckID, userID string) error
}
