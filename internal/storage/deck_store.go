package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/youruser/deckbuilder/internal/deck"
)

// DeckStore implements deck.Store with SQLite. Sections are stored as JSON
// arrays of {card, count}.
type DeckStore struct {
	db *sql.DB
}

// NewDeckStore creates a new SQLite deck store.
func NewDeckStore(db *sql.DB) *DeckStore {
	return &DeckStore{db: db}
}

var _ deck.Store = (*DeckStore)(nil)

// timeFormat is fixed width so that text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func encodeSection(entries []deck.DeckCard) (string, error) {
	if entries == nil {
		entries = []deck.DeckCard{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSection(s string) ([]deck.DeckCard, error) {
	out := []deck.DeckCard{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts the deck or replaces the row with the same (id, user_id).
func (s *DeckStore) Upsert(ctx context.Context, d deck.Deck, userID string) error {
	mainDeck, err := encodeSection(d.Main)
	if err != nil {
		return fmt.Errorf("failed to encode main deck: %w", err)
	}
	extraDeck, err := encodeSection(d.Extra)
	if err != nil {
		return fmt.Errorf("failed to encode extra deck: %w", err)
	}
	sideDeck, err := encodeSection(d.Side)
	if err != nil {
		return fmt.Errorf("failed to encode side deck: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decks (id, user_id, name, main_deck, extra_deck, side_deck, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id, user_id) DO UPDATE SET
			name = excluded.name,
			main_deck = excluded.main_deck,
			extra_deck = excluded.extra_deck,
			side_deck = excluded.side_deck,
			updated_at = excluded.updated_at`,
		d.ID, userID, d.Name, mainDeck, extraDeck, sideDeck,
		d.CreatedAt.UTC().Format(timeFormat), d.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deck: %w", err)
	}
	return nil
}

// ListByUser returns the user's decks, most recently updated first.
func (s *DeckStore) ListByUser(ctx context.Context, userID string) ([]deck.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, main_deck, extra_deck, side_deck, created_at, updated_at FROM decks WHERE user_id = ? ORDER BY updated_at DESC, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []deck.Deck{}
	for rows.Next() {
		var (
			d                          deck.Deck
			mainDeck, extraDeck, sideD string
			createdAt, updatedAt       string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &mainDeck, &extraDeck, &sideD, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		if d.Main, err = decodeSection(mainDeck); err != nil {
			return nil, fmt.Errorf("failed to decode main deck of %s: %w", d.ID, err)
		}
		if d.Extra, err = decodeSection(extraDeck); err != nil {
			return nil, fmt.Errorf("failed to decode extra deck of %s: %w", d.ID, err)
		}
		if d.Side, err = decodeSection(sideD); err != nil {
			return nil, fmt.Errorf("failed to decode side deck of %s: %w", d.ID, err)
		}
		if d.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of %s: %w", d.ID, err)
		}
		if d.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at of %s: %w", d.ID, err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// Delete removes the deck only when both the id and the owner match.
func (s *DeckStore) Delete(ctx context.Context, deckID, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM decks WHERE id = ? AND user_id = ?", deckID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
