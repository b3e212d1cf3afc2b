package cards

import (
	"context"
	"strings"
)

// DefaultLimit caps search results when the caller does not ask for a size.
const DefaultLimit = 50

// Catalog looks cards up in a card database.
type Catalog interface {
	Search(ctx context.Context, filters SearchFilters, limit int) ([]Card, error)
	Card(ctx context.Context, id int) (Card, error)
}

func clampLimit(cards []Card, limit int) []Card {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(cards) > limit {
		cards = cards[:limit]
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// LocalCatalog serves searches from an in-memory card list, typically loaded
// with LoadCardsFromDataDir.
type LocalCatalog struct {
	cards []Card
	byID  map[int]Card
}

// NewLocalCatalog indexes cards for lookup.
func NewLocalCatalog(cards []Card) *LocalCatalog {
	byID := make(map[int]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	return &LocalCatalog{cards: cards, byID: byID}
}

func (l *LocalCatalog) Search(_ context.Context, filters SearchFilters, limit int) ([]Card, error) {
	return clampLimit(Filter(l.cards, filters), limit), nil
}

func (l *LocalCatalog) Card(_ context.Context, id int) (Card, error) {
	c, ok := l.byID[id]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return c, nil
}

// Len reports how many cards the catalog holds.
func (l *LocalCatalog) Len() int {
	return len(l.cards)
}

// FindByName searches cat for a card whose name equals name, ignoring case.
func FindByName(ctx context.Context, cat Catalog, name string) (Card, error) {
	found, err := cat.Search(ctx, SearchFilters{Name: name}, 1000)
	if err != nil {
		return Card{}, err
	}
	for _, c := range found {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Card{}, ErrCardNotFound
}
