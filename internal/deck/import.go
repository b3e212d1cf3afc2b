package deck

import (
	"context"
	"errors"

	"github.com/youruser/deckbuilder/internal/cards"
)

// LookupFunc resolves a card by its exact name. It returns
// cards.ErrCardNotFound when no card carries that name.
type LookupFunc func(ctx context.Context, name string) (cards.Card, error)

// ImportReport summarises an Import.
type ImportReport struct {
	CardCount int      `json:"cardCount"`
	Missing   []string `json:"missing,omitempty"`
}

type resolvedEntry struct {
	card    cards.Card
	section Section
	count   int
}

// Import replaces the current deck with a new deck built from list. Every
// copy goes through AddCard, so the section policy applies as usual and
// copies beyond the caps are dropped. Counts are clamped to MaxCopies. Names the lookup does not know are
// reported in Missing. A lookup failure other than not-found aborts the
// import before the current deck is replaced.
func (e *Engine) Import(ctx context.Context, list List, lookup LookupFunc) (ImportReport, error) {
	var report ImportReport
	var resolved []resolvedEntry
	for _, s := range Sections {
		for _, le := range list.Entries(s) {
			card, err := lookup(ctx, le.Name)
			if errors.Is(err, cards.ErrCardNotFound) {
				report.Missing = append(report.Missing, le.Name)
				continue
			}
			if err != nil {
				return ImportReport{}, err
			}
			resolved = append(resolved, resolvedEntry{card: card, section: s, count: min(le.Count, MaxCopies)})
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = New(e.newID(), list.Name, e.now())
	for _, r := range resolved {
		for i := 0; i < r.count; i++ {
			if e.add(r.card, r.section) {
				report.CardCount++
			}
		}
	}
	return report, nil
}
