package deck

import (
	"fmt"
	"math/rand/v2"

	"github.com/youruser/deckbuilder/internal/cards"
)

// HandSize is the size of an opening hand.
const HandSize = 5

// DrawHand shuffles the main deck, one element per copy, and returns its
// first n cards. rng may be nil to use the global source.
func (e *Engine) DrawHand(n int, rng *rand.Rand) ([]cards.Card, error) {
	if n <= 0 {
		n = HandSize
	}
	e.mu.Lock()
	var pool []cards.Card
	for _, dc := range e.current.Main {
		for i := 0; i < dc.Count; i++ {
			pool = append(pool, dc.Card)
		}
	}
	e.mu.Unlock()

	if len(pool) < n {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCards, len(pool), n)
	}
	swap := func(i, j int) { pool[i], pool[j] = pool[j], pool[i] }
	if rng != nil {
		rng.Shuffle(len(pool), swap)
	} else {
		rand.Shuffle(len(pool), swap)
	}
	return pool[:n], nil
}
