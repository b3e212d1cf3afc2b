package deck

import (
	"time"

	"github.com/youruser/deckbuilder/internal/cards"
)

// DefaultName is given to decks created without a name.
const DefaultName = "New Deck"

// DeckCard is a card and the number of copies held in one section.
type DeckCard struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
}

// Deck is a named deck split into main, extra and side sections. Each section
// keeps insertion order and holds at most one entry per card id.
type Deck struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Main      []DeckCard `json:"mainDeck"`
	Extra     []DeckCard `json:"extraDeck"`
	Side      []DeckCard `json:"sideDeck"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UserID    string     `json:"user_id,omitempty"`
}

// New returns an empty deck stamped with now.
func New(id, name string, now time.Time) Deck {
	if name == "" {
		name = DefaultName
	}
	return Deck{
		ID:        id,
		Name:      name,
		Main:      []DeckCard{},
		Extra:     []DeckCard{},
		Side:      []DeckCard{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Entries returns the entries of section s.
func (d Deck) Entries(s Section) []DeckCard {
	switch s {
	case SectionExtra:
		return d.Extra
	case SectionSide:
		return d.Side
	}
	return d.Main
}

func (d *Deck) section(s Section) *[]DeckCard {
	switch s {
	case SectionExtra:
		return &d.Extra
	case SectionSide:
		return &d.Side
	}
	return &d.Main
}

// indexOf returns the position of cardID in section s, or -1.
func (d Deck) indexOf(s Section, cardID int) int {
	for i, dc := range d.Entries(s) {
		if dc.Card.ID == cardID {
			return i
		}
	}
	return -1
}

// Count returns the total copies held in section s.
func (d Deck) Count(s Section) int {
	n := 0
	for _, dc := range d.Entries(s) {
		n += dc.Count
	}
	return n
}

// Copies returns how many copies of cardID section s holds.
func (d Deck) Copies(s Section, cardID int) int {
	if i := d.indexOf(s, cardID); i >= 0 {
		return d.Entries(s)[i].Count
	}
	return 0
}

// Clone returns a deep copy whose sections share no backing arrays with d.
func (d Deck) Clone() Deck {
	out := d
	out.Main = cloneSection(d.Main)
	out.Extra = cloneSection(d.Extra)
	out.Side = cloneSection(d.Side)
	return out
}

func cloneSection(in []DeckCard) []DeckCard {
	out := make([]DeckCard, len(in))
	copy(out, in)
	return out
}

// Equal compares the structural content of two decks: id, name, and every
// section's entries (card id and count, in order). Timestamps and owner are
// ignored so that re-stamping alone never marks a deck as changed.
func Equal(a, b Deck) bool {
	if a.ID != b.ID || a.Name != b.Name {
		return false
	}
	for _, s := range Sections {
		if !sectionEqual(*a.section(s), *b.section(s)) {
			return false
		}
	}
	return true
}

func sectionEqual(a, b []DeckCard) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Card.ID != b[i].Card.ID || a[i].Count != b[i].Count {
			return false
		}
	}
	return true
}
