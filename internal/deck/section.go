package deck

import (
	"fmt"
	"strings"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Section names one of the three parts of a deck.
type Section string

const (
	SectionMain  Section = "main"
	SectionExtra Section = "extra"
	SectionSide  Section = "side"
)

// Sections lists every section in export order.
var Sections = []Section{SectionMain, SectionExtra, SectionSide}

// MaxCopies is the number of copies of one card a section may hold.
const MaxCopies = 3

var extraDeckTypes = map[string]bool{
	"Fusion Monster":  true,
	"Synchro Monster": true,
	"XYZ Monster":     true,
	"Link Monster":    true,
}

// ParseSection converts user input into a Section.
func ParseSection(s string) (Section, error) {
	switch sec := Section(strings.ToLower(strings.TrimSpace(s))); sec {
	case SectionMain, SectionExtra, SectionSide:
		return sec, nil
	}
	return "", fmt.Errorf("unknown deck section %q", s)
}

// Limit is the maximum total copies the section may hold.
func (s Section) Limit() int {
	if s == SectionMain {
		return 60
	}
	return 15
}

// Min is the minimum total copies for the section to be valid.
func (s Section) Min() int {
	if s == SectionMain {
		return 40
	}
	return 0
}

// Title is the section's heading in an exported deck list.
func (s Section) Title() string {
	switch s {
	case SectionExtra:
		return "Extra Deck"
	case SectionSide:
		return "Side Deck"
	}
	return "Main Deck"
}

// IsExtraDeckCard reports whether the card belongs in the extra deck.
func IsExtraDeckCard(c cards.Card) bool {
	return extraDeckTypes[c.Type]
}

// ResolveSection returns the section a card actually lands in when requested
// for section s. Only requests for the main deck are redirected.
func ResolveSection(c cards.Card, s Section) Section {
	if s == SectionMain && IsExtraDeckCard(c) {
		return SectionExtra
	}
	return s
}
