package deck

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DeckFile is the top-level YAML structure of an exported deck file.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	ID    string      `yaml:"id,omitempty"`
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards,omitempty"`
	Extra []CardEntry `yaml:"extra,omitempty"`
	Side  []CardEntry `yaml:"side,omitempty"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func cardEntries(in []DeckCard) []CardEntry {
	var out []CardEntry
	for _, dc := range in {
		out = append(out, CardEntry{ID: dc.Card.ID, Name: dc.Card.Name, Count: dc.Count})
	}
	return out
}

// ToEntry converts d to its YAML representation.
func ToEntry(d Deck) DeckEntry {
	return DeckEntry{
		ID:    d.ID,
		Name:  d.Name,
		Cards: cardEntries(d.Main),
		Extra: cardEntries(d.Extra),
		Side:  cardEntries(d.Side),
	}
}

// MarshalYAML renders decks as a DeckFile document.
func MarshalYAML(decks ...Deck) ([]byte, error) {
	var df DeckFile
	for _, d := range decks {
		df.Decks = append(df.Decks, ToEntry(d))
	}
	out, err := yaml.Marshal(df)
	if err != nil {
		return nil, fmt.Errorf("marshal deck YAML: %w", err)
	}
	return out, nil
}

// ParseDeckFile parses a YAML deck file.
func ParseDeckFile(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	for _, d := range df.Decks {
		for _, entries := range [][]CardEntry{d.Cards, d.Extra, d.Side} {
			for _, ce := range entries {
				if ce.Count < 1 || ce.Count > MaxCopies {
					return DeckFile{}, fmt.Errorf("deck %q: %s has count %d outside 1-%d", d.Name, ce.Name, ce.Count, MaxCopies)
				}
			}
		}
	}
	return df, nil
}

func listEntries(in []CardEntry) []ListEntry {
	var out []ListEntry
	for _, ce := range in {
		out = append(out, ListEntry{Count: ce.Count, Name: ce.Name})
	}
	return out
}

// List converts a YAML deck entry into a deck list for Import.
func (e DeckEntry) List() List {
	return List{
		Name:  e.Name,
		Main:  listEntries(e.Cards),
		Extra: listEntries(e.Extra),
		Side:  listEntries(e.Side),
	}
}
