package deck

import (
	"strconv"
	"strings"
	"unicode"
)

// ExportText renders the deck list used for downloads and the clipboard:
// a name header, the main deck, then the extra and side decks when non-empty.
func ExportText(d Deck) string {
	var b strings.Builder
	b.WriteString("# " + d.Name + "\n\n")
	writeSection(&b, SectionMain, d.Main)
	for _, s := range []Section{SectionExtra, SectionSide} {
		entries := d.Entries(s)
		if len(entries) == 0 {
			continue
		}
		b.WriteString("\n")
		writeSection(&b, s, entries)
	}
	return b.String()
}

func writeSection(b *strings.Builder, s Section, entries []DeckCard) {
	b.WriteString("# " + s.Title() + "\n")
	for _, dc := range entries {
		b.WriteString(strconv.Itoa(dc.Count) + "x " + dc.Card.Name + "\n")
	}
}

// FileName turns a deck name into a download file name: every rune outside
// [a-zA-Z0-9] becomes an underscore.
func FileName(name, ext string) string {
	safe := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, name)
	if safe == "" {
		safe = "deck"
	}
	return safe + "." + ext
}
