package deck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
)

func TestExportText_MainOnly(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.Rename("Blue-Eyes")
	e.AddCard(normal(1, "Blue-Eyes White Dragon"), SectionMain)
	e.AddCard(normal(1, "Blue-Eyes White Dragon"), SectionMain)
	e.AddCard(normal(2, "Sage with Eyes of Blue"), SectionMain)

	want := "# Blue-Eyes\n\n" +
		"# Main Deck\n" +
		"2x Blue-Eyes White Dragon\n" +
		"1x Sage with Eyes of Blue\n"
	assert.Equal(t, want, e.ExportText())
}

func TestExportText_AllSections(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(cards.Card{ID: 2, Name: "B", Type: "XYZ Monster"}, SectionMain)
	e.AddCard(normal(3, "C"), SectionSide)
	e.AddCard(normal(3, "C"), SectionSide)

	want := "# New Deck\n\n" +
		"# Main Deck\n" +
		"1x A\n" +
		"\n# Extra Deck\n" +
		"1x B\n" +
		"\n# Side Deck\n" +
		"2x C\n"
	assert.Equal(t, want, e.ExportText())
}

func TestExportText_EmptyDeckKeepsMainHeading(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	assert.Equal(t, "# New Deck\n\n# Main Deck\n", e.ExportText())
}

func TestExportText_ParsesBackToStats(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	for i := 1; i <= 20; i++ {
		e.AddCard(normal(i, "main card"), SectionMain)
		if i%2 == 0 {
			e.AddCard(normal(i, "main card"), SectionMain)
		}
	}
	for i := 30; i < 36; i++ {
		e.AddCard(cards.Card{ID: i, Name: "fusion", Type: "Fusion Monster"}, SectionMain)
	}
	e.AddCard(normal(40, "side card"), SectionSide)

	list, err := ParseText(strings.NewReader(e.ExportText()))
	require.NoError(t, err)
	assert.Equal(t, e.Stats(), list.Stats())
	assert.Equal(t, "New Deck", list.Name)
}

func TestParseText(t *testing.T) {
	in := `# Burn

# Main Deck
3x Ookazi
2x Hinotama

# Side Deck
1x Royal Decree
`
	list, err := ParseText(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Burn", list.Name)
	assert.Equal(t, []ListEntry{{3, "Ookazi"}, {2, "Hinotama"}}, list.Main)
	assert.Empty(t, list.Extra)
	assert.Equal(t, []ListEntry{{1, "Royal Decree"}}, list.Side)
	assert.Equal(t, Stats{Main: 5, Side: 1, Total: 6}, list.Stats())
}

func TestParseText_Errors(t *testing.T) {
	_, err := ParseText(strings.NewReader("# Deck\n# Graveyard\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseText(strings.NewReader("# Main Deck\nthree Ookazi\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseText(strings.NewReader("# Deck\n# Main Deck\n300000000x Ookazi\n"))
	assert.ErrorContains(t, err, "line 3")
	_, err = ParseText(strings.NewReader("# Deck\n4x Ookazi\n"))
	assert.ErrorContains(t, err, "outside 1-3")
	_, err = ParseText(strings.NewReader("# Deck\n0x Ookazi\n"))
	assert.ErrorContains(t, err, "outside 1-3")
}

func TestParseText_NameLikeSectionTitle(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.Rename("Side Deck")
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(normal(2, "B"), SectionSide)

	list, err := ParseText(strings.NewReader(e.ExportText()))
	require.NoError(t, err)
	assert.Equal(t, "Side Deck", list.Name)
	assert.Equal(t, []ListEntry{{1, "A"}}, list.Main)
	assert.Equal(t, []ListEntry{{1, "B"}}, list.Side)
}

func TestParseDeckFile_RejectsCounts(t *testing.T) {
	_, err := ParseDeckFile([]byte("decks:\n  - name: Big\n    cards:\n      - {id: 1, name: A, count: 300000000}\n"))
	assert.ErrorContains(t, err, "outside 1-3")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Blue_Eyes_2024.txt", FileName("Blue-Eyes 2024", "txt"))
	assert.Equal(t, "_____.yaml", FileName("ドラゴン!", "yaml"))
	assert.Equal(t, "deck.txt", FileName("", "txt"))
}

func TestMarshalYAML(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.Rename("Yaml")
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(cards.Card{ID: 2, Name: "B", Type: "Link Monster"}, SectionMain)

	out, err := MarshalYAML(e.Current())
	require.NoError(t, err)

	df, err := ParseDeckFile(out)
	require.NoError(t, err)
	require.Len(t, df.Decks, 1)
	entry := df.Decks[0]
	assert.Equal(t, "Yaml", entry.Name)
	assert.Equal(t, []CardEntry{{ID: 1, Name: "A", Count: 2}}, entry.Cards)
	assert.Equal(t, []CardEntry{{ID: 2, Name: "B", Count: 1}}, entry.Extra)
	assert.Empty(t, entry.Side)

	list := entry.List()
	assert.Equal(t, Stats{Main: 2, Extra: 1, Total: 3}, list.Stats())
}
