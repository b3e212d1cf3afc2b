package cards

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DataFiles are the CSV files LoadCardsFromDataDir looks for, in load order.
var DataFiles = []string{"cards.csv", "custom_cards.csv"}

func parseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "?" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LoadCardsFromDataDir loads card CSV files from a data directory (best-effort).
// It expects at least one of DataFiles; missing files are skipped.
func LoadCardsFromDataDir(dataDir string) ([]Card, error) {
	var all []Card
	var found bool
	for _, name := range DataFiles {
		f := filepath.Join(dataDir, name)
		if _, err := os.Stat(f); err != nil {
			continue
		}
		found = true
		fp, err := os.Open(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
		cs, err := ReadCSV(fp)
		fp.Close()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
		all = append(all, cs...)
	}
	if !found {
		return nil, fmt.Errorf("no input CSVs found in %s", dataDir)
	}
	return all, nil
}

// ReadCSV parses card rows from r. The first row is a header; columns are
// matched by name (id, name, type, race, attribute, archetype, level, atk,
// def, desc, image_url) so their order does not matter.
func ReadCSV(r io.Reader) ([]Card, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("csv header has no id column")
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Card{}
	for i, row := range rows[1:] {
		line := i + 2
		id, err := strconv.Atoi(get(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad id: %w", line, err)
		}
		c := Card{
			ID:        id,
			Name:      get(row, "name"),
			Type:      get(row, "type"),
			Race:      get(row, "race"),
			Attribute: get(row, "attribute"),
			Archetype: get(row, "archetype"),
			Desc:      get(row, "desc"),
		}
		if c.Level, err = parseOptionalInt(get(row, "level")); err != nil {
			return nil, fmt.Errorf("line %d: bad level: %w", line, err)
		}
		if c.Atk, err = parseOptionalInt(get(row, "atk")); err != nil {
			return nil, fmt.Errorf("line %d: bad atk: %w", line, err)
		}
		if c.Def, err = parseOptionalInt(get(row, "def")); err != nil {
			return nil, fmt.Errorf("line %d: bad def: %w", line, err)
		}
		if u := get(row, "image_url"); u != "" {
			c.CardImages = []CardImage{{ID: id, ImageURL: u, ImageURLSmall: u}}
		}
		out = append(out, c)
	}
	return out, nil
}
