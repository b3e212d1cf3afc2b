package cards

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchFilters mirrors the query parameters of the card database. Zero values
// (empty strings, nil pointers) mean "no constraint".
type SearchFilters struct {
	Name      string `json:"fname,omitempty" form:"fname"`
	Type      string `json:"type,omitempty" form:"type"`
	Race      string `json:"race,omitempty" form:"race"`
	Archetype string `json:"archetype,omitempty" form:"archetype"`
	Attribute string `json:"attribute,omitempty" form:"attribute"`
	Level     *int   `json:"level,omitempty" form:"level"`
	Atk       *int   `json:"atk,omitempty" form:"atk"`
	Def       *int   `json:"def,omitempty" form:"def"`
}

// Values encodes the set fields as query parameters. Encode() on the result
// sorts by key, so it doubles as a cache key.
func (f SearchFilters) Values() url.Values {
	v := url.Values{}
	if f.Name != "" {
		v.Set("fname", f.Name)
	}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if f.Race != "" {
		v.Set("race", f.Race)
	}
	if f.Archetype != "" {
		v.Set("archetype", f.Archetype)
	}
	if f.Attribute != "" {
		v.Set("attribute", f.Attribute)
	}
	if f.Level != nil {
		v.Set("level", strconv.Itoa(*f.Level))
	}
	if f.Atk != nil {
		v.Set("atk", strconv.Itoa(*f.Atk))
	}
	if f.Def != nil {
		v.Set("def", strconv.Itoa(*f.Def))
	}
	return v
}

func equalFoldNonEmpty(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

func intMatches(want, got *int) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

// Filter returns the cards matching every set field of opt, in input order.
// Name is a case-insensitive substring match on the card name; every other
// string field must match exactly (ignoring case).
func Filter(cards []Card, opt SearchFilters) []Card {
	var out []Card
	name := strings.ToLower(strings.TrimSpace(opt.Name))
	for _, c := range cards {
		if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
			continue
		}
		if !equalFoldNonEmpty(opt.Type, c.Type) {
			continue
		}
		if !equalFoldNonEmpty(opt.Race, c.Race) {
			continue
		}
		if !equalFoldNonEmpty(opt.Archetype, c.Archetype) {
			continue
		}
		if !equalFoldNonEmpty(opt.Attribute, c.Attribute) {
			continue
		}
		if !intMatches(opt.Level, c.Level) || !intMatches(opt.Atk, c.Atk) || !intMatches(opt.Def, c.Def) {
			continue
		}
		out = append(out, c)
	}
	return out
}
