package deck

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var entryLine = regexp.MustCompile(`^(\d+)x\s+(.+)$`)

// ListEntry is one "{count}x {name}" line of a deck list.
type ListEntry struct {
	Count int    `json:"count" yaml:"count"`
	Name  string `json:"name" yaml:"name"`
}

// List is a deck list read back from ExportText output.
type List struct {
	Name  string
	Main  []ListEntry
	Extra []ListEntry
	Side  []ListEntry
}

// Entries returns the entries listed under section s.
func (l *List) Entries(s Section) []ListEntry {
	switch s {
	case SectionExtra:
		return l.Extra
	case SectionSide:
		return l.Side
	}
	return l.Main
}

// Stats sums the listed copy counts per section.
func (l *List) Stats() Stats {
	var st Stats
	for _, e := range l.Main {
		st.Main += e.Count
	}
	for _, e := range l.Extra {
		st.Extra += e.Count
	}
	for _, e := range l.Side {
		st.Side += e.Count
	}
	st.Total = st.Main + st.Extra + st.Side
	return st
}

func sectionFromTitle(title string) (Section, bool) {
	for _, s := range Sections {
		if strings.EqualFold(title, s.Title()) {
			return s, true
		}
	}
	return "", false
}

// ParseText reads a deck list in the ExportText format. A heading on the
// first line is the deck name, even when it reads like a section title.
// Entries before any section heading count towards the main deck. Counts
// must be between 1 and MaxCopies.
func ParseText(r io.Reader) (List, error) {
	var l List
	current := SectionMain
	sc := bufio.NewScanner(r)
	lineNo := 0
	first := true
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		isFirst := first
		first = false
		if strings.HasPrefix(line, "#") {
			title := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if isFirst {
				l.Name = title
				continue
			}
			if s, ok := sectionFromTitle(title); ok {
				current = s
				continue
			}
			return List{}, fmt.Errorf("line %d: unknown heading %q", lineNo, title)
		}
		m := entryLine.FindStringSubmatch(line)
		if m == nil {
			return List{}, fmt.Errorf("line %d: expected \"<count>x <name>\", got %q", lineNo, line)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return List{}, fmt.Errorf("line %d: bad count: %w", lineNo, err)
		}
		if n < 1 || n > MaxCopies {
			return List{}, fmt.Errorf("line %d: count %d outside 1-%d", lineNo, n, MaxCopies)
		}
		e := ListEntry{Count: n, Name: strings.TrimSpace(m[2])}
		switch current {
		case SectionExtra:
			l.Extra = append(l.Extra, e)
		case SectionSide:
			l.Side = append(l.Side, e)
		default:
			l.Main = append(l.Main, e)
		}
	}
	if err := sc.Err(); err != nil {
		return List{}, err
	}
	return l, nil
}
