package deck

// Stats holds total copy counts per section.
type Stats struct {
	Main  int `json:"mainCount"`
	Extra int `json:"extraCount"`
	Side  int `json:"sideCount"`
	Total int `json:"total"`
}

// ComputeStats sums copy counts from the deck's current contents.
func ComputeStats(d Deck) Stats {
	st := Stats{
		Main:  d.Count(SectionMain),
		Extra: d.Count(SectionExtra),
		Side:  d.Count(SectionSide),
	}
	st.Total = st.Main + st.Extra + st.Side
	return st
}

// Of returns the count for section s.
func (st Stats) Of(s Section) int {
	switch s {
	case SectionExtra:
		return st.Extra
	case SectionSide:
		return st.Side
	}
	return st.Main
}

// SectionStatus describes one section against its size constraints.
type SectionStatus struct {
	Section Section `json:"section"`
	Count   int     `json:"count"`
	Min     int     `json:"min"`
	Limit   int     `json:"limit"`
	Valid   bool    `json:"valid"`
	Needed  int     `json:"needed,omitempty"`
	Over    int     `json:"over,omitempty"`
}

// Validity is the size check of every section.
type Validity struct {
	Main  SectionStatus `json:"main"`
	Extra SectionStatus `json:"extra"`
	Side  SectionStatus `json:"side"`
	Legal bool          `json:"legal"`
}

// SectionValid reports whether count copies satisfy section s's bounds.
func SectionValid(s Section, count int) bool {
	return count >= s.Min() && count <= s.Limit()
}

func statusOf(s Section, count int) SectionStatus {
	st := SectionStatus{
		Section: s,
		Count:   count,
		Min:     s.Min(),
		Limit:   s.Limit(),
		Valid:   SectionValid(s, count),
	}
	if count < st.Min {
		st.Needed = st.Min - count
	}
	if count > st.Limit {
		st.Over = count - st.Limit
	}
	return st
}

// CheckValidity evaluates every section of d. The deck is tournament-legal
// only when all three sections are valid.
func CheckValidity(d Deck) Validity {
	st := ComputeStats(d)
	v := Validity{
		Main:  statusOf(SectionMain, st.Of(SectionMain)),
		Extra: statusOf(SectionExtra, st.Of(SectionExtra)),
		Side:  statusOf(SectionSide, st.Of(SectionSide)),
	}
	v.Legal = v.Main.Valid && v.Extra.Valid && v.Side.Valid
	return v
}
