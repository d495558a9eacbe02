package findreplace

import (
	"fmt"
	"slices"
)

// Status is a snapshot of a session for display.
type Status struct {
	State       string   `json:"state"`
	Query       Query    `json:"query"`
	Current     int      `json:"current"`
	Total       int      `json:"total"`
	Matches     []Match  `json:"matches,omitempty"`
	Label       string   `json:"label,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Query returns the current query.
func (s *Session) Query() Query {
	return s.query
}

// Current returns the 1-based active match, or 0 when there is none.
func (s *Session) Current() int {
	return s.current
}

// Matches returns a copy of the current match set.
func (s *Session) Matches() []Match {
	return slices.Clone(s.matches)
}

// Active returns the active match.
func (s *Session) Active() (Match, bool) {
	if s.current == 0 || s.current > len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current-1], true
}

// Status snapshots the session. When the query has no matches it includes
// spelling suggestions drawn from the document's words.
func (s *Session) Status() Status {
	st := Status{
		State:   s.state.String(),
		Query:   s.query,
		Current: s.current,
		Total:   len(s.matches),
		Matches: s.Matches(),
	}

	if s.query.FindText == "" || s.state == Closed {
		return st
	}
	if st.Total > 0 {
		st.Label = fmt.Sprintf("%d of %d matches", st.Current, st.Total)
		return st
	}
	st.Label = "No matches found"
	if s.state == NoMatches && s.attached() {
		st.Suggestions = Suggest(s.buf.PlainText(), s.query.FindText, maxSuggestions)
	}
	return st
}
