package findreplace

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is one occurrence of the query in the plain-text projection.
type Match struct {
	Index  int `json:"index"`
	Length int `json:"length"`
}

// End returns the offset one past the match.
func (m Match) End() int {
	return m.Index + m.Length
}

// Locate returns every occurrence of query in text, left to right. Each scan
// restarts one rune past the previous match's start, so overlapping
// occurrences are all reported: "aa" in "aaa" matches at 0 and 1.
// Case-insensitive search lowercases rune by rune, which keeps offsets aligned.
func Locate(text, query string, caseSensitive bool) []Match {
	if query == "" {
		return nil
	}
	if !caseSensitive {
		text = fold(text)
		query = fold(query)
	}

	qlen := utf8.RuneCountInString(query)
	var matches []Match

	// off is a byte offset into text, pos the rune offset of off.
	off, pos := 0, 0
	for off < len(text) {
		idx := strings.Index(text[off:], query)
		if idx < 0 {
			break
		}
		pos += utf8.RuneCountInString(text[off : off+idx])
		off += idx
		matches = append(matches, Match{Index: pos, Length: qlen})

		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
		pos++
	}
	return matches
}

// Count is len(Locate(text, query, caseSensitive)).
func Count(text, query string, caseSensitive bool) int {
	return len(Locate(text, query, caseSensitive))
}

// Disjoint keeps matches left to right, dropping any that starts inside the
// previous kept match.
func Disjoint(matches []Match) []Match {
	var kept []Match
	for _, m := range matches {
		if len(kept) > 0 && m.Index < kept[len(kept)-1].End() {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}
