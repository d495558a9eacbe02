package findreplace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		query         string
		caseSensitive bool
		want          []Match
	}{
		{"overlapping", "aaa", "aa", true, []Match{{0, 2}, {1, 2}}},
		{"case insensitive", "Hello hello", "hello", false, []Match{{0, 5}, {6, 5}}},
		{"case sensitive", "Hello hello", "hello", true, []Match{{6, 5}}},
		{"empty query", "anything", "", false, nil},
		{"no match", "anything", "zzz", false, nil},
		{"query longer than text", "ab", "abc", true, nil},
		{"multibyte offsets are runes", "naïve café, café", "café", true, []Match{{6, 4}, {12, 4}}},
		{"folded multibyte", "ÉCOLE école", "école", false, []Match{{0, 5}, {6, 5}}},
		{"embed placeholder", "a\uFFFCb a", "a", true, []Match{{0, 1}, {4, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Locate(tt.text, tt.query, tt.caseSensitive))
		})
	}
}

// Every reported offset is a real occurrence, and every occurrence is reported.
func TestLocate_AgreesWithBruteForce(t *testing.T) {
	texts := []string{"abababa", "mississippi", "aaaa aaaa", "The the THE tHe"}
	queries := []string{"aba", "ss", "issi", "aa", "the", "a"}

	for _, text := range texts {
		for _, q := range queries {
			for _, cs := range []bool{true, false} {
				got := Locate(text, q, cs)

				rt, rq := []rune(text), []rune(q)
				if !cs {
					rt, rq = []rune(strings.ToLower(text)), []rune(strings.ToLower(q))
				}
				var want []Match
				for i := 0; i+len(rq) <= len(rt); i++ {
					if string(rt[i:i+len(rq)]) == string(rq) {
						want = append(want, Match{Index: i, Length: len(rq)})
					}
				}
				require.Equal(t, want, got, "text=%q query=%q caseSensitive=%v", text, q, cs)
			}
		}
	}
}

func TestCount(t *testing.T) {
	require.Equal(t, 3, Count("cat cat cat", "cat", true))
	require.Equal(t, 0, Count("cat", "", true))
}

func TestMatchEnd(t *testing.T) {
	require.Equal(t, 7, Match{Index: 4, Length: 3}.End())
}

func TestDisjoint(t *testing.T) {
	tests := []struct {
		name string
		in   []Match
		want []Match
	}{
		{"empty", nil, nil},
		{"already disjoint", []Match{{0, 1}, {2, 1}}, []Match{{0, 1}, {2, 1}}},
		{"adjacent kept", []Match{{0, 2}, {2, 2}}, []Match{{0, 2}, {2, 2}}},
		{"overlap dropped", Locate("aaa", "aa", true), []Match{{0, 2}}},
		{"chain of overlaps", Locate("aaaaa", "aa", true), []Match{{0, 2}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Disjoint(tt.in))
		})
	}
}
