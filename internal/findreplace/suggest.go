package findreplace

import (
	"strings"
	"unicode"

	"github.com/sajari/fuzzy"
)

const maxSuggestions = 3

// Suggest returns up to limit words from text that are within two edits of
// query. Single-word queries only; anything containing whitespace gets none.
func Suggest(text, query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 || strings.ContainsFunc(query, unicode.IsSpace) {
		return nil
	}

	words := Words(text)
	if len(words) == 0 {
		return nil
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	for _, w := range words {
		model.TrainWord(strings.ToLower(w))
	}

	var out []string
	for _, w := range model.Suggestions(query, false) {
		if w == query {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Words splits text into runs of letters, digits and apostrophes.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
