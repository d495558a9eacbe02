package types

type (
	// SearchParams contains parameters for searching posts.
	SearchParams struct {
		Query         string `json:"query"`
		UseRegex      bool   `json:"useRegex,omitempty"`
		CaseSensitive bool   `json:"caseSensitive,omitempty"`
		ContextLines  int    `json:"contextLines,omitempty"`
		Limit         int    `json:"limit,omitempty"`
		Offset        int    `json:"offset,omitempty"`

		Status string `json:"status,omitempty"`
		Author string `json:"author,omitempty"`
		Tag    string `json:"tag,omitempty"`
	}

	// SearchMatch is one matching line of a post's rendered text.
	SearchMatch struct {
		Line    int    `json:"line"`
		Column  int    `json:"column"` // rune offset within the line
		Count   int    `json:"count"`
		Context string `json:"context"`
	}

	// SearchResult contains the matches within one post.
	SearchResult struct {
		Path       string        `json:"path"`
		Title      string        `json:"title,omitempty"`
		InTitle    bool          `json:"inTitle,omitempty"`
		MatchCount int           `json:"matchCount"`
		Matches    []SearchMatch `json:"matches"`
	}
)
