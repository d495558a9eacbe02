// Package search finds text across posts. Matching runs over each post's
// rendered text, so markup never matches and literal counts agree with the
// editor's find session.
package search

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/posts"
	"github.com/blogpad/blogpad-mcp/internal/types"
)

// Defaults applied to zero-valued params.
const (
	DefaultContextLines = 2
	DefaultLimit        = 15
)

// Service searches the posts of a store.
type Service struct {
	store *posts.Service
}

// New creates a Service over store.
func New(store *posts.Service) *Service {
	return &Service{store: store}
}

// matcher reports how often a line matches and the rune column of the
// first match.
type matcher func(line string) (count, column int)

// Search returns matching posts, title matches first and then by path,
// together with the total number of matching posts for pagination.
func (s *Service) Search(params types.SearchParams) ([]types.SearchResult, int, error) {
	query := params.Query
	if strings.TrimSpace(query) == "" {
		return nil, 0, &SearchError{Message: "Search query cannot be empty"}
	}

	contextLines := params.ContextLines
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	offset := max(params.Offset, 0)

	match, err := compile(query, params.UseRegex, params.CaseSensitive)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.store.Load()
	if err != nil {
		return nil, 0, err
	}

	var all []types.SearchResult
	for _, e := range entries {
		if !matchesFilters(e.Post.Meta, params) {
			continue
		}
		if r, ok := searchPost(e, match, contextLines); ok {
			all = append(all, r)
		}
	}

	slices.SortStableFunc(all, func(a, b types.SearchResult) int {
		if a.InTitle != b.InTitle {
			if a.InTitle {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})

	total := len(all)
	if offset >= total {
		return []types.SearchResult{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func compile(query string, useRegex, caseSensitive bool) (matcher, error) {
	if !useRegex {
		return func(line string) (int, int) {
			found := findreplace.Locate(line, query, caseSensitive)
			if len(found) == 0 {
				return 0, 0
			}
			return len(found), found[0].Index
		}, nil
	}

	pattern := query
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &SearchError{Message: "Invalid regex pattern: " + err.Error()}
	}
	return func(line string) (int, int) {
		found := re.FindAllStringIndex(line, -1)
		if len(found) == 0 {
			return 0, 0
		}
		return len(found), utf8.RuneCountInString(line[:found[0][0]])
	}, nil
}

func matchesFilters(meta types.PostMeta, params types.SearchParams) bool {
	if params.Status != "" {
		if meta.Status != params.Status {
			return false
		}
	} else if !meta.Active() {
		return false
	}
	if params.Author != "" && !strings.EqualFold(meta.Author, params.Author) {
		return false
	}
	if params.Tag != "" && !slices.Contains(meta.Tags, strings.ToLower(strings.TrimSpace(params.Tag))) {
		return false
	}
	return true
}

func searchPost(e posts.Entry, match matcher, contextLines int) (types.SearchResult, bool) {
	result := types.SearchResult{
		Path:  e.Path,
		Title: e.Post.Meta.Title,
	}
	if n, _ := match(result.Title); n > 0 {
		result.InTitle = true
	}

	text := strings.TrimSuffix(document.Parse(e.Post.Content).PlainText(), "\n")
	lines := strings.Split(text, "\n")

	for lineNum, line := range lines {
		count, column := match(line)
		if count == 0 {
			continue
		}
		start := max(lineNum-contextLines, 0)
		end := min(lineNum+contextLines+1, len(lines))

		result.MatchCount += count
		result.Matches = append(result.Matches, types.SearchMatch{
			Line:    lineNum + 1,
			Column:  column,
			Count:   count,
			Context: strings.Join(lines[start:end], "\n"),
		})
	}

	return result, result.InTitle || result.MatchCount > 0
}

// SearchError represents a search error.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	return e.Message
}
