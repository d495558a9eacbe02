package posts

import (
	"cmp"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/frontmatter"
	"github.com/blogpad/blogpad-mcp/internal/logging"
	"github.com/blogpad/blogpad-mcp/internal/types"
)

// Entry is a parsed post together with its location and size.
type Entry struct {
	Path string
	Size int64
	Post types.ParsedPost
}

// Info summarises the entry for listings.
func (e Entry) Info() types.PostInfo {
	meta := e.Post.Meta
	info := types.PostInfo{
		Path:    e.Path,
		Title:   meta.Title,
		Author:  meta.Author,
		Project: meta.Project,
		Tags:    meta.Tags,
		Status:  meta.Status,
		Size:    e.Size,
	}
	if !meta.Created.IsZero() {
		info.Created = frontmatter.FormatTime(meta.Created)
	}
	if !meta.Updated.IsZero() {
		info.Updated = frontmatter.FormatTime(meta.Updated)
	}
	return info
}

// Files returns the relative paths of every post, sorted.
func (s *Service) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.postsDir, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}
		rel, relErr := filepath.Rel(s.postsDir, fullPath)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !s.pathFilter.IsAllowed(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	files = s.pathFilter.FilterPaths(files)
	slices.Sort(files)
	return files, nil
}

// Load reads every post in parallel. Posts that fail to parse are skipped
// and logged. The result is in path order.
func (s *Service) Load() ([]Entry, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	numWorkers := max(min(runtime.NumCPU(), len(files)), 1)

	type indexed struct {
		idx   int
		entry Entry
	}

	resultsCh := make(chan indexed, len(files))
	fileCh := make(chan int, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for idx := range fileCh {
				rel := files[idx]
				post, err := s.ReadPost(rel)
				if err != nil {
					logging.L().Warnw("skipping unreadable post", "post", rel, "error", err)
					continue
				}
				resultsCh <- indexed{idx: idx, entry: Entry{
					Path: rel,
					Size: int64(len(post.OriginalContent)),
					Post: post,
				}}
			}
		})
	}

	for i := range files {
		fileCh <- i
	}
	close(fileCh)

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []indexed
	for r := range resultsCh {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b indexed) int { return cmp.Compare(a.idx, b.idx) })

	entries := make([]Entry, len(results))
	for i, r := range results {
		entries[i] = r.entry
	}
	return entries, nil
}

// ListPosts returns the posts matching params, newest first.
func (s *Service) ListPosts(params types.ListParams) (types.ListResult, error) {
	entries, err := s.Load()
	if err != nil {
		return types.ListResult{}, err
	}

	var matched []Entry
	for _, e := range entries {
		if matchesList(e.Post, params) {
			matched = append(matched, e)
		}
	}

	slices.SortStableFunc(matched, func(a, b Entry) int {
		if c := b.Post.Meta.Created.Compare(a.Post.Meta.Created); c != 0 {
			return c
		}
		if c := b.Post.Meta.Updated.Compare(a.Post.Meta.Updated); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})

	result := types.ListResult{Posts: []types.PostInfo{}, Total: len(matched)}

	offset := max(params.Offset, 0)
	if offset >= len(matched) {
		return result, nil
	}
	end := len(matched)
	if params.Limit > 0 {
		end = min(offset+params.Limit, end)
	}
	for _, e := range matched[offset:end] {
		result.Posts = append(result.Posts, e.Info())
	}
	return result, nil
}

func matchesList(post types.ParsedPost, params types.ListParams) bool {
	meta := post.Meta

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
	if params.Project != "" && !strings.EqualFold(meta.Project, params.Project) {
		return false
	}
	if len(params.Tags) > 0 && !slices.ContainsFunc(params.Tags, func(tag string) bool {
		return slices.Contains(meta.Tags, strings.ToLower(strings.TrimSpace(tag)))
	}) {
		return false
	}

	if !params.From.IsZero() && (meta.Created.IsZero() || meta.Created.Before(params.From)) {
		return false
	}
	if !params.To.IsZero() && (meta.Created.IsZero() || meta.Created.After(params.To)) {
		return false
	}

	if kw := strings.TrimSpace(params.Keyword); kw != "" {
		if findreplace.Count(meta.Title, kw, false) == 0 &&
			findreplace.Count(document.Parse(post.Content).PlainText(), kw, false) == 0 {
			return false
		}
	}
	return true
}

// Stats counts posts by status, optionally for one author.
func (s *Service) Stats(author string) (types.PostStats, error) {
	entries, err := s.Load()
	if err != nil {
		return types.PostStats{}, err
	}

	st := types.PostStats{Author: author}
	for _, e := range entries {
		meta := e.Post.Meta
		if author != "" && !strings.EqualFold(meta.Author, author) {
			continue
		}
		switch meta.Status {
		case types.StatusPublished:
			st.Published++
		case types.StatusDeleted:
			st.Deleted++
		default:
			st.Drafts++
		}
	}
	st.Total = st.Drafts + st.Published
	return st, nil
}
