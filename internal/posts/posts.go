// Package posts stores blog posts as markdown files with YAML frontmatter.
package posts

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/frontmatter"
	"github.com/blogpad/blogpad-mcp/internal/logging"
	"github.com/blogpad/blogpad-mcp/internal/pathfilter"
	"github.com/blogpad/blogpad-mcp/internal/types"
)

// Publishing requirements.
var (
	ErrMissingTitle = errors.New("a published post needs a title")
	ErrEmptyBody    = errors.New("a published post needs content")
)

// Service reads and writes posts under a posts directory.
type Service struct {
	postsDir           string
	pathFilter         *pathfilter.PathFilter
	frontmatterHandler *frontmatter.Handler
	now                func() time.Time
}

// New creates a Service rooted at postsDir.
func New(postsDir string, pf *pathfilter.PathFilter, fh *frontmatter.Handler) *Service {
	absPath, _ := filepath.Abs(postsDir)
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	if fh == nil {
		fh = frontmatter.New()
	}
	return &Service{
		postsDir:           absPath,
		pathFilter:         pf,
		frontmatterHandler: fh,
		now:                time.Now,
	}
}

// ResolvePath resolves a path relative to the posts directory and rejects
// anything that would escape it.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	relativePath = strings.TrimPrefix(strings.TrimSpace(relativePath), "/")

	absPath, err := filepath.Abs(filepath.Join(s.postsDir, relativePath))
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(s.postsDir, absPath)
	if err != nil {
		return "", err
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal not allowed: %s", relativePath)
	}

	return absPath, nil
}

// ReadPost reads and parses a post.
func (s *Service) ReadPost(path string) (types.ParsedPost, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return types.ParsedPost{}, err
	}

	if !s.pathFilter.IsAllowed(path) {
		return types.ParsedPost{}, fmt.Errorf("access denied: %s", path)
	}

	if isDir, _ := s.IsDirectory(path); isDir {
		return types.ParsedPost{}, fmt.Errorf("cannot read directory as post: %s. Use the list tool instead", path)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ParsedPost{}, fmt.Errorf("post not found: %s", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return types.ParsedPost{}, fmt.Errorf("permission denied: %s", path)
		}
		return types.ParsedPost{}, fmt.Errorf("failed to read post: %s - %w", path, err)
	}

	return s.frontmatterHandler.Parse(string(content)), nil
}

// WritePost creates or updates a post. Overwrite replaces the body, and the
// frontmatter when one is given; append and prepend keep the existing
// frontmatter and merge the given keys into it. Every write stamps updated;
// the first one also stamps created and defaults the status to draft.
func (s *Service) WritePost(params types.PostWriteParams) error {
	path := params.Path
	mode := params.Mode
	if mode == "" {
		mode = types.ModeOverwrite
	}
	switch mode {
	case types.ModeOverwrite, types.ModeAppend, types.ModePrepend:
	default:
		return fmt.Errorf("unknown write mode %q", mode)
	}

	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return err
	}

	if !s.pathFilter.IsPost(path) {
		return fmt.Errorf("access denied: %s", path)
	}

	if params.Frontmatter != nil {
		if validation := s.frontmatterHandler.Validate(params.Frontmatter); !validation.IsValid {
			return fmt.Errorf("invalid frontmatter: %s", strings.Join(validation.Errors, ", "))
		}
	}

	existing, readErr := s.ReadPost(path)
	exists := readErr == nil

	fm := make(map[string]any)
	if exists && (mode != types.ModeOverwrite || params.Frontmatter == nil) {
		maps.Copy(fm, existing.Frontmatter)
	}
	maps.Copy(fm, params.Frontmatter)

	body := params.Content
	if exists {
		switch mode {
		case types.ModeAppend:
			body = existing.Content + params.Content
		case types.ModePrepend:
			body = params.Content + existing.Content
		}
	}

	s.stamp(fm, existing.Meta)
	if err := checkPublishable(fm, body); err != nil {
		return fmt.Errorf("cannot publish %s: %w", path, err)
	}

	return s.writeFile(fullPath, path, fm, body)
}

// stamp sets the timestamps and default status. prev is the metadata of the
// post being replaced, zero for a new post.
func (s *Service) stamp(fm map[string]any, prev types.PostMeta) {
	now := s.now()
	if frontmatter.DecodeMeta(fm).Created.IsZero() {
		created := now
		if !prev.Created.IsZero() {
			created = prev.Created
		}
		fm[frontmatter.KeyCreated] = frontmatter.FormatTime(created)
	}
	fm[frontmatter.KeyUpdated] = frontmatter.FormatTime(now)
	if status, _ := fm[frontmatter.KeyStatus].(string); status == "" {
		fm[frontmatter.KeyStatus] = types.StatusDraft
	}
}

func checkPublishable(fm map[string]any, body string) error {
	meta := frontmatter.DecodeMeta(fm)
	if meta.Status != types.StatusPublished {
		return nil
	}
	if meta.Title == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(document.Parse(body).PlainText()) == "" {
		return ErrEmptyBody
	}
	return nil
}

func (s *Service) writeFile(fullPath, path string, fm map[string]any, body string) error {
	if validation := s.frontmatterHandler.Validate(fm); !validation.IsValid {
		return fmt.Errorf("invalid frontmatter: %s", strings.Join(validation.Errors, ", "))
	}

	content, err := s.frontmatterHandler.Stringify(fm, body)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write post: %s - %w", path, err)
	}

	logging.L().Debugw("post written", "post", path, "bytes", len(content))
	return nil
}

// PatchPost replaces text in a post body. Matching runs over the rendered
// text through a find session, so markup characters never match and
// formatting around a replacement is kept. With ReplaceAll, overlapping
// occurrences are replaced left to right without reusing replaced text.
func (s *Service) PatchPost(params types.PatchParams) types.PatchResult {
	path := params.Path
	fail := func(msg string, count int) types.PatchResult {
		return types.PatchResult{Success: false, Path: path, Message: msg, MatchCount: count}
	}

	if !s.pathFilter.IsPost(path) {
		return fail(fmt.Sprintf("Access denied: %s", path), 0)
	}

	if strings.TrimSpace(params.OldString) == "" {
		return fail("oldString cannot be empty", 0)
	}

	if params.OldString == params.NewString {
		return fail("oldString and newString must be different", 0)
	}

	post, err := s.ReadPost(path)
	if err != nil {
		return fail(fmt.Sprintf("Failed to patch post: %v", err), 0)
	}

	doc := document.Parse(post.Content)
	session := findreplace.New(doc)
	session.Open()
	defer session.Close()

	session.SetQuery(findreplace.Query{
		FindText:      params.OldString,
		ReplaceText:   params.NewString,
		CaseSensitive: !params.IgnoreCase,
	})
	occurrences := len(session.Matches())

	if occurrences == 0 {
		return fail(fmt.Sprintf("String not found in post: %q", truncate(params.OldString, 50)), 0)
	}

	if !params.ReplaceAll && occurrences > 1 {
		return fail(fmt.Sprintf("Found %d occurrences of the string. Use replaceAll=true to replace all occurrences, or provide a more specific string to match exactly one occurrence.", occurrences), occurrences)
	}

	replaced := 1
	if params.ReplaceAll {
		replaced = session.ReplaceAllDisjoint()
	} else {
		session.Replace()
	}

	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return fail(fmt.Sprintf("Failed to resolve path: %v", err), occurrences)
	}

	fm := maps.Clone(post.Frontmatter)
	s.stamp(fm, post.Meta)
	if err := s.writeFile(fullPath, path, fm, doc.Markup()); err != nil {
		return fail(fmt.Sprintf("Failed to write post: %v", err), occurrences)
	}

	plural := ""
	if replaced > 1 {
		plural = "s"
	}

	return types.PatchResult{
		Success:    true,
		Path:       path,
		Message:    fmt.Sprintf("Successfully replaced %d occurrence%s", replaced, plural),
		MatchCount: occurrences,
		Replaced:   replaced,
	}
}

// UpdateFrontmatter replaces or, with Merge, updates the frontmatter of a
// post. The body is left alone; timestamps are stamped as on any write.
func (s *Service) UpdateFrontmatter(params types.UpdateFrontmatterParams) error {
	path := params.Path
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return err
	}

	post, err := s.ReadPost(path)
	if err != nil {
		return err
	}

	fm := make(map[string]any)
	if params.Merge {
		maps.Copy(fm, post.Frontmatter)
	}
	maps.Copy(fm, params.Frontmatter)

	s.stamp(fm, post.Meta)
	if err := checkPublishable(fm, post.Content); err != nil {
		return fmt.Errorf("cannot publish %s: %w", path, err)
	}
	return s.writeFile(fullPath, path, fm, post.Content)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Exists checks if a path exists under the posts directory.
func (s *Service) Exists(path string) bool {
	fullPath, err := s.ResolvePath(path)
	if err != nil || !s.pathFilter.IsAllowed(path) {
		return false
	}

	_, err = os.Stat(fullPath)
	return err == nil
}

// IsDirectory checks if a path is a directory.
func (s *Service) IsDirectory(path string) (bool, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return false, err
	}

	if !s.pathFilter.IsAllowed(path) {
		return false, nil
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return false, nil
	}

	return info.IsDir(), nil
}

// DeletePost moves a post to the trash by setting its status to deleted, or
// removes the file when Purge is set.
func (s *Service) DeletePost(params types.DeleteParams) types.DeleteResult {
	path := params.Path
	fail := func(msg string) types.DeleteResult {
		return types.DeleteResult{Success: false, Path: path, Message: msg}
	}

	if path != params.ConfirmPath {
		return fail("Deletion cancelled: confirmation path does not match. For safety, both 'path' and 'confirmPath' must be identical.")
	}

	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return fail(fmt.Sprintf("Failed to resolve path: %v", err))
	}

	if !s.pathFilter.IsAllowed(path) {
		return fail(fmt.Sprintf("Access denied: %s", path))
	}

	if isDir, _ := s.IsDirectory(path); isDir {
		return fail(fmt.Sprintf("Cannot delete: %s is not a post", path))
	}

	if params.Purge {
		if err := os.Remove(fullPath); err != nil {
			switch {
			case errors.Is(err, fs.ErrNotExist):
				return fail(fmt.Sprintf("Post not found: %s", path))
			case errors.Is(err, fs.ErrPermission):
				return fail(fmt.Sprintf("Permission denied: %s", path))
			}
			return fail(fmt.Sprintf("Failed to delete post: %s - %v", path, err))
		}
		logging.L().Infow("post purged", "post", path)
		return types.DeleteResult{
			Success: true,
			Path:    path,
			Purged:  true,
			Message: fmt.Sprintf("Permanently deleted post: %s. This action cannot be undone.", path),
		}
	}

	post, err := s.ReadPost(path)
	if err != nil {
		return fail(fmt.Sprintf("Failed to delete post: %v", err))
	}
	if post.Meta.Status == types.StatusDeleted {
		return types.DeleteResult{Success: true, Path: path, Message: fmt.Sprintf("Post is already deleted: %s", path)}
	}

	fm := maps.Clone(post.Frontmatter)
	fm[frontmatter.KeyStatus] = types.StatusDeleted
	s.stamp(fm, post.Meta)
	if err := s.writeFile(fullPath, path, fm, post.Content); err != nil {
		return fail(fmt.Sprintf("Failed to delete post: %v", err))
	}

	return types.DeleteResult{
		Success: true,
		Path:    path,
		Message: fmt.Sprintf("Moved post to trash: %s. Set status to draft to restore it, or delete with purge=true to remove the file.", path),
	}
}

// RenamePost moves a post to a new path. The permalink follows the new file name.
func (s *Service) RenamePost(params types.RenameParams) types.RenameResult {
	oldPath, newPath := params.OldPath, params.NewPath
	fail := func(msg string) types.RenameResult {
		return types.RenameResult{Success: false, OldPath: oldPath, NewPath: newPath, Message: msg}
	}

	if !s.pathFilter.IsPost(oldPath) {
		return fail(fmt.Sprintf("Access denied: %s", oldPath))
	}
	if !s.pathFilter.IsPost(newPath) {
		return fail(fmt.Sprintf("Access denied: %s", newPath))
	}

	oldFullPath, err := s.ResolvePath(oldPath)
	if err != nil {
		return fail(fmt.Sprintf("Failed to resolve old path: %v", err))
	}
	newFullPath, err := s.ResolvePath(newPath)
	if err != nil {
		return fail(fmt.Sprintf("Failed to resolve new path: %v", err))
	}

	if _, err := os.Stat(oldFullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(fmt.Sprintf("Source post not found: %s", oldPath))
		}
		return fail(fmt.Sprintf("Failed to read source post: %v", err))
	}

	if !params.Overwrite {
		if _, err := os.Stat(newFullPath); err == nil {
			return fail(fmt.Sprintf("Target post already exists: %s. Use overwrite=true to replace it.", newPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(newFullPath), 0o755); err != nil {
		return fail(fmt.Sprintf("Failed to create directory: %v", err))
	}

	if err := os.Rename(oldFullPath, newFullPath); err != nil {
		return fail(fmt.Sprintf("Failed to move post: %v", err))
	}

	return types.RenameResult{
		Success: true,
		OldPath: oldPath,
		NewPath: newPath,
		Message: fmt.Sprintf("Successfully moved post from %s to %s", oldPath, newPath),
	}
}

// GetPostsDir returns the absolute posts directory.
func (s *Service) GetPostsDir() string {
	return s.postsDir
}
