// Package pathfilter decides which paths under the posts directory are
// visible to blogpad.
package pathfilter

import (
	"regexp"
	"strings"

	"github.com/blogpad/blogpad-mcp/internal/types"
)

// DefaultIgnoredPatterns are hidden regardless of configuration.
var DefaultIgnoredPatterns = []string{
	".blogpad/**",
	".git/**",
	"node_modules/**",
	"**.DS_Store",
	"**Thumbs.db",
}

// DefaultExtensions are the file extensions a post may have.
var DefaultExtensions = []string{".md", ".markdown"}

var extensionPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)

// PathFilter filters allowed paths and file types.
type PathFilter struct {
	ignored           []*regexp.Regexp
	allowedExtensions []string
}

// New creates a PathFilter from the defaults plus config.
func New(config *types.PathFilterConfig) *PathFilter {
	patterns := DefaultIgnoredPatterns
	extensions := DefaultExtensions
	if config != nil {
		patterns = append(patterns[:len(patterns):len(patterns)], config.IgnoredPatterns...)
		extensions = append(extensions[:len(extensions):len(extensions)], config.AllowedExtensions...)
	}

	pf := &PathFilter{}
	for _, p := range patterns {
		if re, err := compileGlob(p); err == nil {
			pf.ignored = append(pf.ignored, re)
		}
	}
	for _, ext := range extensions {
		pf.allowedExtensions = append(pf.allowedExtensions, strings.ToLower(ext))
	}
	return pf
}

// compileGlob turns a glob into an anchored regexp: ** crosses directories,
// * and ? do not.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(strings.ReplaceAll(pattern, "\\", "/"))
	quoted = strings.ReplaceAll(quoted, `\*\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\*`, "[^/]*")
	quoted = strings.ReplaceAll(quoted, `\?`, "[^/]")
	return regexp.Compile("^" + quoted + "$")
}

// IsAllowed reports whether path may be read or written. Directories are
// allowed unless ignored; files also need an allowed extension.
func (pf *PathFilter) IsAllowed(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, re := range pf.ignored {
		if re.MatchString(path) {
			return false
		}
	}

	if len(pf.allowedExtensions) == 0 || !isFile(path) {
		return true
	}
	return pf.hasAllowedExtension(path)
}

// IsPost reports whether path names a post file.
func (pf *PathFilter) IsPost(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	return isFile(path) && pf.hasAllowedExtension(path) && pf.IsAllowed(path)
}

func (pf *PathFilter) hasAllowedExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range pf.allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isFile reports whether the last path component has a file extension.
func isFile(path string) bool {
	if strings.HasSuffix(path, "/") {
		return false
	}

	name := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		// no extension, or a dotfile like .gitignore
		return false
	}
	return extensionPattern.MatchString(name[dot+1:])
}

// FilterPaths returns the paths that name posts, in order.
func (pf *PathFilter) FilterPaths(paths []string) []string {
	var allowed []string
	for _, path := range paths {
		if pf.IsPost(path) {
			allowed = append(allowed, path)
		}
	}
	return allowed
}
