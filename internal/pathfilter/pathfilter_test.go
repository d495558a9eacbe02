package pathfilter

import (
	"slices"
	"strings"
	"testing"

	"github.com/blogpad/blogpad-mcp/internal/types"
)

func TestIsAllowed_Defaults(t *testing.T) {
	filter := New(nil)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"post at root", "hello-world.md", true},
		{"nested post", "2024/03/launch-day.md", true},
		{"markdown extension", "drafts/ideas.markdown", true},
		{"upper-case extension", "README.MD", true},
		{"directory", "drafts", true},
		{"directory with trailing slash", "drafts/2024/", true},
		{"dotted directory name", "1. Travel", true},
		{"file in dotted directory", "1. Travel/lisbon.md", true},
		{"only an extension", ".md", true},
		{"blogpad state", ".blogpad/workspace.json", false},
		{"blogpad state post", ".blogpad/trash/old.md", false},
		{"git metadata", ".git/HEAD", false},
		{"node modules", "node_modules/theme/index.js", false},
		{"finder metadata", "images/.DS_Store", false},
		{"windows thumbnails", "images/Thumbs.db", false},
		{"image", "images/cover.png", false},
		{"script", "1. Travel/map.js", false},
		{"backslash separators", "drafts\\2024\\post.md", true},
		{"backslash into ignored dir", ".git\\config", false},
		{"unicode", "旅行/東京.md", true},
		{"spaces", "my drafts/first post.md", true},
		{"regex metacharacters", "c++ (part 1) [draft] $5^2|x.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsAllowed(tt.path); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsAllowed_CustomPatterns(t *testing.T) {
	filter := New(&types.PathFilterConfig{
		IgnoredPatterns: []string{"archive/**", "tmp*/**", "v1.0/**", "[old]/*.md", "draft-?.md", "../**"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"archive/2019/post.md", false},
		{"blog/archive/post.md", true},
		{"tmp/post.md", false},
		{"tmp-2024/post.md", false},
		{"atmp/post.md", true},
		{"v1.0/post.md", false},
		{"v1x0/post.md", true},
		{"[old]/post.md", false},
		{"[old]/nested/post.md", true},
		{"old/post.md", true},
		{"draft-1.md", false},
		{"draft-12.md", true},
		{"../secret.md", false},
		{"../../etc/passwd", false},
		{".git/HEAD", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.IsAllowed(tt.path); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsPost(t *testing.T) {
	filter := New(&types.PathFilterConfig{AllowedExtensions: []string{".mdx"}})

	tests := []struct {
		path string
		want bool
	}{
		{"posts/hello.md", true},
		{"posts/hello.markdown", true},
		{"posts/hello.mdx", true},
		{"posts", false},
		{"posts/", false},
		{".gitignore", false},
		{".git/hello.md", false},
		{"image.png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.IsPost(tt.path); got != tt.want {
				t.Errorf("IsPost(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsAllowed_LongPath(t *testing.T) {
	path := strings.Repeat("a/", 100) + "post.md"
	if !New(nil).IsAllowed(path) {
		t.Errorf("IsAllowed(%d-level path) = false, want true", 100)
	}
}

func TestFilterPaths(t *testing.T) {
	filter := New(nil)

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name: "keeps posts in order",
			paths: []string{
				"zebra.md",
				".blogpad/config.json",
				"drafts",
				"archive/old.markdown",
				".git/HEAD",
				"notes.txt",
				"alpha.md",
			},
			want: []string{"zebra.md", "archive/old.markdown", "alpha.md"},
		},
		{name: "empty", paths: []string{}},
		{
			name:  "nothing but noise",
			paths: []string{".blogpad/app.json", "node_modules/pkg/index.js", "cover.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.FilterPaths(tt.paths)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_DefaultsNotMutated(t *testing.T) {
	before := slices.Clone(DefaultIgnoredPatterns)
	New(&types.PathFilterConfig{
		IgnoredPatterns:   []string{"tmp/**"},
		AllowedExtensions: []string{".txt"},
	})

	if !slices.Equal(before, DefaultIgnoredPatterns) {
		t.Errorf("DefaultIgnoredPatterns = %v, want %v", DefaultIgnoredPatterns, before)
	}
	if slices.Contains(DefaultExtensions, ".txt") {
		t.Error("New() appended custom extensions to DefaultExtensions")
	}
	if !New(nil).IsAllowed("tmp/x.md") {
		t.Error("IsAllowed(\"tmp/x.md\") = false, want true without config")
	}
}
