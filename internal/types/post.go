// Package types defines the data structures shared by the post store, search
// and the MCP server.
package types

import "time"

// Post lifecycle states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

// Write modes.
const (
	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
	ModePrepend   = "prepend"
)

type (
	// ParsedPost is a post split into frontmatter and markup body.
	ParsedPost struct {
		Frontmatter     map[string]any `json:"frontmatter"`
		Meta            PostMeta       `json:"meta"`
		Content         string         `json:"content"`
		OriginalContent string         `json:"originalContent"`
	}

	// PostMeta is the typed view of the frontmatter keys blogpad understands.
	PostMeta struct {
		Title   string    `json:"title,omitempty"`
		Author  string    `json:"author,omitempty"`
		Project string    `json:"project,omitempty"`
		Tags    []string  `json:"tags,omitempty"`
		Status  string    `json:"status,omitempty"`
		Created time.Time `json:"created,omitzero"`
		Updated time.Time `json:"updated,omitzero"`
	}

	// PostWriteParams contains parameters for writing a post.
	PostWriteParams struct {
		Path        string         `json:"path"`
		Content     string         `json:"content"`
		Frontmatter map[string]any `json:"frontmatter,omitempty"`
		Mode        string         `json:"mode,omitempty"` // "overwrite", "append", "prepend"
	}

	// PostInfo summarises a post for listings.
	PostInfo struct {
		Path      string   `json:"path"`
		Title     string   `json:"title"`
		Author    string   `json:"author,omitempty"`
		Project   string   `json:"project,omitempty"`
		Tags      []string `json:"tags,omitempty"`
		Status    string   `json:"status"`
		Created   string   `json:"created,omitempty"`
		Updated   string   `json:"updated,omitempty"`
		Size      int64    `json:"size"`
		Permalink string   `json:"permalink,omitempty"`
	}
)

// Active reports whether the post has not been soft-deleted.
func (m PostMeta) Active() bool {
	return m.Status != StatusDeleted
}
