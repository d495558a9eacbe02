package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blogpad/blogpad-mcp/internal/types"
)

type (
	// ReadInput contains parameters for reading a post.
	ReadInput struct {
		Path   string `json:"path" jsonschema:"Path to the post relative to the posts directory"`
		Offset int    `json:"offset,omitempty" jsonschema:"Line offset to start reading from (default: 0)"`
		Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of lines to return (default: all)"`
	}

	// ReadOutput contains the result of reading a post.
	ReadOutput struct {
		Frontmatter map[string]any `json:"fm,omitempty"`
		Content     string         `json:"content"`
		TotalLines  int            `json:"totalLines"`
		Truncated   bool           `json:"truncated,omitempty"`
		Permalink   string         `json:"permalink"`
	}

	// WriteInput contains parameters for writing a post.
	WriteInput struct {
		Path        string         `json:"path" jsonschema:"Path to the post relative to the posts directory"`
		Content     string         `json:"content" jsonschema:"Markup content of the post"`
		Frontmatter map[string]any `json:"frontmatter,omitempty" jsonschema:"Frontmatter object: title, author, project, tags, status (optional)"`
		Mode        string         `json:"mode,omitempty" jsonschema:"overwrite, append or prepend (default: overwrite)"`
	}

	// WriteOutput contains the result of writing a post.
	WriteOutput struct {
		Success   bool   `json:"success"`
		Path      string `json:"path"`
		Permalink string `json:"permalink,omitempty"`
	}

	// DeleteInput contains parameters for deleting a post.
	DeleteInput struct {
		Path    string `json:"path" jsonschema:"Path to the post relative to the posts directory"`
		Confirm string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
		Purge   bool   `json:"purge,omitempty" jsonschema:"Remove the file instead of marking the post deleted (default: false)"`
	}

	// DeleteOutput contains the result of deleting a post.
	DeleteOutput struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
		Purged  bool   `json:"purged,omitempty"`
		Message string `json:"message,omitempty"`
	}

	// RenameInput contains parameters for renaming/moving a post.
	RenameInput struct {
		Path      string `json:"path" jsonschema:"Current path of the post"`
		NewPath   string `json:"newPath" jsonschema:"New path for the post"`
		Overwrite bool   `json:"overwrite,omitempty" jsonschema:"Allow overwriting existing file (default: false)"`
	}

	// RenameOutput contains the result of renaming a post.
	RenameOutput struct {
		Success   bool   `json:"success"`
		OldPath   string `json:"oldPath"`
		NewPath   string `json:"newPath"`
		Permalink string `json:"permalink,omitempty"`
	}

	// EditInput contains parameters for editing a post on disk.
	EditInput struct {
		Path        string         `json:"path" jsonschema:"Path to the post relative to the posts directory"`
		OldText     string         `json:"oldText,omitempty" jsonschema:"Text to replace, matched against the rendered text so markup is ignored"`
		NewText     string         `json:"newText,omitempty" jsonschema:"New text to insert in place of oldText; it keeps the formatting of the text it replaces"`
		ReplaceAll  bool           `json:"replaceAll,omitempty" jsonschema:"If true, replace all occurrences of oldText"`
		IgnoreCase  bool           `json:"ignoreCase,omitempty" jsonschema:"Match oldText case-insensitively (default: false)"`
		Frontmatter map[string]any `json:"frontmatter,omitempty" jsonschema:"Frontmatter fields to update (merged with existing)"`
	}

	// EditOutput contains the result of editing a post.
	EditOutput struct {
		Success      bool   `json:"success"`
		Path         string `json:"path"`
		Replacements int    `json:"replacements,omitempty"`
	}

	// ListInput contains parameters for listing posts.
	ListInput struct {
		Author  string   `json:"author,omitempty" jsonschema:"Only posts by this author"`
		Project string   `json:"project,omitempty" jsonschema:"Only posts in this project"`
		Tags    []string `json:"tags,omitempty" jsonschema:"Only posts carrying any of these tags"`
		Status  string   `json:"status,omitempty" jsonschema:"draft, published or deleted (default: every status except deleted)"`
		Keyword string   `json:"keyword,omitempty" jsonschema:"Only posts whose title or text contains this keyword"`
		From    string   `json:"from,omitempty" jsonschema:"Only posts created on or after this date (YYYY-MM-DD or RFC 3339)"`
		To      string   `json:"to,omitempty" jsonschema:"Only posts created on or before this date (YYYY-MM-DD or RFC 3339)"`
		Limit   int      `json:"limit,omitempty" jsonschema:"Maximum results (default: 50)"`
		Offset  int      `json:"offset,omitempty" jsonschema:"Skip first N results for pagination (default: 0)"`
	}

	// ListOutput contains one page of posts, newest first.
	ListOutput struct {
		Posts   []types.PostInfo `json:"posts"`
		Total   int              `json:"total"`
		HasMore bool             `json:"hasMore,omitempty"`
	}

	// SearchInput contains parameters for searching posts.
	SearchInput struct {
		Query         string `json:"query" jsonschema:"Search query (plain text or regex if useRegex=true)"`
		UseRegex      bool   `json:"useRegex,omitempty" jsonschema:"Treat query as regex pattern (default: false)"`
		CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"Case sensitive search (default: false)"`
		ContextLines  int    `json:"contextLines,omitempty" jsonschema:"Lines of context before/after match (default: 2)"`
		Limit         int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 15)"`
		Offset        int    `json:"offset,omitempty" jsonschema:"Skip first N results for pagination (default: 0)"`
		Status        string `json:"status,omitempty" jsonschema:"Only posts with this status (default: every status except deleted)"`
		Author        string `json:"author,omitempty" jsonschema:"Only posts by this author"`
		Tag           string `json:"tag,omitempty" jsonschema:"Only posts carrying this tag"`
	}

	// SearchOutput contains search results.
	SearchOutput struct {
		Results    []types.SearchResult `json:"results"`
		TotalPosts int                  `json:"totalPosts"`
		HasMore    bool                 `json:"hasMore,omitempty"`
	}

	// StatsInput contains parameters for post statistics.
	StatsInput struct {
		Author string `json:"author,omitempty" jsonschema:"Only count posts by this author (default: all authors)"`
	}

	// RelatedInput contains parameters for finding related posts.
	RelatedInput struct {
		Path  string `json:"path" jsonschema:"Path to the post relative to the posts directory"`
		Tags  bool   `json:"tags,omitempty" jsonschema:"Find posts sharing tags or the project with this post (default: false)"`
		Links bool   `json:"links,omitempty" jsonschema:"Find posts linked to/from this post by permalink (default: false)"`
	}

	// RelatedPost represents a related post.
	RelatedPost struct {
		Path      string   `json:"path"`
		Title     string   `json:"title,omitempty"`
		Relation  string   `json:"relation"`
		Tags      []string `json:"tags,omitempty"`
		Permalink string   `json:"permalink"`
	}

	// RelatedOutput contains related posts.
	RelatedOutput struct {
		Path    string        `json:"path"`
		Related []RelatedPost `json:"related"`
	}

	// TagsInput contains parameters for listing all tags.
	TagsInput struct{}

	// TagInfo represents a tag with its occurrence count.
	TagInfo struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	}

	// TagsOutput contains all unique tags of the active posts with counts.
	TagsOutput struct {
		Tags          []TagInfo `json:"tags"`
		TotalTags     int       `json:"totalTags"`
		TotalPosts    int       `json:"totalPosts"`
		PostsWithTags int       `json:"postsWithTags"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "read",
		Description: "Read a post. Returns frontmatter, markup content and permalink. Supports pagination with offset/limit for large posts.",
	}, handleRead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "write",
		Description: "Create, overwrite, append to or prepend to a post. New posts start as drafts; publishing requires a title and content.",
	}, handleWrite)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete",
		Description: "Delete a post. Requires confirm='yes'. Posts are marked deleted and hidden from listings unless purge=true removes the file.",
	}, handleDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename",
		Description: "Move or rename a post to a new path. The permalink follows the file name.",
	}, handleRename)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit",
		Description: "Edit a post on disk by replacing text and/or updating frontmatter. oldText is matched against the rendered text, so formatting markers never need to be spelled out and replacements keep their formatting. For frontmatter, fields are merged with existing.",
	}, handleEdit)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List posts newest first, filtered by author, project, tags, status, keyword and creation date.",
	}, handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search across the rendered text of all posts. Supports regex and case-insensitive search. Results sorted by title matches first, then path. Returns matching lines with context.",
	}, handleSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Count posts by status, optionally for one author.",
	}, handleStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "related",
		Description: "Find posts related to a given post. Use tags=true to find posts sharing tags or the project, links=true to find posts that link to or are linked from this post.",
	}, handleRelated)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tags",
		Description: "List all unique tags across the active posts with occurrence counts.",
	}, handleTags)
}
