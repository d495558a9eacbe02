package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/workspace"
)

type (
	// PathInput names an open post.
	PathInput struct {
		Path string `json:"path" jsonschema:"Path to the post relative to the posts directory"`
	}

	// OpenOutput describes a newly opened post.
	OpenOutput struct {
		Document workspace.Info `json:"document"`
		Text     string         `json:"text" jsonschema:"Plain text of the document; offsets count its characters, embeds count as one"`
	}

	// CloseInput contains parameters for closing a post.
	CloseInput struct {
		Path    string `json:"path" jsonschema:"Path to the open post"`
		Discard bool   `json:"discard,omitempty" jsonschema:"Close even if there are unsaved changes (default: false)"`
	}

	// CloseOutput contains the result of closing a post.
	CloseOutput struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
	}

	// InsertInput contains parameters for inserting text.
	InsertInput struct {
		Path   string `json:"path" jsonschema:"Path to the open post"`
		Offset int    `json:"offset" jsonschema:"Character offset to insert at"`
		Text   string `json:"text" jsonschema:"Text to insert; it takes the formatting of the preceding character"`
	}

	// DeleteTextInput contains parameters for deleting text.
	DeleteTextInput struct {
		Path   string `json:"path" jsonschema:"Path to the open post"`
		Offset int    `json:"offset" jsonschema:"Character offset of the first character to delete"`
		Length int    `json:"length" jsonschema:"Number of characters to delete"`
	}

	// FormatInput contains parameters for formatting a range.
	FormatInput struct {
		Path      string `json:"path" jsonschema:"Path to the open post"`
		Offset    int    `json:"offset" jsonschema:"Character offset of the range"`
		Length    int    `json:"length" jsonschema:"Length of the range"`
		Attribute string `json:"attribute" jsonschema:"bold, italic, code or link"`
		Enabled   bool   `json:"enabled,omitempty" jsonschema:"Set (true) or clear (false) bold, italic or code"`
		Link      string `json:"link,omitempty" jsonschema:"Link target for attribute=link; empty removes the link"`
	}

	// InsertBreakInput contains parameters for inserting a break.
	InsertBreakInput struct {
		Path   string `json:"path" jsonschema:"Path to the open post"`
		Offset int    `json:"offset" jsonschema:"Character offset to insert the break at"`
		Kind   string `json:"kind,omitempty" jsonschema:"page or section (default: page)"`
	}

	// EditorOutput describes an open post after an operation, with the state
	// of its find session when one is open.
	EditorOutput struct {
		Document workspace.Info      `json:"document"`
		Find     *findreplace.Status `json:"find,omitempty"`
	}

	// DocStatsOutput contains document statistics.
	DocStatsOutput struct {
		Path  string         `json:"path"`
		Stats document.Stats `json:"stats"`
		Links []string       `json:"links,omitempty"`
	}

	// FindInput contains parameters for setting the find query.
	FindInput struct {
		Path          string `json:"path" jsonschema:"Path to the open post"`
		FindText      string `json:"findText" jsonschema:"Text to find; empty clears the search"`
		ReplaceText   string `json:"replaceText,omitempty" jsonschema:"Replacement used by replace and replace_all"`
		CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"Case sensitive matching (default: false)"`
	}

	// FindOutput is the state of a find session.
	FindOutput struct {
		Path      string             `json:"path"`
		Status    findreplace.Status `json:"status"`
		Active    *findreplace.Match `json:"active,omitempty"`
		ActiveRow int                `json:"activeRow,omitempty"`
		ScrollTop int                `json:"scrollTop"`
		Excerpt   string             `json:"excerpt,omitempty" jsonschema:"Line containing the active match"`
		Replaced  int                `json:"replaced,omitempty"`
	}
)

func registerEditorTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "open",
		Description: "Open a post as a live document for editing. Returns its plain text; editor offsets count its characters.",
	}, handleOpen)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save",
		Description: "Save an open document back to its post, keeping the frontmatter. Search highlights are never saved.",
	}, handleSave)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "close",
		Description: "Close an open document and its find session. Refuses to drop unsaved changes unless discard=true.",
	}, handleClose)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insert",
		Description: "Insert text into an open document at a character offset.",
	}, handleInsert)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_text",
		Description: "Delete a range of characters from an open document.",
	}, handleDeleteText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insert_break",
		Description: "Insert a page or section break into an open document.",
	}, handleInsertBreak)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format",
		Description: "Set or clear bold, italic, code or a link over a range of an open document.",
	}, handleFormat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "doc_stats",
		Description: "Word, character, page and section counts and reading time of an open document.",
	}, handleDocStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_open",
		Description: "Start a find session on an open document.",
	}, handleFindOpen)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find",
		Description: "Set the find query of an open document, starting a find session if needed. Every occurrence is highlighted, overlapping ones included, and the first becomes active.",
	}, handleFind)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_next",
		Description: "Make the next match active, wrapping to the first.",
	}, handleFindNext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_previous",
		Description: "Make the previous match active, wrapping to the last.",
	}, handleFindPrevious)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "replace",
		Description: "Replace the active match with the replacement text, then search again.",
	}, handleReplace)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "replace_all",
		Description: "Replace every match with the replacement text and clear the search.",
	}, handleReplaceAll)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_close",
		Description: "End the find session and remove its highlights.",
	}, handleFindClose)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_status",
		Description: "Current match position (N of M), all matches, the active match and scroll position, and suggestions when nothing matches.",
	}, handleFindStatus)
}

func editorOutput(path string, info workspace.Info) EditorOutput {
	out := EditorOutput{Document: info}
	if !info.FindOpen {
		return out
	}
	_ = editor.Find(path, func(s *findreplace.Session, _ *document.Document) error {
		st := s.Status()
		out.Find = &st
		return nil
	})
	return out
}

func handleOpen(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, OpenOutput, error) {
	path := strings.TrimSpace(input.Path)
	info, err := editor.Open(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, OpenOutput{}, err
	}

	var text string
	_ = editor.Document(path, func(d *document.Document) error {
		text = d.PlainText()
		return nil
	})
	return nil, OpenOutput{Document: info, Text: text}, nil
}

func handleSave(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, EditorOutput, error) {
	path := strings.TrimSpace(input.Path)
	info, err := editor.Save(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, EditorOutput{}, err
	}
	return nil, editorOutput(path, info), nil
}

func handleClose(ctx context.Context, req *mcp.CallToolRequest, input CloseInput) (*mcp.CallToolResult, CloseOutput, error) {
	path := strings.TrimSpace(input.Path)

	info, err := editor.Info(path)
	if errors.Is(err, workspace.ErrNotOpen) {
		return nil, CloseOutput{Success: true, Path: path}, nil
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CloseOutput{Success: false, Path: path}, err
	}
	if info.Dirty && !input.Discard {
		return &mcp.CallToolResult{IsError: true}, CloseOutput{Success: false, Path: path},
			fmt.Errorf("%s has unsaved changes: save it first or set discard=true", info.Path)
	}

	editor.Close(path)
	return nil, CloseOutput{Success: true, Path: info.Path}, nil
}

func handleInsert(ctx context.Context, req *mcp.CallToolRequest, input InsertInput) (*mcp.CallToolResult, EditorOutput, error) {
	path := strings.TrimSpace(input.Path)
	info, err := editor.Insert(path, input.Offset, input.Text)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, EditorOutput{}, err
	}
	return nil, editorOutput(path, info), nil
}

func handleDeleteText(ctx context.Context, req *mcp.CallToolRequest, input DeleteTextInput) (*mcp.CallToolResult, EditorOutput, error) {
	path := strings.TrimSpace(input.Path)
	info, err := editor.Delete(path, input.Offset, input.Length)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, EditorOutput{}, err
	}
	return nil, editorOutput(path, info), nil
}

func handleInsertBreak(ctx context.Context, req *mcp.CallToolRequest, input InsertBreakInput) (*mcp.CallToolResult, EditorOutput, error) {
	path := strings.TrimSpace(input.Path)

	var kind document.EmbedKind
	switch strings.ToLower(strings.TrimSpace(input.Kind)) {
	case "", "page":
		kind = document.PageBreak
	case "section":
		kind = document.SectionBreak
	default:
		return &mcp.CallToolResult{IsError: true}, EditorOutput{},
			fmt.Errorf("unknown break kind %q: use page or section", input.Kind)
	}

	info, err := editor.InsertBreak(path, input.Offset, kind)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, EditorOutput{}, err
	}
	return nil, editorOutput(path, info), nil
}

func handleFormat(ctx context.Context, req *mcp.CallToolRequest, input FormatInput) (*mcp.CallToolResult, EditorOutput, error) {
	path := strings.TrimSpace(input.Path)
	attr := strings.ToLower(strings.TrimSpace(input.Attribute))

	var value any = input.Enabled
	if attr == document.AttrLink {
		value = strings.TrimSpace(input.Link)
	}

	info, err := editor.Format(path, input.Offset, input.Length, attr, value)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, EditorOutput{}, err
	}
	return nil, editorOutput(path, info), nil
}

func handleDocStats(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, DocStatsOutput, error) {
	path := strings.TrimSpace(input.Path)
	out := DocStatsOutput{Path: path}
	err := editor.Document(path, func(d *document.Document) error {
		out.Stats = d.Stats()
		out.Links = d.Links()
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DocStatsOutput{}, err
	}
	return nil, out, nil
}

// withFind runs fn on the find session of an open post and reports the
// session state afterwards.
func withFind(path string, fn func(*findreplace.Session) int) (FindOutput, error) {
	out := FindOutput{Path: path}
	err := editor.Find(path, func(s *findreplace.Session, d *document.Document) error {
		if fn != nil {
			out.Replaced = fn(s)
		}
		out.Status = s.Status()
		out.ScrollTop = d.ScrollTop()
		if m, ok := s.Active(); ok {
			out.Active = &m
			out.ActiveRow = d.Bounds(m.Index).Top
			out.Excerpt = lineAt(d.PlainText(), m.Index)
		}
		return nil
	})
	return out, err
}

// lineAt returns the line of text containing the rune offset.
func lineAt(text string, offset int) string {
	runes := []rune(text)
	if offset < 0 || offset >= len(runes) {
		return ""
	}
	start, end := offset, offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return string(runes[start:end])
}

func findResult(path string, fn func(*findreplace.Session) int) (*mcp.CallToolResult, FindOutput, error) {
	out, err := withFind(path, fn)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, FindOutput{}, err
	}
	return nil, out, nil
}

func handleFindOpen(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		s.Open()
		return 0
	})
}

func handleFind(ctx context.Context, req *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		s.Open()
		s.SetQuery(findreplace.Query{
			FindText:      input.FindText,
			ReplaceText:   input.ReplaceText,
			CaseSensitive: input.CaseSensitive,
		})
		return 0
	})
}

func handleFindNext(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		s.Next()
		return 0
	})
}

func handleFindPrevious(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		s.Previous()
		return 0
	})
}

func handleReplace(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		if _, ok := s.Active(); !ok {
			return 0
		}
		s.Replace()
		return 1
	})
}

func handleReplaceAll(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		return s.ReplaceAll()
	})
}

func handleFindClose(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), func(s *findreplace.Session) int {
		s.Close()
		return 0
	})
}

func handleFindStatus(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, FindOutput, error) {
	return findResult(strings.TrimSpace(input.Path), nil)
}
