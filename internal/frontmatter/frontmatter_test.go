package frontmatter

import (
	"strings"
	"testing"
	"time"

	"github.com/blogpad/blogpad-mcp/internal/types"
)

func TestHandler_ParseWithFrontmatter(t *testing.T) {
	handler := New()

	content := `---
title: First Post
author: ada
tags: [Go, editing]
status: published
created: 2023-01-01
---

# First Post

This is a post with frontmatter.`

	result := handler.Parse(content)

	if result.Frontmatter["title"] != "First Post" {
		t.Errorf("Frontmatter[title] = %v, want %q", result.Frontmatter["title"], "First Post")
	}

	tags, ok := result.Frontmatter["tags"].([]any)
	if !ok {
		t.Errorf("Frontmatter[tags] is not []any: %T", result.Frontmatter["tags"])
	} else if len(tags) != 2 || tags[0] != "Go" || tags[1] != "editing" {
		t.Errorf("Frontmatter[tags] = %v, want [Go, editing]", tags)
	}

	if result.Meta.Title != "First Post" || result.Meta.Author != "ada" {
		t.Errorf("Meta = %+v, want title and author decoded", result.Meta)
	}
	if result.Meta.Status != types.StatusPublished {
		t.Errorf("Meta.Status = %q, want %q", result.Meta.Status, types.StatusPublished)
	}
	if want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); !result.Meta.Created.Equal(want) {
		t.Errorf("Meta.Created = %v, want %v", result.Meta.Created, want)
	}
	if len(result.Meta.Tags) != 2 || result.Meta.Tags[0] != "editing" || result.Meta.Tags[1] != "go" {
		t.Errorf("Meta.Tags = %v, want [editing go]", result.Meta.Tags)
	}

	expectedContent := "# First Post\n\nThis is a post with frontmatter."
	if strings.TrimSpace(result.Content) != expectedContent {
		t.Errorf("Content = %q, want %q", strings.TrimSpace(result.Content), expectedContent)
	}
}

func TestHandler_ParseCRLF(t *testing.T) {
	handler := New()

	result := handler.Parse("---\r\ntitle: Windows\r\n---\r\nBody\r\n")

	if result.Meta.Title != "Windows" {
		t.Errorf("Meta.Title = %q, want %q", result.Meta.Title, "Windows")
	}
	if result.Content != "Body\n" {
		t.Errorf("Content = %q, want %q", result.Content, "Body\n")
	}
}

func TestHandler_ParseClosingDelimiterAtEnd(t *testing.T) {
	handler := New()

	result := handler.Parse("---\ntitle: Empty\n---")

	if result.Meta.Title != "Empty" {
		t.Errorf("Meta.Title = %q, want %q", result.Meta.Title, "Empty")
	}
	if result.Content != "" {
		t.Errorf("Content = %q, want empty", result.Content)
	}
}

func TestHandler_ParseInvalidYAMLIsBody(t *testing.T) {
	handler := New()

	content := "---\ntitle: [unclosed\n---\nBody"
	result := handler.Parse(content)

	if len(result.Frontmatter) != 0 {
		t.Errorf("Frontmatter = %v, want empty", result.Frontmatter)
	}
	if result.Content != content {
		t.Errorf("Content = %q, want %q", result.Content, content)
	}
}

func TestHandler_ParseWithoutFrontmatter(t *testing.T) {
	handler := New()

	content := `# Untitled

A post without frontmatter.`

	result := handler.Parse(content)

	if len(result.Frontmatter) != 0 {
		t.Errorf("Frontmatter = %v, want empty map", result.Frontmatter)
	}

	if result.Content != content {
		t.Errorf("Content = %q, want %q", result.Content, content)
	}
}

func TestHandler_StringifyWithFrontmatter(t *testing.T) {
	handler := New()

	fm := map[string]any{
		"title": "Hello",
		"tags":  []string{"test", "example"},
	}
	content := "# Hello\n\nContent here."

	result, err := handler.Stringify(fm, content)
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}

	if !strings.Contains(result, "---") {
		t.Error("Result should contain frontmatter delimiters")
	}
	if !strings.Contains(result, "title: Hello") {
		t.Error("Result should contain title")
	}
	if !strings.Contains(result, "tags:") {
		t.Error("Result should contain tags")
	}
	if !strings.Contains(result, "# Hello") {
		t.Error("Result should contain content")
	}
}

func TestHandler_StringifyWithoutFrontmatter(t *testing.T) {
	handler := New()

	content := "# Hello\n\nContent here."

	result, err := handler.Stringify(map[string]any{}, content)
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}

	if result != content {
		t.Errorf("Result = %q, want %q", result, content)
	}
}

func TestHandler_ValidateValidFrontmatter(t *testing.T) {
	handler := New()

	fm := map[string]any{
		"title":   "A Valid Post",
		"tags":    []string{"tag1", "tag2"},
		"count":   42,
		"enabled": true,
	}

	result := handler.Validate(fm)

	if !result.IsValid {
		t.Errorf("IsValid = false, want true. Errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", result.Errors)
	}
}

func TestHandler_ValidateInvalidFrontmatterWithFunction(t *testing.T) {
	handler := New()

	fm := map[string]any{
		"title":       "Invalid",
		"badFunction": func() string { return "not allowed" },
	}

	result := handler.Validate(fm)

	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Errors) == 0 {
		t.Error("Errors should not be empty")
	}

	// Check that error mentions functions
	hasError := false
	for _, err := range result.Errors {
		if strings.Contains(err, "Functions are not allowed") || strings.Contains(err, "Invalid YAML") {
			hasError = true
			break
		}
	}
	if !hasError {
		t.Errorf("Errors should mention functions or invalid YAML, got: %v", result.Errors)
	}
}

func TestHandler_ValidatePostKeys(t *testing.T) {
	handler := New()

	tests := []struct {
		name      string
		fm        map[string]any
		wantValid bool
		wantError string
	}{
		{
			name:      "known status",
			fm:        map[string]any{"title": "T", "status": "draft"},
			wantValid: true,
		},
		{
			name:      "unknown status",
			fm:        map[string]any{"title": "T", "status": "archived"},
			wantValid: false,
			wantError: "status must be one of",
		},
		{
			name:      "title not a string",
			fm:        map[string]any{"title": 12},
			wantValid: false,
			wantError: "title must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.Validate(tt.fm)
			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (errors: %v)", result.IsValid, tt.wantValid, result.Errors)
			}
			if tt.wantError == "" {
				return
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantError) {
					found = true
				}
			}
			if !found {
				t.Errorf("Errors = %v, want one containing %q", result.Errors, tt.wantError)
			}
		})
	}
}

func TestHandler_ValidateWarnings(t *testing.T) {
	handler := New()

	result := handler.Validate(map[string]any{"tags": []any{"ok", 3}})

	if !result.IsValid {
		t.Fatalf("IsValid = false, want true. Errors: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Warnings = %v, want a tag warning and a missing title warning", result.Warnings)
	}
}

func TestDecodeMeta(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	meta := DecodeMeta(map[string]any{
		"title":   "  Spaced  ",
		"tags":    "Go, go ,Editing",
		"created": created,
		"updated": "2024-06-01T10:00:00Z",
		"project": 7,
	})

	if meta.Title != "Spaced" {
		t.Errorf("Title = %q, want %q", meta.Title, "Spaced")
	}
	if meta.Status != types.StatusDraft {
		t.Errorf("Status = %q, want default %q", meta.Status, types.StatusDraft)
	}
	if meta.Project != "" {
		t.Errorf("Project = %q, want wrong-typed value ignored", meta.Project)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "editing" || meta.Tags[1] != "go" {
		t.Errorf("Tags = %v, want [editing go]", meta.Tags)
	}
	if !meta.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", meta.Created, created)
	}
	if want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC); !meta.Updated.Equal(want) {
		t.Errorf("Updated = %v, want %v", meta.Updated, want)
	}
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	got := FormatTime(time.Date(2024, 1, 2, 12, 0, 0, 0, loc))
	if got != "2024-01-02T10:00:00Z" {
		t.Errorf("FormatTime() = %q, want %q", got, "2024-01-02T10:00:00Z")
	}
}
