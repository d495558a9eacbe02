// Package frontmatter handles the YAML header of a post.
package frontmatter

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blogpad/blogpad-mcp/internal/types"
)

// Keys blogpad reads and writes.
const (
	KeyTitle   = "title"
	KeyAuthor  = "author"
	KeyProject = "project"
	KeyTags    = "tags"
	KeyStatus  = "status"
	KeyCreated = "created"
	KeyUpdated = "updated"
)

var validStatuses = []string{types.StatusDraft, types.StatusPublished, types.StatusDeleted}

// Handler parses, renders and validates frontmatter.
type Handler struct{}

// New creates a new Handler.
func New() *Handler {
	return &Handler{}
}

// Parse splits a post file into frontmatter and body.
func (h *Handler) Parse(content string) types.ParsedPost {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	result := types.ParsedPost{
		Frontmatter:     make(map[string]any),
		Content:         content,
		OriginalContent: content,
	}
	result.Meta = DecodeMeta(result.Frontmatter)

	if !strings.HasPrefix(content, "---\n") {
		return result
	}

	endIndex := strings.Index(content[4:], "\n---\n")
	bodyStart := endIndex + 4 + 5
	if endIndex == -1 {
		if !strings.HasSuffix(content, "\n---") {
			return result
		}
		// closing delimiter at the very end, empty body
		endIndex = len(content) - 4 - 4
		bodyStart = len(content)
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(content[4:endIndex+4]), &fm); err != nil {
		// unparseable header is treated as body
		return result
	}
	if fm == nil {
		fm = make(map[string]any)
	}

	result.Frontmatter = fm
	result.Meta = DecodeMeta(fm)
	result.Content = content[bodyStart:]
	return result
}

// Stringify renders frontmatter and body back into a post file.
func (h *Handler) Stringify(frontmatter map[string]any, content string) (string, error) {
	if len(frontmatter) == 0 {
		return content, nil
	}

	yamlBytes, err := yaml.Marshal(frontmatter)
	if err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}

	return "---\n" + string(yamlBytes) + "---\n" + content, nil
}

// Validate checks that frontmatter can be serialised and that the keys
// blogpad owns hold sensible values.
func (h *Handler) Validate(frontmatter map[string]any) types.ValidationResult {
	result := types.ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	// must run before Marshal, which panics on funcs
	h.checkForProblematicValues(frontmatter, &result, "")

	if result.IsValid {
		if _, err := yaml.Marshal(frontmatter); err != nil {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid YAML structure: %v", err))
		}
	}

	h.checkPostKeys(frontmatter, &result)
	return result
}

func (h *Handler) checkPostKeys(fm map[string]any, result *types.ValidationResult) {
	for _, key := range []string{KeyTitle, KeyAuthor, KeyProject, KeyStatus} {
		v, ok := fm[key]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s must be a string, got %T", key, v))
		}
	}

	if status, ok := fm[KeyStatus].(string); ok && !slices.Contains(validStatuses, status) {
		result.IsValid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("status must be one of %s, got %q", strings.Join(validStatuses, ", "), status))
	}

	if tags, ok := fm[KeyTags]; ok && tags != nil {
		switch t := tags.(type) {
		case string, []string:
		case []any:
			for i, tag := range t {
				if _, isString := tag.(string); !isString {
					result.Warnings = append(result.Warnings, fmt.Sprintf("tags[%d] is not a string and is ignored", i))
				}
			}
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("tags should be a list, got %T", tags))
		}
	}

	if title, _ := fm[KeyTitle].(string); strings.TrimSpace(title) == "" {
		result.Warnings = append(result.Warnings, "post has no title")
	}
}

func (h *Handler) checkForProblematicValues(obj any, result *types.ValidationResult, path string) {
	if obj == nil {
		return
	}

	v := reflect.ValueOf(obj)

	switch v.Kind() {
	case reflect.Func:
		result.Errors = append(result.Errors, fmt.Sprintf("Functions are not allowed in frontmatter at path: %s", path))
		result.IsValid = false
		return

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			h.checkForProblematicValues(v.Index(i).Interface(), result, fmt.Sprintf("%s[%d]", path, i))
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()

			currentPath := fmt.Sprintf("%v", key.Interface())
			if path != "" {
				currentPath = path + "." + currentPath
			}

			if key.Kind() != reflect.String {
				result.Errors = append(result.Errors, fmt.Sprintf("Non-string keys are not allowed: %v", key.Interface()))
				result.IsValid = false
			}

			h.checkForProblematicValues(iter.Value().Interface(), result, currentPath)
		}
	}
}

// DecodeMeta reads the keys blogpad understands. Values of the wrong type
// are ignored; a missing status reads as draft.
func DecodeMeta(fm map[string]any) types.PostMeta {
	meta := types.PostMeta{
		Title:   stringField(fm, KeyTitle),
		Author:  stringField(fm, KeyAuthor),
		Project: stringField(fm, KeyProject),
		Tags:    Tags(fm),
		Status:  stringField(fm, KeyStatus),
		Created: timeField(fm, KeyCreated),
		Updated: timeField(fm, KeyUpdated),
	}
	if meta.Status == "" {
		meta.Status = types.StatusDraft
	}
	return meta
}

// Tags returns the lowercased, de-duplicated, sorted tags of fm.
func Tags(fm map[string]any) []string {
	set := make(map[string]bool)
	add := func(s string) {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = true
		}
	}

	switch t := fm[KeyTags].(type) {
	case []any:
		for _, tag := range t {
			if s, ok := tag.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, tag := range t {
			add(tag)
		}
	case string:
		for tag := range strings.SplitSeq(t, ",") {
			add(tag)
		}
	}

	if len(set) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}

// FormatTime renders a timestamp the way it is stored in frontmatter.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func stringField(fm map[string]any, key string) string {
	s, _ := fm[key].(string)
	return strings.TrimSpace(s)
}

func timeField(fm map[string]any, key string) time.Time {
	switch v := fm[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
