package main

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/permalink"
	"github.com/blogpad/blogpad-mcp/internal/posts"
	"github.com/blogpad/blogpad-mcp/internal/types"
)

const defaultListLimit = 50

func handleRead(ctx context.Context, req *mcp.CallToolRequest, input ReadInput) (*mcp.CallToolResult, ReadOutput, error) {
	path := strings.TrimSpace(input.Path)
	post, err := store.ReadPost(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ReadOutput{}, err
	}

	lines := strings.Split(post.Content, "\n")
	totalLines := len(lines)
	link := permalink.Generate(baseURL, path)

	offset := max(input.Offset, 0)
	if offset >= totalLines {
		return nil, ReadOutput{
			Frontmatter: post.Frontmatter,
			TotalLines:  totalLines,
			Truncated:   true,
			Permalink:   link,
		}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = totalLines
	}
	endIdx := min(offset+limit, totalLines)

	return nil, ReadOutput{
		Frontmatter: post.Frontmatter,
		Content:     strings.Join(lines[offset:endIdx], "\n"),
		TotalLines:  totalLines,
		Truncated:   endIdx < totalLines,
		Permalink:   link,
	}, nil
}

func handleWrite(ctx context.Context, req *mcp.CallToolRequest, input WriteInput) (*mcp.CallToolResult, WriteOutput, error) {
	path := strings.TrimSpace(input.Path)
	err := store.WritePost(types.PostWriteParams{
		Path:        path,
		Content:     input.Content,
		Frontmatter: input.Frontmatter,
		Mode:        input.Mode,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, WriteOutput{Success: false, Path: path}, err
	}

	return nil, WriteOutput{Success: true, Path: path, Permalink: permalink.Generate(baseURL, path)}, nil
}

func handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	path := strings.TrimSpace(input.Path)

	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Success: false, Path: path},
			fmt.Errorf("deletion not confirmed: set confirm='yes' to proceed")
	}

	result := store.DeletePost(types.DeleteParams{
		Path:        path,
		ConfirmPath: path,
		Purge:       input.Purge,
	})
	if !result.Success {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Success: false, Path: path},
			fmt.Errorf("%s", result.Message)
	}
	if result.Purged {
		editor.Close(path)
	}

	return nil, DeleteOutput{Success: true, Path: path, Purged: result.Purged, Message: result.Message}, nil
}

func handleRename(ctx context.Context, req *mcp.CallToolRequest, input RenameInput) (*mcp.CallToolResult, RenameOutput, error) {
	oldPath := strings.TrimSpace(input.Path)
	newPath := strings.TrimSpace(input.NewPath)

	result := store.RenamePost(types.RenameParams{
		OldPath:   oldPath,
		NewPath:   newPath,
		Overwrite: input.Overwrite,
	})
	if !result.Success {
		return &mcp.CallToolResult{IsError: true},
			RenameOutput{Success: false, OldPath: oldPath, NewPath: newPath},
			fmt.Errorf("%s", result.Message)
	}
	// an open document would otherwise be saved back under the old path
	editor.Close(oldPath)

	return nil, RenameOutput{
		Success:   true,
		OldPath:   oldPath,
		NewPath:   newPath,
		Permalink: permalink.Generate(baseURL, newPath),
	}, nil
}

func handleEdit(ctx context.Context, req *mcp.CallToolRequest, input EditInput) (*mcp.CallToolResult, EditOutput, error) {
	path := strings.TrimSpace(input.Path)

	if input.OldText == "" && input.Frontmatter == nil {
		return &mcp.CallToolResult{IsError: true}, EditOutput{Success: false, Path: path},
			fmt.Errorf("nothing to edit: provide oldText and/or frontmatter")
	}

	replacements := 0
	if input.OldText != "" {
		result := store.PatchPost(types.PatchParams{
			Path:       path,
			OldString:  input.OldText,
			NewString:  input.NewText,
			ReplaceAll: input.ReplaceAll,
			IgnoreCase: input.IgnoreCase,
		})
		if !result.Success {
			return &mcp.CallToolResult{IsError: true}, EditOutput{Success: false, Path: path},
				fmt.Errorf("%s", result.Message)
		}
		replacements = result.Replaced
	}

	if input.Frontmatter != nil {
		err := store.UpdateFrontmatter(types.UpdateFrontmatterParams{
			Path:        path,
			Frontmatter: input.Frontmatter,
			Merge:       true,
		})
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, EditOutput{Success: false, Path: path}, err
		}
	}

	return nil, EditOutput{Success: true, Path: path, Replacements: replacements}, nil
}

func handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	from, err := parseDate(input.From, false)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}
	to, err := parseDate(input.To, true)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := max(input.Offset, 0)

	result, err := store.ListPosts(types.ListParams{
		Author:  strings.TrimSpace(input.Author),
		Project: strings.TrimSpace(input.Project),
		Tags:    input.Tags,
		Status:  strings.TrimSpace(input.Status),
		Keyword: input.Keyword,
		From:    from,
		To:      to,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}

	for i := range result.Posts {
		result.Posts[i].Permalink = permalink.Generate(baseURL, result.Posts[i].Path)
	}

	return nil, ListOutput{
		Posts:   result.Posts,
		Total:   result.Total,
		HasMore: result.Total > offset+len(result.Posts),
	}, nil
}

// parseDate accepts a date or an RFC 3339 timestamp. A bare date used as an
// upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, fmt.Errorf("query cannot be empty")
	}

	offset := max(input.Offset, 0)

	results, total, err := searchService.Search(types.SearchParams{
		Query:         input.Query,
		UseRegex:      input.UseRegex,
		CaseSensitive: input.CaseSensitive,
		ContextLines:  input.ContextLines,
		Limit:         input.Limit,
		Offset:        offset,
		Status:        strings.TrimSpace(input.Status),
		Author:        strings.TrimSpace(input.Author),
		Tag:           input.Tag,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results:    results,
		TotalPosts: total,
		HasMore:    total > offset+len(results),
	}, nil
}

func handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, types.PostStats, error) {
	stats, err := store.Stats(strings.TrimSpace(input.Author))
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.PostStats{}, err
	}
	return nil, stats, nil
}

func handleRelated(ctx context.Context, req *mcp.CallToolRequest, input RelatedInput) (*mcp.CallToolResult, RelatedOutput, error) {
	path := strings.TrimSpace(input.Path)

	// Default to both if neither specified
	searchTags := input.Tags
	searchLinks := input.Links
	if !searchTags && !searchLinks {
		searchTags = true
		searchLinks = true
	}

	source, err := store.ReadPost(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, RelatedOutput{}, err
	}
	sourceLink := permalink.Generate("", path)
	outgoing := linkPaths(source.Content)

	entries, err := store.Load()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, RelatedOutput{}, err
	}

	related := []RelatedPost{}
	for _, e := range entries {
		if e.Path == path || !e.Post.Meta.Active() {
			continue
		}
		rp := RelatedPost{
			Path:      e.Path,
			Title:     e.Post.Meta.Title,
			Permalink: permalink.Generate(baseURL, e.Path),
		}

		if searchTags {
			if shared := sharedTags(source.Meta.Tags, e.Post.Meta.Tags); len(shared) > 0 {
				rp.Relation = addRelation(rp.Relation, "shared-tags")
				rp.Tags = shared
			}
			if source.Meta.Project != "" && strings.EqualFold(source.Meta.Project, e.Post.Meta.Project) {
				rp.Relation = addRelation(rp.Relation, "same-project")
			}
		}

		if searchLinks {
			if slices.Contains(linkPaths(e.Post.Content), sourceLink) {
				rp.Relation = addRelation(rp.Relation, "backlink")
			}
			if slices.Contains(outgoing, permalink.Generate("", e.Path)) {
				rp.Relation = addRelation(rp.Relation, "outgoing")
			}
		}

		if rp.Relation != "" {
			related = append(related, rp)
		}
	}

	return nil, RelatedOutput{
		Path:    path,
		Related: related,
	}, nil
}

// linkPaths returns the escaped paths of the links in a post body, so they
// compare equal to site-relative permalinks whatever host they name.
func linkPaths(content string) []string {
	var out []string
	for _, link := range document.Parse(content).Links() {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		out = append(out, strings.TrimRight(u.EscapedPath(), "/"))
	}
	return out
}

func sharedTags(tags1, tags2 []string) []string {
	var shared []string
	for _, t := range tags2 {
		if slices.Contains(tags1, t) {
			shared = append(shared, t)
		}
	}
	slices.Sort(shared)
	return shared
}

func addRelation(existing, newRel string) string {
	if existing == "" {
		return newRel
	}
	if strings.Contains(existing, newRel) {
		return existing
	}
	return existing + "," + newRel
}

func handleTags(ctx context.Context, req *mcp.CallToolRequest, input TagsInput) (*mcp.CallToolResult, TagsOutput, error) {
	entries, err := store.Load()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, TagsOutput{}, err
	}

	active := slices.DeleteFunc(entries, func(e posts.Entry) bool { return !e.Post.Meta.Active() })

	tagCounts := make(map[string]int)
	postsWithTags := 0
	for _, e := range active {
		if len(e.Post.Meta.Tags) == 0 {
			continue
		}
		postsWithTags++
		for _, tag := range e.Post.Meta.Tags {
			tagCounts[tag]++
		}
	}

	tagInfos := make([]TagInfo, 0, len(tagCounts))
	for _, tag := range slices.Sorted(maps.Keys(tagCounts)) {
		tagInfos = append(tagInfos, TagInfo{Tag: tag, Count: tagCounts[tag]})
	}

	return nil, TagsOutput{
		Tags:          tagInfos,
		TotalTags:     len(tagInfos),
		TotalPosts:    len(active),
		PostsWithTags: postsWithTags,
	}, nil
}
