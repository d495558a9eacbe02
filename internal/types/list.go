package types

import "time"

type (
	// ListParams filters and pages a post listing. Empty fields match
	// everything; deleted posts are only listed when Status asks for them.
	ListParams struct {
		Author  string    `json:"author,omitempty"`
		Project string    `json:"project,omitempty"`
		Tags    []string  `json:"tags,omitempty"` // any of
		Status  string    `json:"status,omitempty"`
		Keyword string    `json:"keyword,omitempty"`
		From    time.Time `json:"from,omitzero"`
		To      time.Time `json:"to,omitzero"`
		Limit   int       `json:"limit,omitempty"`
		Offset  int       `json:"offset,omitempty"`
	}

	// ListResult is one page of posts, newest first.
	ListResult struct {
		Posts []PostInfo `json:"posts"`
		Total int        `json:"total"`
	}

	// PostStats counts posts by status.
	PostStats struct {
		Author    string `json:"author,omitempty"`
		Total     int    `json:"total"`
		Drafts    int    `json:"drafts"`
		Published int    `json:"published"`
		Deleted   int    `json:"deleted"`
	}

	// PathFilterConfig contains configuration for the path filter.
	PathFilterConfig struct {
		IgnoredPatterns   []string `json:"ignoredPatterns"`
		AllowedExtensions []string `json:"allowedExtensions"`
	}
)
