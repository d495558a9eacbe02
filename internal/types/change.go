package types

type (
	// PatchParams replaces text in a post body. Matching runs over the
	// rendered text, so markup never matches.
	PatchParams struct {
		Path       string `json:"path"`
		OldString  string `json:"oldString"`
		NewString  string `json:"newString"`
		ReplaceAll bool   `json:"replaceAll,omitempty"`
		IgnoreCase bool   `json:"ignoreCase,omitempty"`
	}

	// PatchResult reports how many occurrences were found and replaced.
	PatchResult struct {
		Success    bool   `json:"success"`
		Path       string `json:"path"`
		Message    string `json:"message"`
		MatchCount int    `json:"matchCount,omitempty"`
		Replaced   int    `json:"replaced,omitempty"`
	}

	// UpdateFrontmatterParams rewrites a post's frontmatter. With Merge the
	// given keys are layered over the existing ones; otherwise they replace
	// them, except for the timestamps.
	UpdateFrontmatterParams struct {
		Path        string         `json:"path"`
		Frontmatter map[string]any `json:"frontmatter"`
		Merge       bool           `json:"merge,omitempty"`
	}

	// ValidationResult lists frontmatter problems. Warnings do not block a
	// write.
	ValidationResult struct {
		IsValid  bool     `json:"isValid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}

	// DeleteParams trashes a post, or removes its file when Purge is set.
	// ConfirmPath must repeat Path.
	DeleteParams struct {
		Path        string `json:"path"`
		ConfirmPath string `json:"confirmPath"`
		Purge       bool   `json:"purge,omitempty"`
	}

	DeleteResult struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
		Purged  bool   `json:"purged,omitempty"`
		Message string `json:"message"`
	}

	// RenameParams moves a post. An existing target is only replaced with
	// Overwrite.
	RenameParams struct {
		OldPath   string `json:"oldPath"`
		NewPath   string `json:"newPath"`
		Overwrite bool   `json:"overwrite,omitempty"`
	}

	RenameResult struct {
		Success bool   `json:"success"`
		OldPath string `json:"oldPath"`
		NewPath string `json:"newPath"`
		Message string `json:"message"`
	}
)
