// Package findreplace implements find-and-replace over a live rich-text
// document. The engine never owns the document: it reads a plain-text
// projection and issues range-based commands through Buffer.
package findreplace

// Bounds is the laid-out position of an offset in the document view.
type Bounds struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Height int `json:"height"`
}

// Buffer is the document surface the engine drives. All offsets and lengths
// are in runes of PlainText.
type Buffer interface {
	// Ready reports whether the buffer is constructed and usable.
	Ready() bool
	Len() int
	PlainText() string
	// FormatRange applies value to attr over the range; a nil or false value
	// clears the attribute.
	FormatRange(start, length int, attr string, value any)
	DeleteRange(start, length int)
	InsertText(start int, text string)
	Bounds(offset int) Bounds
}

// Scroller is implemented by buffers with a scrollable view.
type Scroller interface {
	ScrollTo(top int)
}

// Settler is implemented by buffers that batch mutations. WhenSettled runs fn
// once the pending batch has been applied, or immediately if none is open.
type Settler interface {
	WhenSettled(fn func())
}

// Batcher is implemented by buffers that can group mutations into one change.
type Batcher interface {
	Begin()
	Commit()
}

const (
	// AttrBackground is the only attribute the engine touches.
	AttrBackground = "background"

	MatchColor  = "#ffeb3b"
	ActiveColor = "#ff9632"
)
