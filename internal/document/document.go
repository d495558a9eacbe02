// Package document implements the rich-text document posts are edited in.
//
// A document is a sequence of characters, each carrying inline attributes,
// plus single-character embeds (page breaks, section breaks, images). Its
// plain-text projection maps every embed to U+FFFC so offsets in the
// projection and in the document always agree. A document always ends with a
// newline.
package document

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/blogpad/blogpad-mcp/internal/findreplace"
)

// ObjectReplacement stands in for an embed in the plain-text projection.
const ObjectReplacement = '\uFFFC'

// Attribute names accepted by FormatRange.
const (
	AttrBold       = "bold"
	AttrItalic     = "italic"
	AttrCode       = "code"
	AttrLink       = "link"
	AttrBackground = findreplace.AttrBackground
)

// Attributes is the inline formatting of one character.
type Attributes struct {
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Code       bool   `json:"code,omitempty"`
	Link       string `json:"link,omitempty"`
	Background string `json:"background,omitempty"`
}

// EmbedKind names an embed.
type EmbedKind string

const (
	PageBreak    EmbedKind = "pageBreak"
	SectionBreak EmbedKind = "sectionBreak"
	Image        EmbedKind = "image"
)

// Embed is a non-text element occupying one offset.
type Embed struct {
	Kind EmbedKind `json:"kind"`
	Src  string    `json:"src,omitempty"`
	Alt  string    `json:"alt,omitempty"`
}

// Block reports whether the embed occupies a line of its own.
func (e Embed) Block() bool {
	return e.Kind == PageBreak || e.Kind == SectionBreak
}

// Change is delivered to OnChange listeners once per settled batch.
type Change struct {
	Version int
}

type typedFormat struct {
	offset int
	attrs  Attributes
}

type cell struct {
	r     rune
	attrs Attributes
	embed *Embed
	// raw marks a rune that was written bare in the parsed markup, so it can
	// be written back without an escape.
	raw bool
}

// DefaultWidth is the layout width used when none is configured.
const DefaultWidth = 80

// Option configures a Document.
type Option func(*Document)

// WithWidth sets the layout width in display columns.
func WithWidth(cols int) Option {
	return func(d *Document) {
		if cols > 0 {
			d.width = cols
		}
	}
}

// Document is a mutable rich-text document. It is not safe for concurrent use.
type Document struct {
	cells    []cell
	detached bool

	// typed holds the format of the last deleted character so text
	// inserted at the same offset keeps it.
	typed *typedFormat

	width     int
	scrollTop int

	depth     int
	dirty     bool
	version   int
	pending   []func()
	listeners []func(Change)
}

var _ findreplace.Buffer = (*Document)(nil)

// New returns an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		cells: []cell{{r: '\n'}},
		width: DefaultWidth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ready reports whether the document can be edited. A nil or detached
// document is never ready.
func (d *Document) Ready() bool {
	return d != nil && !d.detached
}

// Detach marks the document as torn down. Mutations after Detach are ignored.
func (d *Document) Detach() {
	if d == nil {
		return
	}
	d.detached = true
	d.pending = nil
}

// Len returns the document length, including the trailing newline.
func (d *Document) Len() int {
	return len(d.cells)
}

// Version increases with every mutation.
func (d *Document) Version() int {
	return d.version
}

// PlainText returns the plain-text projection.
func (d *Document) PlainText() string {
	var b strings.Builder
	b.Grow(len(d.cells))
	for _, c := range d.cells {
		b.WriteRune(c.r)
	}
	return b.String()
}

// Text returns the projection of [start, start+length).
func (d *Document) Text(start, length int) string {
	start, end := d.clamp(start, length, len(d.cells))
	var b strings.Builder
	for _, c := range d.cells[start:end] {
		b.WriteRune(c.r)
	}
	return b.String()
}

// Format returns the attributes at offset.
func (d *Document) Format(offset int) Attributes {
	if offset < 0 || offset >= len(d.cells) {
		return Attributes{}
	}
	return d.cells[offset].attrs
}

// FormatRange sets attr to value over the range. A nil, false or empty value
// clears the attribute. Unknown attributes are ignored.
func (d *Document) FormatRange(start, length int, attr string, value any) {
	if !d.Ready() {
		return
	}
	start, end := d.clamp(start, length, len(d.cells))
	if start == end {
		return
	}
	changed := false
	for i := start; i < end; i++ {
		before := d.cells[i].attrs
		setAttr(&d.cells[i].attrs, attr, value)
		if d.cells[i].attrs != before {
			changed = true
		}
	}
	if changed {
		d.typed = nil
		d.mutated()
	}
}

// DeleteRange removes length characters at start. The trailing newline is
// never removed.
func (d *Document) DeleteRange(start, length int) {
	if !d.Ready() {
		return
	}
	start, end := d.clamp(start, length, len(d.cells)-1)
	if start == end {
		return
	}
	d.typed = nil
	if first := d.cells[start]; first.embed == nil && first.r != '\n' {
		a := first.attrs
		a.Background = ""
		d.typed = &typedFormat{offset: start, attrs: a}
	}
	d.cells = append(d.cells[:start], d.cells[end:]...)
	d.mutated()
}

// InsertText inserts text at start. Inserted characters take the inline
// attributes of the text just deleted at start, if any, otherwise those of
// the preceding character. Search marking is never inherited.
func (d *Document) InsertText(start int, text string) {
	if !d.Ready() || text == "" {
		return
	}
	start = min(max(start, 0), len(d.cells)-1)

	var inherit Attributes
	if start > 0 {
		if prev := d.cells[start-1]; prev.embed == nil && prev.r != '\n' {
			inherit = prev.attrs
			inherit.Background = ""
		}
	}
	if d.typed != nil && d.typed.offset == start {
		inherit = d.typed.attrs
	}

	runes := []rune(norm.NFC.String(text))
	ins := make([]cell, len(runes))
	for i, r := range runes {
		ins[i] = cell{r: r, attrs: inherit}
		if r == '\n' {
			ins[i].attrs = Attributes{}
		}
	}
	d.insertCells(start, ins)
}

// InsertEmbed inserts e at start.
func (d *Document) InsertEmbed(start int, e Embed) {
	if !d.Ready() {
		return
	}
	start = min(max(start, 0), len(d.cells)-1)
	d.insertCells(start, []cell{{r: ObjectReplacement, embed: &e}})
}

func (d *Document) insertCells(at int, ins []cell) {
	d.typed = nil
	cells := make([]cell, 0, len(d.cells)+len(ins))
	cells = append(cells, d.cells[:at]...)
	cells = append(cells, ins...)
	cells = append(cells, d.cells[at:]...)
	d.cells = cells
	d.mutated()
}

// EmbedAt is an embed and its offset.
type EmbedAt struct {
	Offset int   `json:"offset"`
	Embed  Embed `json:"embed"`
}

// Embeds lists every embed in document order.
func (d *Document) Embeds() []EmbedAt {
	var out []EmbedAt
	for i, c := range d.cells {
		if c.embed != nil {
			out = append(out, EmbedAt{Offset: i, Embed: *c.embed})
		}
	}
	return out
}

// Links returns the distinct link targets in document order.
func (d *Document) Links() []string {
	seen := make(map[string]bool)
	var links []string
	for _, c := range d.cells {
		if c.attrs.Link != "" && !seen[c.attrs.Link] {
			seen[c.attrs.Link] = true
			links = append(links, c.attrs.Link)
		}
	}
	return links
}

func (d *Document) clamp(start, length, limit int) (int, int) {
	start = min(max(start, 0), limit)
	end := min(max(start+max(length, 0), start), limit)
	return start, end
}

func setAttr(a *Attributes, attr string, value any) {
	switch attr {
	case AttrBold:
		a.Bold = truthy(value)
	case AttrItalic:
		a.Italic = truthy(value)
	case AttrCode:
		a.Code = truthy(value)
	case AttrLink:
		a.Link = stringValue(value)
	case AttrBackground:
		a.Background = stringValue(value)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	default:
		return true
	}
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
