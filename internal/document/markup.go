package document

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Block markers, each on a line of its own.
const (
	PageBreakMarker    = "<!-- page-break -->"
	SectionBreakMarker = "<!-- section-break -->"
)

// Parse builds a document from post markup. Inline syntax: **bold**,
// *italic*, `code`, [text](url) and ![alt](src); a backslash escapes the
// next character. Formatting does not carry across lines.
func Parse(markup string, opts ...Option) *Document {
	d := New(opts...)

	markup = strings.ReplaceAll(markup, "\r\n", "\n")
	markup = norm.NFC.String(markup)
	markup = strings.TrimSuffix(markup, "\n")

	var cells []cell
	for _, line := range strings.Split(markup, "\n") {
		if kind, ok := blockMarker(line); ok {
			cells = append(cells, cell{r: ObjectReplacement, embed: &Embed{Kind: kind}})
			continue
		}
		cells = parseInline(cells, []rune(line))
		cells = append(cells, cell{r: '\n'})
	}
	if len(cells) == 0 || cells[len(cells)-1].r != '\n' {
		cells = append(cells, cell{r: '\n'})
	}
	d.cells = cells
	return d
}

func blockMarker(line string) (EmbedKind, bool) {
	switch strings.TrimSpace(line) {
	case PageBreakMarker:
		return PageBreak, true
	case SectionBreakMarker:
		return SectionBreak, true
	}
	return "", false
}

func parseInline(cells []cell, rs []rune) []cell {
	var a Attributes
	linkEnd, linkClose := -1, -1
	literal := func(r rune) {
		cells = append(cells, cell{r: r, attrs: a, raw: true})
	}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if i == linkEnd {
			a.Link = ""
			i = linkClose
			linkEnd, linkClose = -1, -1
			continue
		}

		switch {
		case r == '\\' && i+1 < len(rs):
			i++
			cells = append(cells, cell{r: rs[i], attrs: a})
		case r == '`' && (a.Code || closer(rs, i+1, "`") >= 0):
			a.Code = !a.Code
		case a.Code:
			literal(r)
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			if a.Bold || closer(rs, i+2, "**") >= 0 {
				a.Bold = !a.Bold
			} else {
				literal('*')
				literal('*')
			}
			i++
		case r == '*' && (a.Italic || closer(rs, i+1, "*") >= 0):
			a.Italic = !a.Italic
		case r == '!' && i+1 < len(rs) && rs[i+1] == '[':
			alt, src, _, end, ok := scanLink(rs, i+1)
			if !ok {
				literal(r)
				continue
			}
			cells = append(cells, cell{
				r:     ObjectReplacement,
				attrs: a,
				embed: &Embed{Kind: Image, Src: src, Alt: alt},
			})
			i = end
		case r == '[' && linkEnd < 0:
			_, url, closeBracket, end, ok := scanLink(rs, i)
			if !ok {
				literal(r)
				continue
			}
			a.Link = url
			linkEnd, linkClose = closeBracket, end
		default:
			literal(r)
		}
	}
	return cells
}

// closer returns the index of the next unescaped marker in rs[from:], or -1.
// A lone "*" never matches half of "**", and star markers inside a code span
// do not count.
func closer(rs []rune, from int, marker string) int {
	for j := from; j < len(rs); j++ {
		switch {
		case rs[j] == '\\':
			j++
		case rs[j] == '`':
			if marker == "`" {
				return j
			}
			if k := closer(rs, j+1, "`"); k >= 0 {
				j = k
			}
		case marker == "`":
		case rs[j] == '*' && j+1 < len(rs) && rs[j+1] == '*':
			if marker == "**" {
				return j
			}
			j++
		case rs[j] == '*':
			if marker == "*" {
				return j
			}
		}
	}
	return -1
}

// scanLink parses "[text](target)" starting at the '[' at open. It returns
// the unescaped text, the target, the index of the closing ']' and of ')'.
func scanLink(rs []rune, open int) (text, target string, closeBracket, end int, ok bool) {
	var b strings.Builder
	j := open + 1
	for ; j < len(rs); j++ {
		if rs[j] == '\\' && j+1 < len(rs) {
			j++
			b.WriteRune(rs[j])
			continue
		}
		if rs[j] == ']' {
			break
		}
		b.WriteRune(rs[j])
	}
	if j+1 >= len(rs) || rs[j] != ']' || rs[j+1] != '(' {
		return "", "", 0, 0, false
	}
	k := j + 2
	for ; k < len(rs) && rs[k] != ')'; k++ {
	}
	if k >= len(rs) {
		return "", "", 0, 0, false
	}
	return b.String(), string(rs[j+2 : k]), j, k, true
}

// Markup renders the document back to post markup. Search marking is never
// rendered. Characters that were bare in the parsed markup stay bare unless
// that would change how the line parses.
func (d *Document) Markup() string {
	var b strings.Builder
	start := 0

	for i, c := range d.cells {
		block := c.embed != nil && c.embed.Block()
		if !block && c.r != '\n' {
			continue
		}
		line := d.cells[start:i]
		start = i + 1
		if !block {
			b.WriteString(markupLine(line))
			b.WriteByte('\n')
			continue
		}
		if len(line) > 0 {
			b.WriteString(markupLine(line))
			b.WriteByte('\n')
		}
		b.WriteString(blockMarkerFor(c.embed.Kind))
		b.WriteByte('\n')
	}
	if start < len(d.cells) {
		b.WriteString(markupLine(d.cells[start:]))
	}
	return b.String()
}

func markupLine(cells []cell) string {
	escaped := renderLine(cells, true)
	bare := renderLine(cells, false)
	if bare == escaped {
		return escaped
	}
	if _, ok := blockMarker(bare); ok {
		return escaped
	}
	if !sameCells(parseInline(nil, []rune(bare)), cells) {
		return escaped
	}
	return bare
}

// renderLine renders one line of inline cells. With escapeAll every markup
// character is escaped; otherwise raw cells are written as they were parsed.
func renderLine(cells []cell, escapeAll bool) string {
	var b strings.Builder
	var cur Attributes

	for i, c := range cells {
		b.WriteString(transition(&cur, c.attrs))
		switch {
		case c.embed != nil:
			b.WriteString("![")
			writeEscaped(&b, c.embed.Alt)
			b.WriteString("](")
			b.WriteString(escapeTarget(c.embed.Src))
			b.WriteByte(')')
		case c.raw && !escapeAll:
			b.WriteRune(c.r)
		default:
			if i == 0 && c.r == '<' {
				b.WriteByte('\\')
			}
			writeEscapedRune(&b, c.r)
		}
	}
	b.WriteString(transition(&cur, Attributes{}))
	return b.String()
}

func sameCells(a, b []cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		x.attrs.Background, y.attrs.Background = "", ""
		if x.r != y.r || x.attrs != y.attrs || (x.embed == nil) != (y.embed == nil) {
			return false
		}
		if x.embed != nil && *x.embed != *y.embed {
			return false
		}
	}
	return true
}

func blockMarkerFor(kind EmbedKind) string {
	if kind == SectionBreak {
		return SectionBreakMarker
	}
	return PageBreakMarker
}

// transition returns the markup that moves inline state from cur to next and
// updates cur.
func transition(cur *Attributes, next Attributes) string {
	next.Background = ""
	if *cur == next {
		return ""
	}

	var b strings.Builder
	p := *cur
	if p.Code && (!next.Code || p.Bold != next.Bold || p.Italic != next.Italic || p.Link != next.Link) {
		b.WriteByte('`')
		p.Code = false
	}
	if p.Link != next.Link {
		if p.Bold {
			b.WriteString("**")
			p.Bold = false
		}
		if p.Italic {
			b.WriteByte('*')
			p.Italic = false
		}
		if p.Link != "" {
			b.WriteString("](")
			b.WriteString(escapeTarget(p.Link))
			b.WriteByte(')')
		}
		if next.Link != "" {
			b.WriteByte('[')
		}
	}
	if p.Bold != next.Bold {
		b.WriteString("**")
	}
	if p.Italic != next.Italic {
		b.WriteByte('*')
	}
	if next.Code && !p.Code {
		b.WriteByte('`')
	}
	*cur = next
	return b.String()
}

func writeEscaped(b *strings.Builder, s string) {
	for _, r := range s {
		writeEscapedRune(b, r)
	}
}

func writeEscapedRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', '*', '`', '[', ']':
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

func escapeTarget(s string) string {
	return strings.NewReplacer(")", "%29", " ", "%20").Replace(s)
}
