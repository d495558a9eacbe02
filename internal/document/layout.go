package document

import (
	"github.com/mattn/go-runewidth"

	"github.com/blogpad/blogpad-mcp/internal/findreplace"
)

// Bounds returns the row and column offset is laid out at when the document
// is wrapped at its width. Block embeds take a row of their own.
func (d *Document) Bounds(offset int) findreplace.Bounds {
	offset = min(max(offset, 0), len(d.cells))
	row, col := d.position(offset)
	return findreplace.Bounds{Top: row, Left: col, Height: 1}
}

// Rows returns the number of laid-out rows.
func (d *Document) Rows() int {
	row, _ := d.position(len(d.cells) - 1)
	return row + 1
}

// Width returns the layout width.
func (d *Document) Width() int {
	return d.width
}

// ScrollTo scrolls the view so top is the first visible row.
func (d *Document) ScrollTo(top int) {
	d.scrollTop = min(max(top, 0), d.Rows()-1)
}

// ScrollTop returns the first visible row.
func (d *Document) ScrollTop() int {
	return d.scrollTop
}

func (d *Document) position(offset int) (row, col int) {
	for i, c := range d.cells {
		block := c.embed != nil && c.embed.Block()
		w := cellWidth(c)
		switch {
		case block && col > 0:
			row++
			col = 0
		case !block && c.r != '\n' && col > 0 && col+w > d.width:
			row++
			col = 0
		}
		if i == offset {
			return row, col
		}
		if block || c.r == '\n' {
			row++
			col = 0
			continue
		}
		col += w
	}
	return row, col
}

func cellWidth(c cell) int {
	if c.embed != nil {
		return 1
	}
	w := runewidth.RuneWidth(c.r)
	if w < 1 {
		w = 1
	}
	return w
}
