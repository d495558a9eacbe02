package document

import (
	"math"
	"strings"
)

// WordsPerMinute is the reading speed used for reading time.
const WordsPerMinute = 200

// Stats summarises a document the way the editor's status bar does.
type Stats struct {
	Words          int `json:"words"`
	Characters     int `json:"characters"`
	Pages          int `json:"pages"`
	Sections       int `json:"sections"`
	Images         int `json:"images"`
	ReadingMinutes int `json:"readingMinutes"`
}

// Stats computes document statistics.
func (d *Document) Stats() Stats {
	st := Stats{Pages: 1, Sections: 1}
	for _, c := range d.cells {
		if c.embed != nil {
			switch c.embed.Kind {
			case PageBreak:
				st.Pages++
			case SectionBreak:
				st.Sections++
			case Image:
				st.Images++
			}
			continue
		}
		if c.r != '\n' {
			st.Characters++
		}
	}

	text := strings.ReplaceAll(d.PlainText(), string(ObjectReplacement), " ")
	st.Words = len(strings.Fields(text))
	st.ReadingMinutes = int(math.Ceil(float64(st.Words) / WordsPerMinute))
	return st
}
