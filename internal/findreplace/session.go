package findreplace

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/blogpad/blogpad-mcp/internal/logging"
)

// State is the lifecycle state of a find session.
type State int

const (
	Closed State = iota
	Idle
	Scanning
	HasMatches
	NoMatches
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case HasMatches:
		return "has-matches"
	case NoMatches:
		return "no-matches"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Query is the user-editable part of a session.
type Query struct {
	FindText      string `json:"findText"`
	ReplaceText   string `json:"replaceText"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// DefaultScrollContext is the number of rows kept visible above the active
// match when it is scrolled into view.
const DefaultScrollContext = 3

// Option configures a Session.
type Option func(*Session)

// WithScrollContext sets how many rows stay visible above the active match.
func WithScrollContext(rows int) Option {
	return func(s *Session) {
		if rows >= 0 {
			s.scrollContext = rows
		}
	}
}

// Session is one find-and-replace session over a Buffer. It is not safe for
// concurrent use; callers serialise access the way a UI event loop would.
type Session struct {
	buf           Buffer
	scrollContext int

	state   State
	query   Query
	matches []Match
	current int // 1-based, 0 when there are no matches

	// marked is set while search marking may be present in the buffer.
	marked bool
	// gen is bumped on every scan so a deferred rescan can tell it is stale.
	gen uint64
}

// New creates a closed session over buf. buf may be nil; every operation
// then degrades to a no-op until Attach is called.
func New(buf Buffer, opts ...Option) *Session {
	s := &Session{
		buf:           buf,
		scrollContext: DefaultScrollContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach replaces the buffer the session drives and, when the session is
// open, rescans it.
func (s *Session) Attach(buf Buffer) {
	s.buf = buf
	if s.state != Closed {
		s.scan()
	}
}

func (s *Session) attached() bool {
	return s.buf != nil && s.buf.Ready()
}

// Open starts the session with an empty query. Opening an open session is a
// no-op.
func (s *Session) Open() {
	if s.state != Closed {
		return
	}
	s.query = Query{}
	s.matches = nil
	s.current = 0
	s.state = Idle
	logging.L().Debugw("find session opened")
}

// IsOpen reports whether the session is open.
func (s *Session) IsOpen() bool {
	return s.state != Closed
}

// SetQuery updates the whole query. Changing FindText or CaseSensitive
// triggers a full rescan; ReplaceText is stored as is.
func (s *Session) SetQuery(q Query) {
	if s.state == Closed {
		return
	}
	q.FindText = norm.NFC.String(q.FindText)
	changed := q.FindText != s.query.FindText || q.CaseSensitive != s.query.CaseSensitive
	s.query = q
	if changed {
		s.scan()
	}
}

// SetFindText updates the search text and rescans when it changed.
func (s *Session) SetFindText(text string) {
	q := s.query
	q.FindText = text
	s.SetQuery(q)
}

// SetCaseSensitive toggles case sensitivity and rescans when it changed.
func (s *Session) SetCaseSensitive(on bool) {
	q := s.query
	q.CaseSensitive = on
	s.SetQuery(q)
}

// SetReplaceText updates the replacement text.
func (s *Session) SetReplaceText(text string) {
	if s.state == Closed {
		return
	}
	s.query.ReplaceText = text
}

// Rescan recomputes matches for the current query against the buffer as it
// is now.
func (s *Session) Rescan() {
	if s.state == Closed {
		return
	}
	s.scan()
}

func (s *Session) scan() {
	s.gen++
	if !s.attached() {
		// The old matches belong to a query or text that is gone.
		s.matches = nil
		s.current = 0
		s.state = Idle
		return
	}

	if s.query.FindText == "" {
		s.clearHighlights()
		s.matches = nil
		s.current = 0
		s.state = Idle
		return
	}

	s.state = Scanning
	s.matches = Locate(s.buf.PlainText(), s.query.FindText, s.query.CaseSensitive)
	logging.L().Debugw("find scan",
		"query", s.query.FindText,
		"caseSensitive", s.query.CaseSensitive,
		"matches", len(s.matches),
	)

	if len(s.matches) == 0 {
		s.current = 0
		s.clearHighlights()
		s.state = NoMatches
		return
	}
	s.current = 1
	s.state = HasMatches
	s.highlight(0)
}

// Next makes the following match active, wrapping to the first. It does
// nothing while a rescan is pending.
func (s *Session) Next() {
	if s.state == Scanning || len(s.matches) == 0 {
		return
	}
	if s.current >= len(s.matches) {
		s.current = 1
	} else {
		s.current++
	}
	s.highlight(s.current - 1)
}

// Previous makes the preceding match active, wrapping to the last.
func (s *Session) Previous() {
	if s.state == Scanning || len(s.matches) == 0 {
		return
	}
	if s.current <= 1 {
		s.current = len(s.matches)
	} else {
		s.current--
	}
	s.highlight(s.current - 1)
}

// Highlight marks every match and gives the match at active the active
// colour, then scrolls it into view. An out-of-range index is ignored.
func (s *Session) Highlight(active int) {
	s.highlight(active)
}

func (s *Session) highlight(active int) {
	if !s.attached() || active < 0 || active >= len(s.matches) {
		return
	}

	s.clearHighlights()
	for i, m := range s.matches {
		color := MatchColor
		if i == active {
			color = ActiveColor
		}
		s.buf.FormatRange(m.Index, m.Length, AttrBackground, color)
	}
	s.marked = true

	if sc, ok := s.buf.(Scroller); ok {
		top := s.buf.Bounds(s.matches[active].Index).Top - s.scrollContext
		sc.ScrollTo(max(top, 0))
	}
}

// clearHighlights removes search marking from the whole buffer. Only the
// background attribute is touched so other formatting survives.
func (s *Session) clearHighlights() {
	if !s.marked || !s.attached() {
		return
	}
	s.buf.FormatRange(0, s.buf.Len(), AttrBackground, nil)
	s.marked = false
}

// Replace replaces the active match with the replacement text and rescans
// once the buffer has settled. Offsets of later matches are never patched in
// place; the rescan recomputes them.
func (s *Session) Replace() {
	if s.state == Scanning || !s.attached() || len(s.matches) == 0 || s.current == 0 {
		return
	}
	m := s.matches[s.current-1]

	s.begin()
	s.buf.FormatRange(m.Index, m.Length, AttrBackground, nil)
	s.buf.DeleteRange(m.Index, m.Length)
	s.buf.InsertText(m.Index, s.query.ReplaceText)
	s.commit()
	s.state = Scanning
	logging.L().Debugw("find replace", "index", m.Index, "length", m.Length)

	gen := s.gen
	s.whenSettled(func() {
		if s.state == Closed || s.gen != gen {
			return
		}
		s.scan()
	})
}

// ReplaceAll replaces every match, rightmost first, and ends the search by
// clearing the find text. It returns the number of replacements made.
func (s *Session) ReplaceAll() int {
	return s.replaceEach(s.matches)
}

// ReplaceAllDisjoint is ReplaceAll over the matches that do not overlap an
// earlier one, so every replaced range holds the original find text.
func (s *Session) ReplaceAllDisjoint() int {
	return s.replaceEach(Disjoint(s.matches))
}

func (s *Session) replaceEach(matches []Match) int {
	if s.state == Scanning || !s.attached() || len(matches) == 0 {
		return 0
	}

	// Rightmost first: every match still to be processed lies before the
	// edit point, so its recorded index stays valid.
	s.begin()
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		s.buf.DeleteRange(m.Index, m.Length)
		s.buf.InsertText(m.Index, s.query.ReplaceText)
	}
	s.commit()

	n := len(matches)
	s.clearHighlights()
	s.matches = nil
	s.current = 0
	s.query.FindText = ""
	s.gen++
	s.state = Idle

	logging.L().Debugw("find replace all", "replacements", n)
	return n
}

// Close clears marking and discards the query. It is safe to call at any
// time, including twice or with a detached buffer.
func (s *Session) Close() {
	s.clearHighlights()
	s.marked = false
	s.query = Query{}
	s.matches = nil
	s.current = 0
	s.gen++
	if s.state != Closed {
		logging.L().Debugw("find session closed")
	}
	s.state = Closed
}

func (s *Session) begin() {
	if b, ok := s.buf.(Batcher); ok {
		b.Begin()
	}
}

func (s *Session) commit() {
	if b, ok := s.buf.(Batcher); ok {
		b.Commit()
	}
}

// whenSettled defers fn until the buffer's pending mutations have flushed.
func (s *Session) whenSettled(fn func()) {
	if st, ok := s.buf.(Settler); ok {
		st.WhenSettled(fn)
		return
	}
	flushPending(fn)
}

// flushPending is the settle step for buffers that apply mutations
// synchronously and offer no notification: the projection is already
// current, so fn runs immediately.
func flushPending(fn func()) {
	fn()
}
