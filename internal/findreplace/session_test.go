package findreplace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openSession(t *testing.T, text string, opts ...Option) (*Session, *fakeBuffer) {
	t.Helper()
	buf := newFake(text)
	s := New(buf, opts...)
	s.Open()
	return s, buf
}

func TestSession_Lifecycle(t *testing.T) {
	s, _ := openSession(t, "Hello hello")
	require.Equal(t, Idle, s.State())

	s.SetFindText("hello")
	require.Equal(t, HasMatches, s.State())
	require.Equal(t, 1, s.Current())
	require.Len(t, s.Matches(), 2)

	s.SetFindText("xyz")
	require.Equal(t, NoMatches, s.State())
	require.Equal(t, 0, s.Current())

	s.SetFindText("")
	require.Equal(t, Idle, s.State())

	s.Close()
	require.Equal(t, Closed, s.State())
	require.Equal(t, Query{}, s.Query())
}

func TestSession_OperationsIgnoredWhileClosed(t *testing.T) {
	buf := newFake("cat cat")
	s := New(buf)

	s.SetFindText("cat")
	s.Next()
	s.Replace()
	require.Equal(t, 0, s.ReplaceAll())
	require.Equal(t, Closed, s.State())
	require.Empty(t, buf.calls)
}

func TestSession_CaseSensitivityToggle(t *testing.T) {
	s, _ := openSession(t, "Hello hello")

	s.SetFindText("hello")
	require.Equal(t, []Match{{0, 5}, {6, 5}}, s.Matches())

	s.SetCaseSensitive(true)
	require.Equal(t, []Match{{6, 5}}, s.Matches())
	require.Equal(t, 1, s.Current())
}

func TestSession_EmptyQueryIssuesNoFormatting(t *testing.T) {
	s, buf := openSession(t, "some text")

	s.SetQuery(Query{FindText: "", ReplaceText: "x"})
	s.Rescan()

	require.Empty(t, s.Matches())
	require.Equal(t, 0, s.Current())
	require.Zero(t, buf.formats)
	require.Empty(t, buf.scrolls)
}

func TestSession_NoMatchesIssuesNoFormatting(t *testing.T) {
	s, buf := openSession(t, "some text")

	s.SetFindText("absent")
	s.Highlight(0)

	require.Equal(t, NoMatches, s.State())
	require.Zero(t, buf.formats)
	require.Empty(t, buf.scrolls)
}

func TestSession_HighlightMarksActiveDistinctly(t *testing.T) {
	s, buf := openSession(t, "cat cat cat")

	s.SetFindText("cat")
	require.Equal(t, ActiveColor, buf.backgroundAt(0))
	require.Equal(t, MatchColor, buf.backgroundAt(4))
	require.Equal(t, MatchColor, buf.backgroundAt(8))
	require.Equal(t, "", buf.backgroundAt(3))

	s.Next()
	require.Equal(t, MatchColor, buf.backgroundAt(0))
	require.Equal(t, ActiveColor, buf.backgroundAt(4))
}

func TestSession_HighlightOutOfRangeIsIgnored(t *testing.T) {
	s, buf := openSession(t, "cat cat")
	s.SetFindText("cat")
	before := buf.formats

	s.Highlight(-1)
	s.Highlight(2)
	require.Equal(t, before, buf.formats)
}

func TestSession_ScrollsActiveMatchIntoView(t *testing.T) {
	// Fake rows are 10 runes wide; "target" at 45 sits on row 4.
	text := "..........................................   target"
	s, buf := openSession(t, text, WithScrollContext(2))

	s.SetFindText("target")
	require.Equal(t, []int{2}, buf.scrolls)

	s2, buf2 := openSession(t, "target", WithScrollContext(5))
	s2.SetFindText("target")
	require.Equal(t, []int{0}, buf2.scrolls, "scroll position is clamped at the top")
}

func TestSession_NavigationWraps(t *testing.T) {
	s, _ := openSession(t, "x x x")
	s.SetFindText("x")
	require.Equal(t, 1, s.Current())

	s.Next()
	s.Next()
	require.Equal(t, 3, s.Current())
	s.Next()
	require.Equal(t, 1, s.Current())

	s.Previous()
	require.Equal(t, 3, s.Current())
	s.Previous()
	require.Equal(t, 2, s.Current())
}

func TestSession_NavigationWithoutMatchesIsNoop(t *testing.T) {
	s, buf := openSession(t, "abc")
	s.SetFindText("z")

	s.Next()
	s.Previous()
	require.Equal(t, 0, s.Current())
	require.Zero(t, buf.formats)
}

func TestSession_ReplaceRescans(t *testing.T) {
	s, buf := openSession(t, "cat cat cat")
	s.SetQuery(Query{FindText: "cat", ReplaceText: "dog"})
	s.Next()
	require.Equal(t, 2, s.Current())

	s.Replace()

	require.Equal(t, "cat dog cat", buf.PlainText())
	require.Equal(t, []Match{{0, 3}, {8, 3}}, s.Matches())
	require.Equal(t, 1, s.Current())
	require.Equal(t, HasMatches, s.State())
}

func TestSession_ReplaceWaitsForSettle(t *testing.T) {
	buf := &deferredBuffer{newFake("cat cat")}
	s := New(buf)
	s.Open()
	s.SetQuery(Query{FindText: "cat", ReplaceText: "lion"})

	s.Replace()
	require.Equal(t, "lion cat", buf.PlainText())
	require.Equal(t, Scanning, s.State())
	require.Equal(t, []Match{{0, 3}, {4, 3}}, s.Matches(), "matches are untouched until the buffer settles")

	buf.flush()
	require.Equal(t, []Match{{5, 3}}, s.Matches())
	require.Equal(t, HasMatches, s.State())
}

func TestSession_StaleSettleIsDropped(t *testing.T) {
	buf := &deferredBuffer{newFake("cat cat")}
	s := New(buf)
	s.Open()
	s.SetQuery(Query{FindText: "cat", ReplaceText: "dog"})

	s.Replace()
	s.SetFindText("dog")
	require.Equal(t, []Match{{0, 3}}, s.Matches())

	buf.flush()
	require.Equal(t, "dog", s.Query().FindText)
	require.Equal(t, []Match{{0, 3}}, s.Matches())
}

func TestSession_ReplaceWithoutActiveMatchIsNoop(t *testing.T) {
	s, buf := openSession(t, "cat")
	s.SetQuery(Query{FindText: "dog", ReplaceText: "x"})

	s.Replace()
	require.Equal(t, "cat", buf.PlainText())
}

func TestSession_ReplaceAllRightmostFirst(t *testing.T) {
	s, buf := openSession(t, "a-a-a")
	s.SetQuery(Query{FindText: "a", ReplaceText: "bb"})

	n := s.ReplaceAll()

	require.Equal(t, 3, n)
	require.Equal(t, "bb-bb-bb", buf.PlainText())
	require.Equal(t, "", s.Query().FindText)
	require.Equal(t, "bb", s.Query().ReplaceText)
	require.Equal(t, Idle, s.State())
	require.Empty(t, s.Matches())
	require.Equal(t, "delete(4,1)", buf.calls[len(buf.calls)-7], "rightmost match is replaced first")
	for i := range buf.PlainText() {
		require.Equal(t, "", buf.backgroundAt(i))
	}
}

// Replaying the same recorded offsets left to right corrupts the result,
// which is why ReplaceAll walks the match set in reverse.
func TestSession_ReplaceAllLeftToRightWouldCorrupt(t *testing.T) {
	buf := newFake("a-a-a")
	matches := Locate(buf.PlainText(), "a", true)
	for _, m := range matches {
		buf.DeleteRange(m.Index, m.Length)
		buf.InsertText(m.Index, "bb")
	}
	require.NotEqual(t, "bb-bb-bb", buf.PlainText())
	require.Equal(t, "bbbbbb-a", buf.PlainText())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s, buf := openSession(t, "cat cat")
	s.SetFindText("cat")

	s.Close()
	formats := buf.formats
	s.Close()

	require.Equal(t, Query{}, s.Query())
	require.Equal(t, formats, buf.formats, "second close has nothing to clear")
	for i := range buf.PlainText() {
		require.Equal(t, "", buf.backgroundAt(i))
	}
}

func TestSession_CloseWithDetachedBuffer(t *testing.T) {
	s, buf := openSession(t, "cat cat")
	s.SetFindText("cat")

	buf.ready = false
	require.NotPanics(t, s.Close)
	require.NotPanics(t, s.Close)
	require.Equal(t, Query{}, s.Query())

	nilSession := New(nil)
	nilSession.Open()
	nilSession.SetFindText("cat")
	require.NotPanics(t, nilSession.Close)
	require.Equal(t, Query{}, nilSession.Query())
}

func TestSession_NotReadyBufferIsNeverTouched(t *testing.T) {
	buf := newFake("cat")
	buf.ready = false
	s := New(buf)
	s.Open()

	s.SetFindText("cat")
	s.Replace()
	s.ReplaceAll()
	require.Empty(t, buf.calls)

	buf.ready = true
	s.Attach(buf)
	s.Rescan()
	require.Len(t, s.Matches(), 1)
}

func TestSession_Status(t *testing.T) {
	s, _ := openSession(t, "The quick brown fox")

	st := s.Status()
	require.Equal(t, "idle", st.State)
	require.Empty(t, st.Label)

	s.SetFindText("quick")
	st = s.Status()
	require.Equal(t, "has-matches", st.State)
	require.Equal(t, "1 of 1 matches", st.Label)

	s.SetFindText("quik")
	st = s.Status()
	require.Equal(t, "No matches found", st.Label)
	require.Contains(t, st.Suggestions, "quick")
}

func TestSession_QueryIsNormalized(t *testing.T) {
	s, _ := openSession(t, "caf\u00e9")

	s.SetFindText("cafe\u0301")
	require.Equal(t, []Match{{0, 4}}, s.Matches())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "closed", Closed.String())
	require.Equal(t, "no-matches", NoMatches.String())
	require.Equal(t, "State(42)", State(42).String())
}

func TestSession_ReplaceAllDisjointSkipsOverlaps(t *testing.T) {
	s, buf := openSession(t, "aaa")
	s.SetQuery(Query{FindText: "aa", ReplaceText: "b"})
	require.Len(t, s.Matches(), 2)

	require.Equal(t, 1, s.ReplaceAllDisjoint())
	require.Equal(t, "ba", buf.PlainText())
	require.Equal(t, Idle, s.State())
}

func TestSession_QueryChangeWhileNotReadyDropsMatches(t *testing.T) {
	s, buf := openSession(t, "cat dog cat")
	s.SetQuery(Query{FindText: "cat", ReplaceText: "X"})
	require.Len(t, s.Matches(), 2)

	buf.ready = false
	s.SetFindText("dog")
	require.Equal(t, "dog", s.Query().FindText)
	require.Empty(t, s.Matches())
	require.Equal(t, 0, s.Current())
	require.Equal(t, Idle, s.State())

	buf.ready = true
	s.Replace()
	require.Equal(t, "cat dog cat", buf.PlainText())

	s.Attach(buf)
	require.Equal(t, []Match{{4, 3}}, s.Matches())
	require.Equal(t, HasMatches, s.State())
}

func TestSession_NavigationWaitsForPendingRescan(t *testing.T) {
	buf := &deferredBuffer{newFake("cat cat cat")}
	s := New(buf)
	s.Open()
	s.SetQuery(Query{FindText: "cat", ReplaceText: "dog"})

	s.Replace()
	require.Equal(t, Scanning, s.State())
	formats := buf.formats

	s.Next()
	s.Previous()
	s.Replace()
	require.Equal(t, 0, s.ReplaceAll())
	require.Equal(t, 1, s.Current())
	require.Equal(t, formats, buf.formats)
	require.Equal(t, "dog cat cat", buf.PlainText())

	buf.flush()
	require.Equal(t, []Match{{4, 3}, {8, 3}}, s.Matches())
	s.Next()
	require.Equal(t, 2, s.Current())
}
