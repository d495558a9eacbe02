package findreplace

import "fmt"

// fakeBuffer is an in-memory Buffer that records every call.
type fakeBuffer struct {
	text       []rune
	background []string
	ready      bool
	rowWidth   int

	calls    []string
	scrolls  []int
	formats  int
	batching int
	settled  []func()
}

func newFake(text string) *fakeBuffer {
	r := []rune(text)
	return &fakeBuffer{
		text:       r,
		background: make([]string, len(r)),
		ready:      true,
		rowWidth:   10,
	}
}

func (f *fakeBuffer) Ready() bool { return f.ready }

func (f *fakeBuffer) Len() int { return len(f.text) }

func (f *fakeBuffer) PlainText() string { return string(f.text) }

func (f *fakeBuffer) FormatRange(start, length int, attr string, value any) {
	f.formats++
	f.calls = append(f.calls, fmt.Sprintf("format(%d,%d,%s,%v)", start, length, attr, value))
	if attr != AttrBackground {
		return
	}
	color, _ := value.(string)
	for i := start; i < start+length && i < len(f.background); i++ {
		f.background[i] = color
	}
}

func (f *fakeBuffer) DeleteRange(start, length int) {
	f.calls = append(f.calls, fmt.Sprintf("delete(%d,%d)", start, length))
	end := min(start+length, len(f.text))
	f.text = append(f.text[:start:start], f.text[end:]...)
	f.background = append(f.background[:start:start], f.background[end:]...)
}

func (f *fakeBuffer) InsertText(start int, text string) {
	f.calls = append(f.calls, fmt.Sprintf("insert(%d,%q)", start, text))
	r := []rune(text)
	f.text = append(f.text[:start:start], append(r, f.text[start:]...)...)
	f.background = append(f.background[:start:start], append(make([]string, len(r)), f.background[start:]...)...)
}

func (f *fakeBuffer) Bounds(offset int) Bounds {
	return Bounds{Top: offset / f.rowWidth, Left: offset % f.rowWidth, Height: 1}
}

func (f *fakeBuffer) ScrollTo(top int) {
	f.scrolls = append(f.scrolls, top)
}

// deferredBuffer holds settle callbacks until flush is called, like an
// editor that applies mutations on its next tick.
type deferredBuffer struct {
	*fakeBuffer
}

func (d *deferredBuffer) WhenSettled(fn func()) {
	d.settled = append(d.settled, fn)
}

func (d *deferredBuffer) flush() {
	pending := d.settled
	d.settled = nil
	for _, fn := range pending {
		fn()
	}
}

func (f *fakeBuffer) backgroundAt(i int) string {
	return f.background[i]
}
