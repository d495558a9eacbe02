// Package workspace keeps posts open for editing. Each open post is a live
// document with its own find session; edits made through the workspace keep
// an open search in step with the text.
package workspace

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/blogpad/blogpad-mcp/internal/document"
	"github.com/blogpad/blogpad-mcp/internal/findreplace"
	"github.com/blogpad/blogpad-mcp/internal/logging"
	"github.com/blogpad/blogpad-mcp/internal/posts"
	"github.com/blogpad/blogpad-mcp/internal/types"
)

var (
	ErrNotOpen     = errors.New("post is not open")
	ErrAlreadyOpen = errors.New("post is already open")
)

// Info describes an open post.
type Info struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	Length   int    `json:"length"`
	Version  int    `json:"version"`
	Dirty    bool   `json:"dirty"`
	FindOpen bool   `json:"findOpen"`
}

type entry struct {
	path        string
	doc         *document.Document
	find        *findreplace.Session
	frontmatter map[string]any
	title       string
	saved       string
}

func (e *entry) info() Info {
	return Info{
		Path:     e.path,
		Title:    e.title,
		Length:   e.doc.Len(),
		Version:  e.doc.Version(),
		Dirty:    e.doc.Markup() != e.saved,
		FindOpen: e.find.IsOpen(),
	}
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithWidth sets the layout width of opened documents.
func WithWidth(cols int) Option {
	return func(w *Workspace) {
		if cols > 0 {
			w.width = cols
		}
	}
}

// WithScrollContext sets how many rows a find session keeps above the
// active match.
func WithScrollContext(rows int) Option {
	return func(w *Workspace) {
		if rows >= 0 {
			w.scrollContext = rows
		}
	}
}

// Workspace holds the open posts. It is safe for concurrent use; every
// operation on a post runs under one lock.
type Workspace struct {
	store         *posts.Service
	width         int
	scrollContext int

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty workspace over store.
func New(store *posts.Service, opts ...Option) *Workspace {
	w := &Workspace{
		store:         store,
		width:         document.DefaultWidth,
		scrollContext: findreplace.DefaultScrollContext,
		entries:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func key(p string) string {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	return path.Clean(p)
}

// Open loads a post into a new document.
func (w *Workspace) Open(p string) (Info, error) {
	k := key(p)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entries[k]; ok {
		return Info{}, fmt.Errorf("%s: %w", k, ErrAlreadyOpen)
	}

	post, err := w.store.ReadPost(k)
	if err != nil {
		return Info{}, err
	}

	doc := document.Parse(post.Content, document.WithWidth(w.width))
	e := &entry{
		path:        k,
		doc:         doc,
		find:        findreplace.New(doc, findreplace.WithScrollContext(w.scrollContext)),
		frontmatter: post.Frontmatter,
		title:       post.Meta.Title,
		saved:       doc.Markup(),
	}
	w.entries[k] = e

	logging.L().Debugw("post opened", "post", k, "length", doc.Len())
	return e.info(), nil
}

func (w *Workspace) get(p string) (*entry, error) {
	k := key(p)
	e, ok := w.entries[k]
	if !ok {
		return nil, fmt.Errorf("%s: %w", k, ErrNotOpen)
	}
	return e, nil
}

// Document runs fn with the open document for p.
func (w *Workspace) Document(p string, fn func(*document.Document) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return err
	}
	return fn(e.doc)
}

// Find runs fn with the find session and document for p.
func (w *Workspace) Find(p string, fn func(*findreplace.Session, *document.Document) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return err
	}
	return fn(e.find, e.doc)
}

// edit applies fn as one batch and brings an open search up to date.
func (w *Workspace) edit(p string, fn func(*document.Document)) (Info, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return Info{}, err
	}

	e.doc.Begin()
	fn(e.doc)
	e.doc.Commit()
	e.find.Rescan()

	return e.info(), nil
}

// Insert inserts text at offset.
func (w *Workspace) Insert(p string, offset int, text string) (Info, error) {
	return w.edit(p, func(d *document.Document) {
		d.InsertText(offset, text)
	})
}

// Delete removes length characters at offset.
func (w *Workspace) Delete(p string, offset, length int) (Info, error) {
	return w.edit(p, func(d *document.Document) {
		d.DeleteRange(offset, length)
	})
}

// Format sets an inline attribute over a range. A nil or false value clears
// it. The background attribute belongs to search marking and is rejected.
func (w *Workspace) Format(p string, offset, length int, attr string, value any) (Info, error) {
	switch attr {
	case document.AttrBold, document.AttrItalic, document.AttrCode, document.AttrLink:
	default:
		return Info{}, fmt.Errorf("unsupported attribute %q", attr)
	}
	return w.edit(p, func(d *document.Document) {
		d.FormatRange(offset, length, attr, value)
	})
}

// InsertBreak inserts a page or section break at offset.
func (w *Workspace) InsertBreak(p string, offset int, kind document.EmbedKind) (Info, error) {
	e := document.Embed{Kind: kind}
	if !e.Block() {
		return Info{}, fmt.Errorf("unsupported break %q", kind)
	}
	return w.edit(p, func(d *document.Document) {
		d.InsertEmbed(offset, e)
	})
}

// Save writes the document back to its post. The frontmatter on disk is
// kept; if the post has gone, the frontmatter it was opened with is used.
func (w *Workspace) Save(p string) (Info, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return Info{}, err
	}

	var fm map[string]any
	if !w.store.Exists(e.path) {
		fm = maps.Clone(e.frontmatter)
	}

	markup := e.doc.Markup()
	if err := w.store.WritePost(types.PostWriteParams{
		Path:        e.path,
		Content:     markup,
		Frontmatter: fm,
		Mode:        types.ModeOverwrite,
	}); err != nil {
		return Info{}, err
	}
	e.saved = markup

	if post, err := w.store.ReadPost(e.path); err == nil {
		e.frontmatter = post.Frontmatter
		e.title = post.Meta.Title
	}

	logging.L().Debugw("post saved", "post", e.path, "version", e.doc.Version())
	return e.info(), nil
}

// Close closes the find session, then detaches the document. Unsaved
// changes are discarded. It reports whether the post was open; closing a
// post twice is harmless.
func (w *Workspace) Close(p string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := key(p)
	e, ok := w.entries[k]
	if !ok {
		return false
	}
	e.find.Close()
	e.doc.Detach()
	delete(w.entries, k)

	logging.L().Debugw("post closed", "post", k)
	return true
}

// CloseAll closes every open post.
func (w *Workspace) CloseAll() {
	for _, p := range w.Paths() {
		w.Close(p)
	}
}

// Info describes the open post at p.
func (w *Workspace) Info(p string) (Info, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return Info{}, err
	}
	return e.info(), nil
}

// Stats computes document statistics for the open post at p.
func (w *Workspace) Stats(p string) (document.Stats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.get(p)
	if err != nil {
		return document.Stats{}, err
	}
	return e.doc.Stats(), nil
}

// Paths lists the open posts, sorted.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Sorted(maps.Keys(w.entries))
}
