package document

// Begin opens a mutation batch. Batches nest; listeners and settle
// callbacks run when the outermost batch commits.
func (d *Document) Begin() {
	d.depth++
}

// Commit closes the innermost batch.
func (d *Document) Commit() {
	if d.depth == 0 {
		return
	}
	d.depth--
	if d.depth == 0 {
		d.settle()
	}
}

// WhenSettled runs fn once no batch is open: immediately when the document
// is idle, otherwise after the outermost Commit.
func (d *Document) WhenSettled(fn func()) {
	if d.depth == 0 {
		fn()
		return
	}
	d.pending = append(d.pending, fn)
}

// OnChange registers fn to be called once per settled batch that changed the
// document.
func (d *Document) OnChange(fn func(Change)) {
	d.listeners = append(d.listeners, fn)
}

func (d *Document) mutated() {
	d.version++
	d.dirty = true
	if d.depth == 0 {
		d.settle()
	}
}

func (d *Document) settle() {
	if d.dirty {
		d.dirty = false
		ch := Change{Version: d.version}
		for _, fn := range d.listeners {
			fn(ch)
		}
	}
	pending := d.pending
	d.pending = nil
	for _, fn := range pending {
		fn()
	}
}
