package window

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dshills/stormcore/internal/engine/cursor"
	"github.com/dshills/stormcore/internal/engine/edit"
	"github.com/dshills/stormcore/internal/engine/sso"
)

func (w *Window) newBatch() *cursor.Batch {
	return cursor.NewBatch(w.buf.NewTransaction())
}

// abort drops the batch's transaction and returns err.
func abort(batch *cursor.Batch, err error) error {
	batch.Transaction().Drop()
	return err
}

// InsertText inserts text at every cursor. With after set the cursors
// stay in front of the inserted text.
func (w *Window) InsertText(text string, after bool) error {
	w.Update()
	if text == "" {
		return nil
	}
	batch := w.newBatch()
	value := batch.Transaction().String(text)
	for _, c := range w.cursors.All() {
		if _, err := batch.Insert(c.Point, value, after); err != nil {
			return abort(batch, err)
		}
	}
	return w.commit(batch)
}

// DeleteBackward removes up to n bytes before every cursor. Spans that
// would overlap the previous cursor's are shortened.
func (w *Window) DeleteBackward(n uint64) error {
	w.Update()
	batch := w.newBatch()
	for _, cur := range w.cursors.All() {
		start := cur.Point - min(n, cur.Point)
		start = max(start, batch.Last())
		if err := w.remove(batch, start, max(cur.Point, start)); err != nil {
			return abort(batch, err)
		}
	}
	return w.commit(batch)
}

// DeleteForward removes up to n bytes after every cursor.
func (w *Window) DeleteForward(n uint64) error {
	w.Update()
	length := w.buf.Len()
	batch := w.newBatch()
	for _, cur := range w.cursors.All() {
		start := min(max(cur.Point, batch.Last()), length)
		end := start + min(n, length-start)
		if err := w.remove(batch, start, end); err != nil {
			return abort(batch, err)
		}
	}
	return w.commit(batch)
}

// DeleteRegion removes the region of every cursor. Overlapping regions
// are removed once; every cursor ends up where its region started.
func (w *Window) DeleteRegion() error {
	w.Update()
	type span struct{ start, end uint64 }
	cursors := w.cursors.All()
	spans := make([]span, 0, len(cursors))
	for _, cur := range cursors {
		if start, end := cur.Region(); start < end {
			spans = append(spans, span{start, end})
		}
	}
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Compare(a.start, b.start)
	})
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && sp.start <= merged[n-1].end {
			merged[n-1].end = max(merged[n-1].end, sp.end)
			continue
		}
		merged = append(merged, sp)
	}

	batch := w.newBatch()
	for _, sp := range merged {
		if err := w.remove(batch, sp.start, sp.end); err != nil {
			return abort(batch, err)
		}
	}
	edits := batch.Transaction().Edits()
	points := make([]uint64, len(cursors))
	for i, cur := range cursors {
		points[i], _ = cur.Region()
		edit.PositionAfterEdits(edits, &points[i])
	}
	return w.commitPoints(batch, points)
}

// remove pushes the removal of [start, end), or records a cursor without
// an edit when the span is empty.
func (w *Window) remove(batch *cursor.Batch, start, end uint64) error {
	if start >= end {
		_, err := batch.Skip(start)
		return err
	}
	value := batch.Transaction().Slice(w.buf.Contents(), start, end)
	_, err := batch.Remove(start, value, false)
	return err
}

// Copy pushes every cursor's region onto the kill ring. With one cursor
// the window's global ring is used and mirrored to the clipboard; with
// several, each cursor's local ring.
func (w *Window) Copy() error {
	w.Update()
	c := w.buf.Contents()
	multi := w.cursors.IsMulti()
	copied := false
	for _, cur := range w.cursors.All() {
		if !cur.HasRegion() {
			continue
		}
		start, end := cur.Region()
		value := sso.FromString(c.SliceString(start, end))
		copied = true
		if multi {
			cur.LocalCopyChain = cursor.PushCopy(cur.LocalCopyChain, value)
			continue
		}
		w.global = cursor.PushCopy(w.global, value)
		if w.clipboard != nil {
			if err := w.clipboard.SetText(value.String()); err != nil {
				return fmt.Errorf("clipboard: %w", err)
			}
		}
	}
	if !copied {
		return ErrNoRegion
	}
	return nil
}

// Cut copies every region and then removes it.
func (w *Window) Cut() error {
	if err := w.Copy(); err != nil {
		return err
	}
	return w.DeleteRegion()
}

// Paste starts a paste sequence: every cursor inserts the head of its
// local ring, or of the global ring when it has none. The mark is left
// at the start of the pasted text.
func (w *Window) Paste() error {
	w.Update()
	for _, cur := range w.cursors.All() {
		cur.StartPaste(w.global)
	}
	return w.insertPasteEntries()
}

// PastePrevious replaces the text inserted by the last paste with the
// previous kill-ring entry. The old paste is undone, so cycling does not
// grow the history. It fails with ErrNoPaste if anything was committed
// since that paste and with ErrNoPrevious if no cursor has an older
// entry; in both cases nothing changes.
func (w *Window) PastePrevious() error {
	w.Update()
	if !w.pasteIsLast() {
		return ErrNoPaste
	}
	advanced := false
	for _, cur := range w.cursors.All() {
		if cur.CanAdvancePaste() {
			advanced = true
		}
	}
	if !advanced {
		return ErrNoPrevious
	}
	for _, cur := range w.cursors.All() {
		cur.AdvancePaste()
	}

	if !w.buf.Undo() {
		return ErrNothingToUndo
	}
	w.Update()
	return w.insertPasteEntries()
}

func (w *Window) pasteIsLast() bool {
	p := w.lastPaste
	return p.valid &&
		p.commitIndex == w.buf.CommitIndex() &&
		p.changeCount == w.buf.ChangeCount()
}

func (w *Window) insertPasteEntries() error {
	batch := w.newBatch()
	starts := make([]uint64, w.cursors.Count())
	pasted := false
	for i, cur := range w.cursors.All() {
		entry := cur.PasteEntry()
		if entry == nil {
			p, err := batch.Skip(cur.Point)
			if err != nil {
				return abort(batch, err)
			}
			starts[i] = p
			continue
		}
		p, err := batch.Insert(cur.Point, entry.Value, false)
		if err != nil {
			return abort(batch, err)
		}
		starts[i] = p - uint64(entry.Value.Len())
		pasted = true
	}
	if !pasted {
		return abort(batch, ErrNothingToPaste)
	}
	if err := w.commit(batch); err != nil {
		return err
	}
	for i, cur := range w.cursors.All() {
		cur.Mark = starts[i]
	}
	w.lastPaste = pasteRecord{
		valid:       true,
		commitIndex: w.buf.CommitIndex(),
		changeCount: w.buf.ChangeCount(),
	}
	return nil
}

// Undo reverts the buffer's last commit.
func (w *Window) Undo() error {
	w.Update()
	if !w.buf.Undo() {
		return ErrNothingToUndo
	}
	w.Update()
	return nil
}

// Redo reapplies the buffer's last undone commit.
func (w *Window) Redo() error {
	w.Update()
	if !w.buf.Redo() {
		return ErrNothingToRedo
	}
	w.Update()
	return nil
}

// AddCursor adds a cursor at pos. The new cursor starts with an empty
// local kill ring.
func (w *Window) AddCursor(pos uint64) {
	w.Update()
	w.cursors.Add(cursor.New(min(pos, w.buf.Len())))
}

// SetMark places every cursor's mark at its point.
func (w *Window) SetMark() {
	w.Update()
	for _, cur := range w.cursors.All() {
		cur.SetMark()
	}
}

// SetPoint moves the primary cursor to pos, leaving its mark in place.
func (w *Window) SetPoint(pos uint64) {
	w.Update()
	w.cursors.Primary().Point = min(pos, w.buf.Len())
	w.cursors.Normalize()
}

// ClearCursors removes every cursor but the primary one.
func (w *Window) ClearCursors() {
	w.Update()
	w.cursors.Clear()
}
