// Package window binds cursors, a kill ring and a scroll anchor to a
// buffer and implements the editing commands built on them.
//
// A Window records how much of its buffer's change log it has seen.
// Changes made through other windows are applied lazily: every command,
// and any caller about to read stored positions, first calls Update.
package window

import (
	"errors"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/cursor"
	"github.com/dshills/stormcore/internal/engine/edit"
)

// Errors surfaced to the user by window commands.
var (
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrNothingToPaste = errors.New("nothing to paste")
	ErrNoPaste        = errors.New("last command was not a paste")
	ErrNoPrevious     = errors.New("no previous kill-ring entry")
	ErrNoRegion       = errors.New("no region")
)

// Clipboard mirrors single-cursor copies to the system clipboard.
type Clipboard interface {
	SetText(text string) error
}

// Option configures a Window.
type Option func(*Window)

// WithClipboard mirrors global kill-ring pushes to c.
func WithClipboard(c Clipboard) Option {
	return func(w *Window) {
		w.clipboard = c
	}
}

// WithPoint places the initial cursor at pos.
func WithPoint(pos uint64) Option {
	return func(w *Window) {
		w.cursors = cursor.NewSet(pos)
	}
}

// pasteRecord identifies the commit made by the last paste.
type pasteRecord struct {
	valid       bool
	commitIndex int
	changeCount int
}

// Window is one view of a buffer.
type Window struct {
	buf         *buffer.Buffer
	changeIndex int

	cursors *cursor.Set
	global  *cursor.CopyChain

	// start is the scroll anchor: the first visible position.
	start uint64

	clipboard Clipboard
	lastPaste pasteRecord
}

// New creates a window on buf. Changes already in buf's log are treated
// as seen.
func New(buf *buffer.Buffer, opts ...Option) *Window {
	w := &Window{
		buf:         buf,
		changeIndex: buf.ChangeCount(),
		cursors:     cursor.NewSet(0),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.cursors.Clamp(buf.Len())
	return w
}

// Buffer returns the window's buffer.
func (w *Window) Buffer() *buffer.Buffer {
	return w.buf
}

// ChangeIndex returns the number of buffer changes the window has seen.
func (w *Window) ChangeIndex() int {
	return w.changeIndex
}

// Update applies every unseen buffer change to the cursors and the
// scroll anchor.
func (w *Window) Update() {
	changes := w.buf.ChangesSince(w.changeIndex)
	if len(changes) == 0 {
		return
	}
	for _, c := range w.cursors.All() {
		c.Adjust(changes)
	}
	buffer.AdjustPositions(changes, &w.start)

	n := w.buf.Len()
	w.cursors.Clamp(n)
	w.start = min(w.start, n)
	w.cursors.Normalize()
	w.changeIndex = w.buf.ChangeCount()
}

// Cursors returns the window's cursors after catching up.
func (w *Window) Cursors() *cursor.Set {
	w.Update()
	return w.cursors
}

// Point returns the primary cursor's point.
func (w *Window) Point() uint64 {
	w.Update()
	return w.cursors.Primary().Point
}

// Start returns the scroll anchor.
func (w *Window) Start() uint64 {
	w.Update()
	return w.start
}

// SetStart moves the scroll anchor.
func (w *Window) SetStart(pos uint64) {
	w.Update()
	w.start = min(pos, w.buf.Len())
}

// GlobalCopyChain returns the head of the window's shared kill ring.
func (w *Window) GlobalCopyChain() *cursor.CopyChain {
	return w.global
}

// commit applies the batch and positions the cursors explicitly. The
// batch must hold one recorded point per cursor, in cursor order.
func (w *Window) commit(batch *cursor.Batch) error {
	return w.commitPoints(batch, batch.Points())
}

// commitPoints commits batch and moves the cursors, in order, to points.
func (w *Window) commitPoints(batch *cursor.Batch, points []uint64) error {
	tx := batch.Transaction()
	if tx.Len() == 0 {
		tx.Drop()
		return nil
	}
	edits := tx.Edits()
	if err := w.buf.Commit(tx); err != nil {
		return err
	}

	for i, c := range w.cursors.All() {
		if i < len(points) {
			c.Point = points[i]
		}
		c.AdjustMark(edits)
	}
	edit.PositionAfterEdits(edits, &w.start)
	w.cursors.Normalize()
	w.changeIndex = w.buf.ChangeCount()
	w.lastPaste.valid = false
	return nil
}
