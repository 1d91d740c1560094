package cursor

import (
	"fmt"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/edit"
)

// Cursor is one edit point in a window.
type Cursor struct {
	Point uint64
	Mark  uint64

	// LocalCopyChain is this cursor's kill ring, used while the window
	// has more than one cursor.
	LocalCopyChain *CopyChain

	// Snapshots taken by StartPaste and advanced by AdvancePaste.
	pasteLocal  *CopyChain
	pasteGlobal *CopyChain
}

// New creates a cursor with point and mark at pos.
func New(pos uint64) *Cursor {
	return &Cursor{Point: pos, Mark: pos}
}

// Region returns the span between mark and point in ascending order.
func (c *Cursor) Region() (start, end uint64) {
	if c.Mark < c.Point {
		return c.Mark, c.Point
	}
	return c.Point, c.Mark
}

// HasRegion returns true if mark and point differ.
func (c *Cursor) HasRegion() bool {
	return c.Mark != c.Point
}

// SetMark places the mark at the point.
func (c *Cursor) SetMark() {
	c.Mark = c.Point
}

// Clamp limits point and mark to [0, max].
func (c *Cursor) Clamp(max uint64) {
	c.Point = min(c.Point, max)
	c.Mark = min(c.Mark, max)
}

// Clone returns a copy sharing the kill-ring nodes.
func (c *Cursor) Clone() *Cursor {
	clone := *c
	return &clone
}

// Adjust moves point and mark across unseen buffer changes.
func (c *Cursor) Adjust(changes []buffer.Change) {
	buffer.AdjustPositions(changes, &c.Point, &c.Mark)
}

// AdjustMark moves only the mark across edits the window applied itself.
func (c *Cursor) AdjustMark(edits []edit.Edit) {
	edit.PositionAfterEdits(edits, &c.Mark)
}

// StartPaste snapshots the local and global kill rings and returns the
// entry to paste: the local head if there is one, otherwise the global
// head. It returns nil if both are empty.
func (c *Cursor) StartPaste(global *CopyChain) *CopyChain {
	c.pasteLocal = c.LocalCopyChain
	c.pasteGlobal = global
	return c.PasteEntry()
}

// PasteEntry returns the entry the current paste sequence points at.
func (c *Cursor) PasteEntry() *CopyChain {
	if c.pasteLocal != nil {
		return c.pasteLocal
	}
	return c.pasteGlobal
}

// AdvancePaste steps the paste sequence to the previous entry. The local
// ring is walked first; once it is exhausted the global ring is walked.
// It returns false, leaving the sequence unchanged, when there is no
// older entry.
func (c *Cursor) AdvancePaste() bool {
	if c.pasteLocal != nil {
		if c.pasteLocal.Previous != nil {
			c.pasteLocal = c.pasteLocal.Previous
			return true
		}
		if c.pasteGlobal != nil {
			c.pasteLocal = nil
			return true
		}
		return false
	}
	if c.pasteGlobal != nil && c.pasteGlobal.Previous != nil {
		c.pasteGlobal = c.pasteGlobal.Previous
		return true
	}
	return false
}

// CanAdvancePaste reports whether AdvancePaste would succeed.
func (c *Cursor) CanAdvancePaste() bool {
	if c.pasteLocal != nil {
		return c.pasteLocal.Previous != nil || c.pasteGlobal != nil
	}
	return c.pasteGlobal != nil && c.pasteGlobal.Previous != nil
}

// String returns a string representation of the cursor.
func (c *Cursor) String() string {
	if c.HasRegion() {
		return fmt.Sprintf("Cursor(%d, mark %d)", c.Point, c.Mark)
	}
	return fmt.Sprintf("Cursor(%d)", c.Point)
}
