package buffer

import (
	"iter"

	"github.com/dshills/stormcore/internal/engine/edit"
)

// Change is a commit tagged with the direction it was applied in.
type Change struct {
	Commit *edit.Commit
	IsUndo bool
}

// AdjustPosition moves pos from the buffer state before the change to
// the state after it.
func (c Change) AdjustPosition(pos *uint64) {
	if c.IsUndo {
		edit.PositionBeforeEdits(c.Commit.Edits, pos)
		return
	}
	edit.PositionAfterEdits(c.Commit.Edits, pos)
}

// Edits yields the edits as they were effectively applied: forward
// changes in order, undo changes reversed and inverted.
func (c Change) Edits() iter.Seq[edit.Edit] {
	return func(yield func(edit.Edit) bool) {
		edits := c.Commit.Edits
		if !c.IsUndo {
			for _, e := range edits {
				if !yield(e) {
					return
				}
			}
			return
		}
		for i := len(edits) - 1; i >= 0; i-- {
			if !yield(edits[i].Inverse()) {
				return
			}
		}
	}
}

// AdjustPositions applies every change to each position in order.
func AdjustPositions(changes []Change, positions ...*uint64) {
	for _, ch := range changes {
		for _, p := range positions {
			ch.AdjustPosition(p)
		}
	}
}
