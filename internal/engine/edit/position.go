package edit

// PositionAfterEdit moves pos from the buffer state before e to the state
// after it.
//
//   - Insert: positions at or after e.Position shift right.
//   - InsertAfter: only positions strictly after e.Position shift.
//   - Remove, RemoveAfter: positions past the removed span shift left;
//     positions inside it collapse to e.Position.
func PositionAfterEdit(e Edit, pos *uint64) {
	n := e.Len()
	if e.Kind.IsInsert() {
		if e.Kind.IsAfterPosition() {
			if *pos > e.Position {
				*pos += n
			}
			return
		}
		if *pos >= e.Position {
			*pos += n
		}
		return
	}

	if *pos >= e.Position+n {
		*pos -= n
	} else if *pos > e.Position {
		*pos = e.Position
	}
}

// PositionBeforeEdit moves pos from the buffer state after e back to the
// state before it. It is PositionAfterEdit of e's inverse.
func PositionBeforeEdit(e Edit, pos *uint64) {
	PositionAfterEdit(e.Inverse(), pos)
}

// PositionAfterEdits applies PositionAfterEdit for each edit in order.
func PositionAfterEdits(edits []Edit, pos *uint64) {
	for i := range edits {
		PositionAfterEdit(edits[i], pos)
	}
}

// PositionBeforeEdits applies PositionBeforeEdit for each edit in
// reverse order.
func PositionBeforeEdits(edits []Edit, pos *uint64) {
	for i := len(edits) - 1; i >= 0; i-- {
		PositionBeforeEdit(edits[i], pos)
	}
}
