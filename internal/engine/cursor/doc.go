// Package cursor provides edit points, the kill ring and the helper that
// turns per-cursor operations into one transaction.
//
// The cursor package handles:
//
//   - Cursor: a point, a mark and a cursor-local kill ring
//   - CopyChain: an immutable, shared kill-ring node
//   - Set: the cursors of one window kept in ascending point order
//   - Batch: per-cursor edits with the running offset applied for the
//     caller
//
// Batch:
//
// Cursors are processed in ascending buffer order. Each cursor passes
// positions in the coordinates of the buffer before the transaction; the
// batch adds the net length delta of the edits already pushed and
// rejects positions that go backwards:
//
//	b := cursor.NewBatch(tx)
//	for _, c := range set.All() {
//	    point, err := b.Insert(c.Point, value, false)
//	    ...
//	}
//
// Kill Ring:
//
// CopyChain nodes are never modified once linked, so a paste sequence can
// keep pointers into a chain while further cuts push new heads.
//
// Thread Safety:
//
// Cursors and sets are owned by a single window and are not safe for
// concurrent use. CopyChain nodes are immutable and may be shared freely.
package cursor
