package cursor

import (
	"errors"
	"fmt"

	"github.com/dshills/stormcore/internal/engine/edit"
	"github.com/dshills/stormcore/internal/engine/sso"
)

// ErrUnordered is returned when a batch operation starts before the end
// of the previous one.
var ErrUnordered = errors.New("cursor edits out of ascending order")

// Batch pushes the edits of several cursors into one transaction.
// Positions passed to a Batch are in the coordinates of the buffer before
// the transaction; the batch adds the net length delta of edits already
// pushed and records the resulting point of each operation.
type Batch struct {
	tx     *edit.Transaction
	offset int64
	last   uint64
	points []uint64
}

// NewBatch creates a batch pushing to tx.
func NewBatch(tx *edit.Transaction) *Batch {
	return &Batch{tx: tx}
}

// Transaction returns the transaction being built.
func (b *Batch) Transaction() *edit.Transaction {
	return b.tx
}

// Offset returns the net length delta of the edits pushed so far.
func (b *Batch) Offset() int64 {
	return b.offset
}

// Last returns the pre-transaction position where the previous operation
// ended. Later operations must not start before it.
func (b *Batch) Last() uint64 {
	return b.last
}

// Points returns the resulting point of every operation in order, in
// post-transaction coordinates.
func (b *Batch) Points() []uint64 {
	return b.points
}

// Insert inserts value at pos. The resulting point follows the inserted
// text, unless after is set, in which case it stays before it.
func (b *Batch) Insert(pos uint64, value sso.String, after bool) (uint64, error) {
	if err := b.check(pos); err != nil {
		return 0, err
	}
	e := edit.Edit{Value: value, Position: b.shift(pos), Kind: edit.Insert}
	if after {
		e.Kind = edit.InsertAfter
	}
	if err := b.tx.Push(e); err != nil {
		return 0, fmt.Errorf("insert at %d: %w", pos, err)
	}

	point := e.Position
	if !after {
		point = e.End()
	}
	b.last = pos
	b.offset += e.Delta()
	b.points = append(b.points, point)
	return point, nil
}

// Remove removes value, which must be the buffer bytes at pos. The
// resulting point is the start of the removed span.
func (b *Batch) Remove(pos uint64, value sso.String, after bool) (uint64, error) {
	if err := b.check(pos); err != nil {
		return 0, err
	}
	e := edit.Edit{Value: value, Position: b.shift(pos), Kind: edit.Remove}
	if after {
		e.Kind = edit.RemoveAfter
	}
	if err := b.tx.Push(e); err != nil {
		return 0, fmt.Errorf("remove at %d: %w", pos, err)
	}

	b.last = pos + e.Len()
	b.offset += e.Delta()
	b.points = append(b.points, e.Position)
	return e.Position, nil
}

// Skip records a cursor that makes no edit at pos.
func (b *Batch) Skip(pos uint64) (uint64, error) {
	if err := b.check(pos); err != nil {
		return 0, err
	}
	point := b.shift(pos)
	b.last = pos
	b.points = append(b.points, point)
	return point, nil
}

func (b *Batch) check(pos uint64) error {
	if pos < b.last {
		return fmt.Errorf("%w: %d before %d", ErrUnordered, pos, b.last)
	}
	return nil
}

func (b *Batch) shift(pos uint64) uint64 {
	return uint64(int64(pos) + b.offset)
}
