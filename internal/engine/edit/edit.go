// Package edit defines atomic text edits, the position adjustment rules
// that let independent observers follow them, and the transactions that
// group edits into commits.
package edit

import (
	"fmt"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/sso"
)

// Kind is a bit set describing an edit.
type Kind uint8

// Kind bits.
const (
	// InsertMask is set for insertions and clear for removals.
	InsertMask Kind = 1 << iota

	// AfterPositionMask resolves ties for tracked positions equal to the
	// edit position: the inserted text appears to the right of them.
	AfterPositionMask
)

// Edit kinds.
const (
	Remove      Kind = 0
	Insert      Kind = InsertMask
	RemoveAfter Kind = AfterPositionMask
	InsertAfter Kind = InsertMask | AfterPositionMask
)

// IsInsert returns true for insertions.
func (k Kind) IsInsert() bool {
	return k&InsertMask != 0
}

// IsAfterPosition returns true if the after-position bit is set.
func (k Kind) IsAfterPosition() bool {
	return k&AfterPositionMask != 0
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Remove:
		return "remove"
	case Insert:
		return "insert"
	case RemoveAfter:
		return "remove-after"
	case InsertAfter:
		return "insert-after"
	default:
		return "unknown"
	}
}

// Edit is one atomic insertion or removal.
// Edits are immutable once pushed to a transaction.
type Edit struct {
	Value    sso.String
	Position uint64
	Kind     Kind
}

// NewInsert creates an insertion of text at pos.
func NewInsert(pos uint64, text string) Edit {
	return Edit{Value: sso.FromString(text), Position: pos, Kind: Insert}
}

// NewInsertAfter creates an insertion that leaves positions equal to pos
// in place.
func NewInsertAfter(pos uint64, text string) Edit {
	return Edit{Value: sso.FromString(text), Position: pos, Kind: InsertAfter}
}

// NewRemove creates a removal of text, which must be the bytes found at
// pos.
func NewRemove(pos uint64, text string) Edit {
	return Edit{Value: sso.FromString(text), Position: pos, Kind: Remove}
}

// Len returns the length of the edit's value.
func (e Edit) Len() uint64 {
	return uint64(e.Value.Len())
}

// End returns the position just past the edit's value.
func (e Edit) End() uint64 {
	return e.Position + e.Len()
}

// Delta returns the change in buffer length caused by the edit.
func (e Edit) Delta() int64 {
	if e.Kind.IsInsert() {
		return int64(e.Len())
	}
	return -int64(e.Len())
}

// Inverse returns the edit that undoes e: an insertion becomes a removal
// of the same value at the same position and vice versa. The
// after-position bit is kept.
func (e Edit) Inverse() Edit {
	e.Kind ^= InsertMask
	return e
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	return fmt.Sprintf("%s(%d, %q)", e.Kind, e.Position, e.Value.String())
}

// Apply performs e on c.
func Apply(c *contents.Contents, e Edit) {
	if e.Kind.IsInsert() {
		c.Insert(e.Position, e.Value.Bytes())
		return
	}
	c.Remove(e.Position, e.Len())
}

// ApplyInverse undoes e on c.
func ApplyInverse(c *contents.Contents, e Edit) {
	Apply(c, e.Inverse())
}
