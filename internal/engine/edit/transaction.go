package edit

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/sso"
)

// Errors returned while building transactions.
var (
	// ErrAllocation indicates a transaction exceeded its payload budget.
	// The transaction must be dropped; the buffer is unchanged.
	ErrAllocation = errors.New("edit payload allocation failed")

	// ErrDropped indicates use of a dropped or committed transaction.
	ErrDropped = errors.New("transaction already dropped or committed")
)

// Transaction is a batch of edits under construction.
//
// Each pushed edit's position is relative to the buffer state after all
// previously pushed edits of the same transaction have been applied;
// callers keep a running offset (see cursor.Batch).
type Transaction struct {
	edits []Edit
	arena []byte
	used  int

	// limit bounds payload bytes; 0 means unlimited.
	limit int
	bytes int
	done  bool
}

// TransactionOption configures a Transaction.
type TransactionOption func(*Transaction)

// WithByteLimit bounds the payload bytes a transaction may hold.
func WithByteLimit(n int) TransactionOption {
	return func(tx *Transaction) {
		if n > 0 {
			tx.limit = n
		}
	}
}

// NewTransaction creates an empty transaction.
func NewTransaction(opts ...TransactionOption) *Transaction {
	tx := &Transaction{}
	for _, opt := range opts {
		opt(tx)
	}
	return tx
}

// Init reserves room for expectedEdits edits and expectedBytes bytes of
// heap payload.
func (tx *Transaction) Init(expectedEdits, expectedBytes int) {
	if cap(tx.edits)-len(tx.edits) < expectedEdits {
		edits := make([]Edit, len(tx.edits), len(tx.edits)+expectedEdits)
		copy(edits, tx.edits)
		tx.edits = edits
	}
	if cap(tx.arena)-tx.used < expectedBytes {
		tx.arena = make([]byte, 0, expectedBytes)
		tx.used = 0
	}
}

// Alloc returns n bytes of payload storage from the transaction arena.
// It satisfies contents.Allocator.
func (tx *Transaction) Alloc(n int) []byte {
	if cap(tx.arena)-tx.used < n {
		size := 2 * cap(tx.arena)
		if size < n {
			size = n
		}
		if size < 256 {
			size = 256
		}
		tx.arena = make([]byte, 0, size)
		tx.used = 0
	}
	start := tx.used
	tx.used += n
	return tx.arena[start:tx.used:tx.used]
}

// String builds a payload holding s, using the arena for long values.
func (tx *Transaction) String(s string) sso.String {
	if len(s) <= sso.InlineSize {
		return sso.FromString(s)
	}
	b := tx.Alloc(len(s))
	copy(b, s)
	return sso.Wrap(b)
}

// Bytes builds a payload holding a copy of b.
func (tx *Transaction) Bytes(b []byte) sso.String {
	if len(b) <= sso.InlineSize {
		return sso.FromBytes(b)
	}
	dst := tx.Alloc(len(b))
	copy(dst, b)
	return sso.Wrap(dst)
}

// Slice builds a payload holding c's bytes in [start, end).
func (tx *Transaction) Slice(c *contents.Contents, start, end uint64) sso.String {
	return c.Slice(tx.Alloc, c.IteratorAt(start), end)
}

// Push appends an edit.
func (tx *Transaction) Push(e Edit) error {
	if tx.done {
		return ErrDropped
	}
	if tx.limit > 0 && tx.bytes+e.Value.Len() > tx.limit {
		return ErrAllocation
	}
	tx.bytes += e.Value.Len()
	tx.edits = append(tx.edits, e)
	return nil
}

// Edits returns the pushed edits. The slice must not be modified.
func (tx *Transaction) Edits() []Edit {
	return tx.edits
}

// Len returns the number of pushed edits.
func (tx *Transaction) Len() int {
	return len(tx.edits)
}

// IsDone returns true once the transaction was dropped or committed.
func (tx *Transaction) IsDone() bool {
	return tx.done
}

// Drop discards the transaction and its scratch storage.
func (tx *Transaction) Drop() {
	tx.edits = nil
	tx.arena = nil
	tx.used = 0
	tx.bytes = 0
	tx.done = true
}

// Finish seals the transaction into a Commit. The commit takes ownership
// of the edits and their payload storage.
func (tx *Transaction) Finish() (Commit, error) {
	if tx.done {
		return Commit{}, ErrDropped
	}
	c := Commit{
		ID:        uuid.New(),
		Edits:     tx.edits,
		Timestamp: time.Now(),
	}
	tx.edits = nil
	tx.arena = nil
	tx.done = true
	return c, nil
}

// Commit is an applied batch of edits as stored in history.
// Commits are never mutated once recorded.
type Commit struct {
	ID        uuid.UUID
	Edits     []Edit // in application order
	Timestamp time.Time
}

// Apply replays the commit forward on c.
func (cm *Commit) Apply(c *contents.Contents) {
	for i := range cm.Edits {
		Apply(c, cm.Edits[i])
	}
}

// ApplyInverse undoes the commit on c: edits in reverse order, each
// inverted.
func (cm *Commit) ApplyInverse(c *contents.Contents) {
	for i := len(cm.Edits) - 1; i >= 0; i-- {
		ApplyInverse(c, cm.Edits[i])
	}
}

// Delta returns the net change in buffer length.
func (cm *Commit) Delta() int64 {
	var d int64
	for i := range cm.Edits {
		d += cm.Edits[i].Delta()
	}
	return d
}

// IsEmpty returns true if the commit holds no edits.
func (cm *Commit) IsEmpty() bool {
	return len(cm.Edits) == 0
}
