package buffer

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/edit"
)

// Errors returned by buffer operations.
var (
	ErrEmptyTransaction = errors.New("transaction has no edits")
	ErrNoTransaction    = errors.New("nil transaction")
)

// Listener observes buffer mutations. BufferChanged runs synchronously
// at the end of Commit, Undo and Redo, after the change was recorded.
type Listener interface {
	BufferChanged(b *Buffer)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(b *Buffer)

// BufferChanged calls f(b).
func (f ListenerFunc) BufferChanged(b *Buffer) {
	f(b)
}

// Buffer is a document: its Contents, commit history and change log.
type Buffer struct {
	id   uuid.UUID
	name string

	contents *contents.Contents

	// commits[:commitIndex] are applied; commits[commitIndex:] can be
	// redone. Elements are pointers so Change values stay valid when the
	// redo tail is truncated and overwritten.
	commits     []*edit.Commit
	commitIndex int

	changes   []Change
	listeners []Listener

	bucketSize   int
	maxEditBytes int
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		id:         uuid.New(),
		bucketSize: contents.DefaultBucketSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.contents = contents.New(b.contentsOptions()...)
	return b
}

// FromString creates a buffer holding s. Initial text is not part of the
// history and cannot be undone.
func FromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.contents = contents.FromString(s, b.contentsOptions()...)
	return b
}

// FromReader creates a buffer from the bytes of r.
func FromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := New(opts...)
	c, err := contents.FromReader(r, b.contentsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	b.contents = c
	return b, nil
}

// ID returns the buffer's identifier.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Name returns the buffer's display name.
func (b *Buffer) Name() string {
	return b.name
}

// SetName changes the buffer's display name.
func (b *Buffer) SetName(name string) {
	b.name = name
}

// Contents returns the buffer text. Callers must not mutate it directly.
func (b *Buffer) Contents() *contents.Contents {
	return b.contents
}

// Len returns the length of the buffer in bytes.
func (b *Buffer) Len() uint64 {
	return b.contents.Len()
}

// String returns the full buffer text.
func (b *Buffer) String() string {
	return b.contents.String()
}

// Save writes the buffer bytes to w. History is not persisted.
func (b *Buffer) Save(w io.Writer) (int64, error) {
	n, err := b.contents.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("save %s: %w", b.displayName(), err)
	}
	return n, nil
}

// AddListener registers l to run after every mutation.
func (b *Buffer) AddListener(l Listener) {
	if l != nil {
		b.listeners = append(b.listeners, l)
	}
}

// RemoveListener unregisters l. Listeners are compared by identity.
func (b *Buffer) RemoveListener(l Listener) {
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// NewTransaction creates a transaction bounded by the buffer's edit
// budget.
func (b *Buffer) NewTransaction() *edit.Transaction {
	return edit.NewTransaction(edit.WithByteLimit(b.maxEditBytes))
}

// Commit applies tx's edits in push order and records them as a new
// commit, discarding any redo history. An empty transaction is dropped
// and ErrEmptyTransaction returned; the buffer is unchanged.
func (b *Buffer) Commit(tx *edit.Transaction) error {
	if tx == nil {
		return ErrNoTransaction
	}
	if tx.Len() == 0 {
		tx.Drop()
		return ErrEmptyTransaction
	}
	c, err := tx.Finish()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	commit := &c
	commit.Apply(b.contents)

	for i := b.commitIndex; i < len(b.commits); i++ {
		b.commits[i] = nil
	}
	b.commits = append(b.commits[:b.commitIndex], commit)
	b.commitIndex++

	b.changes = append(b.changes, Change{Commit: commit})
	b.notify()
	return nil
}

// Undo reverts the most recent applied commit. It returns false if there
// is nothing to undo.
func (b *Buffer) Undo() bool {
	if b.commitIndex == 0 {
		return false
	}
	b.commitIndex--
	commit := b.commits[b.commitIndex]
	commit.ApplyInverse(b.contents)

	b.changes = append(b.changes, Change{Commit: commit, IsUndo: true})
	b.notify()
	return true
}

// Redo reapplies the most recently undone commit. It returns false if
// there is nothing to redo.
func (b *Buffer) Redo() bool {
	if b.commitIndex == len(b.commits) {
		return false
	}
	commit := b.commits[b.commitIndex]
	commit.Apply(b.contents)
	b.commitIndex++

	b.changes = append(b.changes, Change{Commit: commit})
	b.notify()
	return true
}

// CanUndo returns true if Undo would succeed.
func (b *Buffer) CanUndo() bool {
	return b.commitIndex > 0
}

// CanRedo returns true if Redo would succeed.
func (b *Buffer) CanRedo() bool {
	return b.commitIndex < len(b.commits)
}

// CommitIndex returns the number of applied commits.
func (b *Buffer) CommitIndex() int {
	return b.commitIndex
}

// CommitCount returns the number of recorded commits, applied or not.
func (b *Buffer) CommitCount() int {
	return len(b.commits)
}

// LastCommit returns the most recently applied commit.
func (b *Buffer) LastCommit() (*edit.Commit, bool) {
	if b.commitIndex == 0 {
		return nil, false
	}
	return b.commits[b.commitIndex-1], true
}

// Changes returns the complete change log. The slice must not be
// modified.
func (b *Buffer) Changes() []Change {
	return b.changes
}

// ChangeCount returns the length of the change log.
func (b *Buffer) ChangeCount() int {
	return len(b.changes)
}

// ChangesSince returns the changes recorded after the first i. An index
// past the end yields nil.
func (b *Buffer) ChangesSince(i int) []Change {
	if i < 0 {
		i = 0
	}
	if i >= len(b.changes) {
		return nil
	}
	return b.changes[i:]
}

func (b *Buffer) notify() {
	for _, l := range b.listeners {
		l.BufferChanged(b)
	}
}

func (b *Buffer) displayName() string {
	if b.name != "" {
		return b.name
	}
	return b.id.String()
}
