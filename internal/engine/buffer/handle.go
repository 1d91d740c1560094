package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle shares a Buffer between goroutines. Readers hold the read lock;
// mutations, and the listener work they trigger, hold the write lock.
type Handle struct {
	mu   sync.RWMutex
	buf  *Buffer
	id   uuid.UUID
	refs atomic.Int32
}

// NewHandle wraps b in a handle holding one reference.
func NewHandle(b *Buffer) *Handle {
	h := &Handle{buf: b, id: b.ID()}
	h.refs.Store(1)
	return h
}

// ID returns the buffer's identifier without locking.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Read runs fn with the read lock held.
func (h *Handle) Read(fn func(b *Buffer)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.buf)
}

// Write runs fn with the write lock held and returns its error.
func (h *Handle) Write(fn func(b *Buffer) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.buf)
}

// Retain adds a reference and returns h.
func (h *Handle) Retain() *Handle {
	h.refs.Add(1)
	return h
}

// Release drops a reference. It returns true when the last reference
// was released.
func (h *Handle) Release() bool {
	n := h.refs.Add(-1)
	if n < 0 {
		h.refs.Store(0)
		return false
	}
	return n == 0
}

// Refs returns the current reference count.
func (h *Handle) Refs() int {
	return int(h.refs.Load())
}
