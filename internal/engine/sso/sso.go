// Package sso provides a small-string-optimized byte string.
//
// Short payloads (up to InlineSize bytes) are stored inside the String
// value itself; longer payloads live in a heap slice. Most edits are a
// single typed or deleted character, so the common path never allocates.
package sso

import "bytes"

// InlineSize is the largest payload stored without a heap allocation.
const InlineSize = 15

// String is an immutable byte string.
// The zero value is the empty string.
type String struct {
	n      int
	inline [InlineSize]byte
	heap   []byte
}

// FromString copies s into a new String.
func FromString(s string) String {
	var r String
	r.n = len(s)
	if len(s) <= InlineSize {
		copy(r.inline[:], s)
		return r
	}
	r.heap = []byte(s)
	return r
}

// FromBytes copies b into a new String.
func FromBytes(b []byte) String {
	var r String
	r.n = len(b)
	if len(b) <= InlineSize {
		copy(r.inline[:], b)
		return r
	}
	r.heap = make([]byte, len(b))
	copy(r.heap, b)
	return r
}

// Wrap adopts b as the heap payload without copying when it is too long
// to be stored inline. The caller must not modify b afterwards.
func Wrap(b []byte) String {
	if len(b) <= InlineSize {
		return FromBytes(b)
	}
	return String{n: len(b), heap: b}
}

// Len returns the payload length in bytes.
func (s String) Len() int {
	return s.n
}

// IsEmpty returns true for the empty string.
func (s String) IsEmpty() bool {
	return s.n == 0
}

// IsInline returns true if the payload is stored inline.
func (s String) IsInline() bool {
	return s.n <= InlineSize
}

// Bytes returns the payload.
// The result aliases s's storage for heap payloads and must not be
// modified.
func (s *String) Bytes() []byte {
	if s.n <= InlineSize {
		return s.inline[:s.n]
	}
	return s.heap
}

// At returns the byte at index i.
func (s *String) At(i int) byte {
	if s.n <= InlineSize {
		return s.inline[i]
	}
	return s.heap[i]
}

// String returns the payload as a Go string.
func (s String) String() string {
	if s.n <= InlineSize {
		return string(s.inline[:s.n])
	}
	return string(s.heap)
}

// Equal reports whether two strings hold the same bytes.
func (s String) Equal(other String) bool {
	return bytes.Equal(s.Bytes(), other.Bytes())
}

// EqualString reports whether s holds the bytes of t.
func (s String) EqualString(t string) bool {
	return s.n == len(t) && string(s.Bytes()) == t
}

// Clone returns a copy of s that owns its storage.
func (s String) Clone() String {
	if s.n <= InlineSize {
		return s
	}
	return FromBytes(s.heap)
}
