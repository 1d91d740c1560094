package cursor

import (
	"cmp"
	"slices"
)

// Set manages the cursors of one window. Cursors are kept sorted by
// point; cursors sharing a point keep their relative order.
type Set struct {
	cursors []*Cursor
}

// NewSet creates a set with a single cursor at pos.
func NewSet(pos uint64) *Set {
	return &Set{cursors: []*Cursor{New(pos)}}
}

// Primary returns the cursor with the lowest point.
func (s *Set) Primary() *Cursor {
	return s.cursors[0]
}

// All returns the cursors in ascending point order. The slice must not
// be modified; the cursors may be.
func (s *Set) All() []*Cursor {
	return s.cursors
}

// Count returns the number of cursors.
func (s *Set) Count() int {
	return len(s.cursors)
}

// IsMulti returns true if there are multiple cursors.
func (s *Set) IsMulti() bool {
	return len(s.cursors) > 1
}

// Get returns the cursor at index i, or nil if out of range.
func (s *Set) Get(i int) *Cursor {
	if i < 0 || i >= len(s.cursors) {
		return nil
	}
	return s.cursors[i]
}

// Add inserts c keeping the set sorted. Cursors equal in point to an
// existing cursor are placed after it.
func (s *Set) Add(c *Cursor) {
	i, _ := slices.BinarySearchFunc(s.cursors, c.Point, func(e *Cursor, p uint64) int {
		if e.Point <= p {
			return -1
		}
		return 1
	})
	s.cursors = slices.Insert(s.cursors, i, c)
}

// Clear removes every cursor except the primary one. The primary cursor
// keeps its local kill ring.
func (s *Set) Clear() {
	s.cursors = s.cursors[:1:1]
}

// Normalize restores point order after cursors were moved.
func (s *Set) Normalize() {
	slices.SortStableFunc(s.cursors, func(a, b *Cursor) int {
		return cmp.Compare(a.Point, b.Point)
	})
}

// Clamp limits every cursor to [0, max].
func (s *Set) Clamp(max uint64) {
	for _, c := range s.cursors {
		c.Clamp(max)
	}
}

// Points returns every cursor's point.
func (s *Set) Points() []uint64 {
	points := make([]uint64, len(s.cursors))
	for i, c := range s.cursors {
		points[i] = c.Point
	}
	return points
}
