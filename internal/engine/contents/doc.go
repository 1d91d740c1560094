// Package contents provides bucketed text storage for editor buffers.
//
// Text is kept in an ordered list of fixed-capacity buckets. Each bucket
// records its count of newlines, and the contents keep cumulative byte and
// line offsets per bucket so an absolute position resolves with a binary
// search over buckets. Iterators step one byte (or one grapheme cluster)
// at a time and cross bucket boundaries in constant time.
//
// # Mutation
//
// Insert and Remove exist for the edit engine. Everything else in the
// editor mutates text by building an edit.Transaction and committing it
// to a buffer, so every change is recorded for undo and for the position
// holders that catch up lazily.
//
// # Iterators
//
// An Iterator is a value holding (bucket, index, position). It is not
// kept up to date by mutations:
//
//	it := c.IteratorAt(10)
//	c.Insert(0, []byte("x")) // it.Valid() is now false
//	it.Revalidate()          // re-resolves position 10
package contents
