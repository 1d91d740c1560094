// Package buffer owns a document's Contents together with its linear
// commit history and change log.
//
// The buffer package provides:
//
//   - Commit, Undo and Redo over a single linear stack of edit.Commit
//   - A change log that lets independent position holders catch up lazily
//   - Listeners run synchronously after every mutation
//   - Handle, a reference-counted shared handle guarded by sync.RWMutex
//
// Basic usage:
//
//	buf := buffer.FromString("abc")
//
//	tx := buf.NewTransaction()
//	tx.Push(edit.NewInsert(1, "X"))
//	buf.Commit(tx) // "aXbc"
//
//	buf.Undo() // "abc"
//	buf.Redo() // "aXbc"
//
// Change Log:
//
// Every Commit, Undo and Redo appends a Change. A holder of stored
// positions remembers how many changes it has seen and replays the rest:
//
//	for _, ch := range buf.ChangesSince(seen) {
//	    ch.AdjustPosition(&point)
//	}
//	seen = buf.ChangeCount()
//
// Thread Safety:
//
// A Buffer is not safe for concurrent use on its own. Share it through a
// Handle: readers take the read lock, commits and the listener work they
// trigger run under the write lock.
package buffer
