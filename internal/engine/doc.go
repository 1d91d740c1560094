// Package engine provides the facade over the stormcore text engine.
//
// An Engine is one view of a shared buffer: it combines the buffer's
// locked handle, a window with its cursors and kill ring, and the
// buffer's token cache into a single thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - contents: bucketed byte storage and iterators
//   - edit: edits, position adjustment and transactions
//   - buffer: commit stack, undo/redo and the change log
//   - cursor: cursors, kill-ring copy chains and multi-cursor batches
//   - window: views that follow buffer changes lazily
//   - token: lexer contract and checkpointed token cache
//
// # Thread Safety
//
// Every Engine operation is safe to call from multiple goroutines. Views
// created with View share one buffer handle; commands hold its write lock,
// and plain reads such as Text and Len hold the read lock.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("foo bar"))
//
//	e.SetPoint(3)
//	e.Insert("d")       // "food bar"
//	e.Undo()            // "foo bar"
//
//	e.SetMark()
//	e.SetPoint(0)
//	e.Cut()             // " bar"
//	e.Paste()           // "foo bar"
//
// # Multiple Views
//
// A second view edits the same buffer and sees changes made by others
// the next time it runs a command:
//
//	v := e.View()
//	defer v.Close()
//	v.SetPoint(0)
//	v.Insert("> ")
//	e.Point()           // shifted by two
//
// # Tokens
//
// The token cache is refreshed on every commit, undo and redo:
//
//	e := engine.New(
//	    engine.WithContent("int x; // note"),
//	    engine.WithLexer(lexer.NewGeneral()),
//	)
//	tok, _ := e.TokenAt(9)    // comment
//
// # Read-Only Mode
//
// A read-only engine rejects commands that would edit the buffer with
// ErrReadOnly; cursor motion and copying still work.
package engine
