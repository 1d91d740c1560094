package engine

import (
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/token"
	"github.com/dshills/stormcore/internal/engine/window"
)

// CursorState is a snapshot of one cursor.
type CursorState struct {
	Point uint64
	Mark  uint64
}

// Engine is one view of a shared buffer.
type Engine struct {
	handle *buffer.Handle
	cache  *token.Cache // shared by every view, nil without a lexer
	win    *window.Window

	readOnly bool
	closed   atomic.Bool
}

// New creates an Engine on a new buffer.
func New(opts ...Option) *Engine {
	cfg := newConfig(opts)
	return build(buffer.FromString(cfg.content, cfg.bufferOptions()...), cfg)
}

// NewFromReader creates an Engine on a buffer read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	cfg := newConfig(opts)
	buf, err := buffer.FromReader(r, cfg.bufferOptions()...)
	if err != nil {
		return nil, err
	}
	return build(buf, cfg), nil
}

func newConfig(opts []Option) *config {
	cfg := &config{interval: DefaultCheckpointInterval}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) bufferOptions() []buffer.Option {
	opts := c.bufOpts
	if c.name != "" {
		opts = append(opts, buffer.WithName(c.name))
	}
	return opts
}

func build(buf *buffer.Buffer, cfg *config) *Engine {
	var cache *token.Cache
	if cfg.lexer != nil {
		cache = token.NewCache(cfg.lexer, token.WithInterval(cfg.interval))
		cache.SetChangeIndex(buf.ChangeCount())
		buf.AddListener(cache)
	}
	var winOpts []window.Option
	if cfg.clipboard != nil {
		winOpts = append(winOpts, window.WithClipboard(cfg.clipboard))
	}
	return &Engine{
		handle:   buffer.NewHandle(buf),
		cache:    cache,
		win:      window.New(buf, winOpts...),
		readOnly: cfg.readOnly,
	}
}

// View creates another view of the same buffer with its own cursors and
// kill ring. The view starts with its cursor at the start of the buffer.
func (e *Engine) View() *Engine {
	v := &Engine{
		handle:   e.handle.Retain(),
		cache:    e.cache,
		readOnly: e.readOnly,
	}
	e.handle.Read(func(b *buffer.Buffer) {
		v.win = window.New(b)
	})
	return v
}

// Close releases the view. It returns true when it was the last view of
// its buffer; the token cache is detached then.
func (e *Engine) Close() bool {
	if e.closed.Swap(true) {
		return false
	}
	last := e.handle.Release()
	if last && e.cache != nil {
		_ = e.handle.Write(func(b *buffer.Buffer) error {
			b.RemoveListener(e.cache)
			return nil
		})
	}
	return last
}

// ID returns the buffer's identifier.
func (e *Engine) ID() uuid.UUID {
	return e.handle.ID()
}

// Handle returns the shared buffer handle.
func (e *Engine) Handle() *buffer.Handle {
	return e.handle
}

// IsReadOnly reports whether edits are rejected.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// Name returns the buffer name.
func (e *Engine) Name() (name string) {
	e.handle.Read(func(b *buffer.Buffer) { name = b.Name() })
	return name
}

// Text returns the whole buffer.
func (e *Engine) Text() (s string) {
	e.handle.Read(func(b *buffer.Buffer) { s = b.String() })
	return s
}

// TextRange returns the text in [start, end), clamped to the buffer.
func (e *Engine) TextRange(start, end uint64) (s string) {
	e.handle.Read(func(b *buffer.Buffer) { s = b.Contents().SliceString(start, end) })
	return s
}

// Len returns the buffer length in bytes.
func (e *Engine) Len() (n uint64) {
	e.handle.Read(func(b *buffer.Buffer) { n = b.Len() })
	return n
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() (n int) {
	e.handle.Read(func(b *buffer.Buffer) { n = b.Contents().LineCount() })
	return n
}

// CanUndo reports whether Undo has a commit to revert.
func (e *Engine) CanUndo() (ok bool) {
	e.handle.Read(func(b *buffer.Buffer) { ok = b.CanUndo() })
	return ok
}

// CanRedo reports whether Redo has a commit to reapply.
func (e *Engine) CanRedo() (ok bool) {
	e.handle.Read(func(b *buffer.Buffer) { ok = b.CanRedo() })
	return ok
}

// Save writes the buffer to w.
func (e *Engine) Save(w io.Writer) (n int64, err error) {
	e.handle.Read(func(b *buffer.Buffer) { n, err = b.Save(w) })
	return n, err
}

// run executes fn on the window under the write lock.
func (e *Engine) run(edits bool, fn func(w *window.Window) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if edits && e.readOnly {
		return ErrReadOnly
	}
	return e.handle.Write(func(*buffer.Buffer) error {
		return fn(e.win)
	})
}

// Point returns the primary cursor's position.
func (e *Engine) Point() (pos uint64) {
	_ = e.run(false, func(w *window.Window) error {
		pos = w.Point()
		return nil
	})
	return pos
}

// Cursors returns a snapshot of every cursor in position order.
func (e *Engine) Cursors() (states []CursorState) {
	_ = e.run(false, func(w *window.Window) error {
		for _, c := range w.Cursors().All() {
			states = append(states, CursorState{Point: c.Point, Mark: c.Mark})
		}
		return nil
	})
	return states
}

// SetPoint moves the primary cursor.
func (e *Engine) SetPoint(pos uint64) error {
	return e.run(false, func(w *window.Window) error {
		w.SetPoint(pos)
		return nil
	})
}

// SetMark drops the mark of every cursor at its point.
func (e *Engine) SetMark() error {
	return e.run(false, func(w *window.Window) error {
		w.SetMark()
		return nil
	})
}

// AddCursor adds a cursor at pos.
func (e *Engine) AddCursor(pos uint64) error {
	return e.run(false, func(w *window.Window) error {
		w.AddCursor(pos)
		return nil
	})
}

// ClearCursors keeps only the primary cursor.
func (e *Engine) ClearCursors() error {
	return e.run(false, func(w *window.Window) error {
		w.ClearCursors()
		return nil
	})
}

// Insert inserts text at every cursor; cursors end after the text.
func (e *Engine) Insert(text string) error {
	return e.run(true, func(w *window.Window) error {
		return w.InsertText(text, false)
	})
}

// InsertAfter inserts text at every cursor; cursors stay before the text.
func (e *Engine) InsertAfter(text string) error {
	return e.run(true, func(w *window.Window) error {
		return w.InsertText(text, true)
	})
}

// DeleteBackward removes up to n bytes before every cursor.
func (e *Engine) DeleteBackward(n uint64) error {
	return e.run(true, func(w *window.Window) error {
		return w.DeleteBackward(n)
	})
}

// DeleteForward removes up to n bytes after every cursor.
func (e *Engine) DeleteForward(n uint64) error {
	return e.run(true, func(w *window.Window) error {
		return w.DeleteForward(n)
	})
}

// DeleteRegion removes the region of every cursor.
func (e *Engine) DeleteRegion() error {
	return e.run(true, func(w *window.Window) error {
		return w.DeleteRegion()
	})
}

// Copy pushes every cursor's region onto the kill ring.
func (e *Engine) Copy() error {
	return e.run(false, func(w *window.Window) error {
		return w.Copy()
	})
}

// Cut copies and then deletes every cursor's region.
func (e *Engine) Cut() error {
	return e.run(true, func(w *window.Window) error {
		return w.Cut()
	})
}

// Paste inserts the newest kill-ring entry at every cursor.
func (e *Engine) Paste() error {
	return e.run(true, func(w *window.Window) error {
		return w.Paste()
	})
}

// PastePrevious replaces the text of the last paste with the previous
// kill-ring entry.
func (e *Engine) PastePrevious() error {
	return e.run(true, func(w *window.Window) error {
		return w.PastePrevious()
	})
}

// Undo reverts the last commit.
func (e *Engine) Undo() error {
	return e.run(true, func(w *window.Window) error {
		return w.Undo()
	})
}

// Redo reapplies the last undone commit.
func (e *Engine) Redo() error {
	return e.run(true, func(w *window.Window) error {
		return w.Redo()
	})
}

// KillRing returns the window's global kill-ring entries, newest first.
func (e *Engine) KillRing() (entries []string) {
	_ = e.run(false, func(w *window.Window) error {
		entries = w.GlobalCopyChain().Strings()
		return nil
	})
	return entries
}

// TokenAt returns the token at pos. It finds nothing without a lexer.
//
// Token lookups hold the write lock: they may extend the cache, and a
// lexer (the Lua one in particular) need not be safe for concurrent use.
func (e *Engine) TokenAt(pos uint64) (tok token.Token, ok bool) {
	if e.cache == nil {
		return tok, false
	}
	_ = e.handle.Write(func(b *buffer.Buffer) error {
		tok, ok = e.cache.TokenAt(b.Contents(), pos)
		return nil
	})
	return tok, ok
}

// Tokens returns the tokens overlapping [start, end).
func (e *Engine) Tokens(start, end uint64) (tokens []token.Token) {
	if e.cache == nil {
		return nil
	}
	_ = e.handle.Write(func(b *buffer.Buffer) error {
		for tok := range e.cache.Tokens(b.Contents(), start, end) {
			tokens = append(tokens, tok)
		}
		return nil
	})
	return tokens
}
