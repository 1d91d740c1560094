package token

import (
	"iter"
	"sort"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/edit"
)

// DefaultInterval is the default distance between checkpoints.
const DefaultInterval = 1024

// CheckPoint is a resumable lexer snapshot taken at a token end.
type CheckPoint struct {
	Position uint64
	State    uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithInterval sets the minimum distance between checkpoints.
func WithInterval(n uint64) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.interval = n
		}
	}
}

// WithInitialState sets the lexer state at the start of the buffer.
func WithInitialState(s uint64) CacheOption {
	return func(c *Cache) {
		c.initial = s
	}
}

// Cache holds lexer checkpoints for one buffer.
//
// Checkpoints are kept in ascending position order; the first is always
// (0, initial state). The frontier is where lexing stopped: everything
// before it is covered by the checkpoints.
type Cache struct {
	lexer    Lexer
	interval uint64
	initial  uint64

	points   []CheckPoint
	frontier CheckPoint
	complete bool

	changeIndex int

	// scratch used while invalidating
	dirty         []bool
	frontierDirty bool
}

// NewCache creates an empty cache for lexer.
func NewCache(lexer Lexer, opts ...CacheOption) *Cache {
	c := &Cache{
		lexer:    lexer,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset discards every checkpoint. Changes already seen stay seen.
func (c *Cache) Reset() {
	c.points = append(c.points[:0], CheckPoint{State: c.initial})
	c.frontier = c.points[0]
	c.complete = false
}

// CheckPoints returns the current checkpoints. The slice must not be
// modified.
func (c *Cache) CheckPoints() []CheckPoint {
	return c.points
}

// Frontier returns the position lexing has reached.
func (c *Cache) Frontier() uint64 {
	return c.frontier.Position
}

// Complete returns true once lexing reached the end of the buffer.
func (c *Cache) Complete() bool {
	return c.complete
}

// GenerateTo lexes forward from the frontier until it reaches stop or
// the end of the buffer.
func (c *Cache) GenerateTo(text *contents.Contents, stop uint64) {
	if c.complete || c.frontier.Position >= stop {
		return
	}
	it := text.IteratorAt(c.frontier.Position)
	state := c.frontier.State
	last := c.points[len(c.points)-1].Position
	var tok Token
	for {
		if !next(c.lexer, &it, &tok, &state) {
			c.frontier = CheckPoint{Position: it.Position(), State: state}
			c.complete = true
			return
		}
		pos := it.Position()
		if pos-last >= c.interval {
			c.points = append(c.points, CheckPoint{Position: pos, State: state})
			last = pos
		}
		if pos >= stop || it.AtEOB() {
			c.frontier = CheckPoint{Position: pos, State: state}
			c.complete = it.AtEOB()
			return
		}
	}
}

// FindCheckPoint returns the last checkpoint at or before pos. Call
// GenerateTo first to cover pos.
func (c *Cache) FindCheckPoint(pos uint64) CheckPoint {
	i := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Position > pos
	})
	return c.points[i-1]
}

// TokenAt returns the token at pos. A position on the boundary between
// two tokens resolves to the one of higher priority: pairs and
// punctuation, then preprocessor directives, then default, comment and
// string tokens, then everything else. Ties go to the token starting at
// pos. It returns false if no token touches pos.
func (c *Cache) TokenAt(text *contents.Contents, pos uint64) (Token, bool) {
	pos = min(pos, text.Len())
	c.GenerateTo(text, pos+1)

	cp := c.points[0]
	if pos > 0 {
		cp = c.FindCheckPoint(pos - 1)
	}
	it := text.IteratorAt(cp.Position)
	state := cp.State

	var best Token
	found := false
	var tok Token
	for next(c.lexer, &it, &tok, &state) {
		if tok.End < pos {
			continue
		}
		if tok.Start > pos {
			break
		}
		if tok.End == pos && tok.Start < pos {
			best, found = tok, true
			continue
		}
		if tok.Contains(pos) {
			if !found || tok.Type.priority() >= best.Type.priority() {
				best, found = tok, true
			}
			break
		}
	}
	return best, found
}

// Tokens yields the tokens overlapping [start, end) in order.
func (c *Cache) Tokens(text *contents.Contents, start, end uint64) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		end = min(end, text.Len())
		c.GenerateTo(text, end)
		cp := c.FindCheckPoint(start)
		it := text.IteratorAt(cp.Position)
		state := cp.State
		var tok Token
		for next(c.lexer, &it, &tok, &state) {
			if tok.Start >= end {
				return
			}
			if tok.End <= start {
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// BufferChanged refreshes the cache. It lets a Cache be registered as a
// buffer.Listener.
func (c *Cache) BufferChanged(b *buffer.Buffer) {
	c.Update(b)
}

// Update invalidates checkpoints for every change of b not yet seen and
// re-lexes the damaged regions.
func (c *Cache) Update(b *buffer.Buffer) {
	changes := b.ChangesSince(c.changeIndex)
	c.changeIndex = b.ChangeCount()
	if len(changes) == 0 {
		return
	}

	c.dirty = c.dirty[:0]
	for range c.points {
		c.dirty = append(c.dirty, false)
	}
	c.frontierDirty = false
	for _, ch := range changes {
		for e := range ch.Edits() {
			c.invalidate(e)
		}
	}
	c.relex(b.Contents())
}

// SetChangeIndex marks the first n changes of the buffer as seen.
func (c *Cache) SetChangeIndex(n int) {
	c.changeIndex = n
}

// invalidate moves checkpoints across e and marks those whose preceding
// region e touched. Positions are in the coordinates after e.
func (c *Cache) invalidate(e edit.Edit) {
	for i := 1; i < len(c.points); i++ {
		edit.PositionAfterEdit(e, &c.points[i].Position)
	}
	edit.PositionAfterEdit(e, &c.frontier.Position)

	// Collapse checkpoints a removal moved onto each other.
	kept := 1
	for i := 1; i < len(c.points); i++ {
		if c.points[i].Position == c.points[kept-1].Position {
			if kept-1 > 0 {
				c.dirty[kept-1] = true
			}
			continue
		}
		c.points[kept] = c.points[i]
		c.dirty[kept] = c.dirty[i]
		kept++
	}
	c.points = c.points[:kept]
	c.dirty = c.dirty[:kept]

	lo := e.Position
	hi := e.Position
	if e.Kind.IsInsert() {
		hi += e.Len()
	}
	for i := 1; i < len(c.points); i++ {
		if c.points[i].Position >= lo && c.points[i-1].Position <= hi {
			c.dirty[i] = true
		}
	}
	last := c.points[len(c.points)-1].Position
	if c.frontier.Position < last ||
		(c.frontier.Position >= lo && last <= hi) {
		c.frontierDirty = true
	}
}

// relex regenerates dirty checkpoints. Each run starts at the clean
// checkpoint before a dirty one and stops as soon as it reaches an old
// checkpoint with identical state.
func (c *Cache) relex(text *contents.Contents) {
	old := c.points
	dirty := c.dirty
	points := make([]CheckPoint, 0, len(old))

	k := 0
	for k < len(old) {
		d := k
		for d < len(old) && !dirty[d] {
			d++
		}
		points = append(points, old[k:d]...)
		if d == len(old) {
			break
		}

		start := points[len(points)-1]
		it := text.IteratorAt(start.Position)
		state := start.State
		last := start.Position
		j := d
		var tok Token
		for {
			if !next(c.lexer, &it, &tok, &state) {
				c.points = points
				c.frontier = CheckPoint{Position: it.Position(), State: state}
				c.complete = true
				return
			}
			pos := it.Position()
			for j < len(old) && old[j].Position < pos {
				j++
			}
			if j == len(old) {
				// Past the last old checkpoint: lexing resumes lazily.
				if pos-last >= c.interval {
					points = append(points, CheckPoint{Position: pos, State: state})
				}
				c.points = points
				c.frontier = CheckPoint{Position: pos, State: state}
				c.complete = it.AtEOB()
				return
			}
			if old[j].Position == pos && old[j].State == state {
				break
			}
			if pos-last >= c.interval {
				points = append(points, CheckPoint{Position: pos, State: state})
				last = pos
			}
		}
		// Synced: old[j] and the clean checkpoints after it still hold.
		points = append(points, old[j])
		k = j + 1
	}

	c.points = points
	if c.frontierDirty {
		c.frontier = points[len(points)-1]
		c.complete = false
	}
}
