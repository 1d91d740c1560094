package engine

import (
	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
	"github.com/dshills/stormcore/internal/engine/window"
)

// Default configuration values.
const (
	DefaultBucketSize         = contents.DefaultBucketSize
	DefaultCheckpointInterval = token.DefaultInterval
)

// config collects options before the engine is built.
type config struct {
	content   string
	name      string
	lexer     token.Lexer
	interval  uint64
	bufOpts   []buffer.Option
	clipboard window.Clipboard
	readOnly  bool
}

// Option configures an Engine during creation.
type Option func(*config)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(c *config) {
		c.content = content
	}
}

// WithName names the buffer.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithBucketSize sets the contents bucket capacity.
func WithBucketSize(size int) Option {
	return func(c *config) {
		c.bufOpts = append(c.bufOpts, buffer.WithBucketSize(size))
	}
}

// WithMaxEditBytes bounds the payload bytes of a single command.
func WithMaxEditBytes(n int) Option {
	return func(c *config) {
		c.bufOpts = append(c.bufOpts, buffer.WithMaxEditBytes(n))
	}
}

// WithLexer sets the lexer for the token cache. Without one, the engine
// has no token cache and TokenAt finds nothing.
func WithLexer(l token.Lexer) Option {
	return func(c *config) {
		c.lexer = l
	}
}

// WithCheckpointInterval sets the distance between token checkpoints.
func WithCheckpointInterval(n uint64) Option {
	return func(c *config) {
		if n > 0 {
			c.interval = n
		}
	}
}

// WithClipboard mirrors single-cursor copies to cb.
func WithClipboard(cb window.Clipboard) Option {
	return func(c *config) {
		c.clipboard = cb
	}
}

// WithReadOnly creates a read-only engine.
// Edit operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}
