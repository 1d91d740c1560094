// Package app wires configuration, logging and engines into an
// application that runs line-oriented command scripts against a set of
// open buffers.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/stormcore/internal/config"
	"github.com/dshills/stormcore/internal/engine"
	"github.com/dshills/stormcore/internal/engine/token"
	"github.com/dshills/stormcore/internal/lexer"
	"github.com/dshills/stormcore/internal/lexer/lua"
)

// Errors returned by the application.
var (
	ErrNoBuffer      = errors.New("no buffer open")
	ErrBufferUnknown = errors.New("unknown buffer")
	ErrNoPath        = errors.New("buffer has no file path")
)

// document is one open buffer.
type document struct {
	engine *engine.Engine
	path   string
	closer io.Closer // scripted lexer, if any
}

// Application owns the open buffers. It is safe for concurrent use, but
// commands run one at a time.
type Application struct {
	mu      sync.Mutex
	cfg     *config.Config
	logger  *Logger
	root    string
	docs    map[uuid.UUID]*document
	order   []uuid.UUID
	current uuid.UUID

	readOnly bool
	lexerFor func(name string) (token.Lexer, io.Closer, error)
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the application logger.
func WithLogger(l *Logger) Option {
	return func(a *Application) {
		a.logger = l
	}
}

// WithRoot sets the directory searched by the find command.
func WithRoot(dir string) Option {
	return func(a *Application) {
		a.root = dir
	}
}

// WithReadOnly opens every buffer read-only.
func WithReadOnly() Option {
	return func(a *Application) {
		a.readOnly = true
	}
}

// New creates an application with no buffers.
func New(cfg *config.Config, opts ...Option) *Application {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Application{
		cfg:  cfg,
		root: ".",
		docs: make(map[uuid.UUID]*document),
	}
	a.lexerFor = a.newLexer
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		lc := DefaultLoggerConfig()
		lc.Level = ParseLogLevel(cfg.Log.Level)
		a.logger = NewLogger(lc)
	}
	return a
}

// Logger returns the application's logger.
func (a *Application) Logger() *Logger {
	return a.logger
}

// Config returns the current configuration.
func (a *Application) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// SetConfig replaces the configuration. Open buffers keep their
// settings; the log level applies at once.
func (a *Application) SetConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	a.logger.SetLevel(ParseLogLevel(cfg.Log.Level))
}

// WatchConfig reloads the configuration from path until ctx is done.
// Invalid reloads are logged and ignored.
func (a *Application) WatchConfig(ctx context.Context, path string) error {
	log := a.logger.WithComponent("config")
	return config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn("reload failed: %v", err)
			return
		}
		a.SetConfig(cfg)
		log.Info("reloaded %s", path)
	})
}

// newLexer builds the lexer configured for a buffer named name.
func (a *Application) newLexer(name string) (token.Lexer, io.Closer, error) {
	lc := a.cfg.Lexer
	if lc.Script != "" {
		l, err := lua.LoadLexer(lc.Script)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	}
	if lc.Name == "auto" {
		return lexer.ForFile(name), nil, nil
	}
	l, err := lexer.ByName(lc.Name)
	return l, nil, err
}

func (a *Application) engineOptions(name string) ([]engine.Option, io.Closer, error) {
	l, closer, err := a.lexerFor(name)
	if err != nil {
		return nil, nil, err
	}
	ec := a.cfg.Editor
	opts := []engine.Option{
		engine.WithName(name),
		engine.WithLexer(l),
		engine.WithBucketSize(ec.BucketSize),
		engine.WithCheckpointInterval(ec.CheckpointInterval),
		engine.WithMaxEditBytes(ec.MaxEditBytes),
	}
	if a.readOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts, closer, nil
}

// NewBuffer opens a buffer holding content, not backed by a file, and
// makes it current.
func (a *Application) NewBuffer(name, content string) (uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	opts, closer, err := a.engineOptions(name)
	if err != nil {
		return uuid.Nil, err
	}
	e := engine.New(append(opts, engine.WithContent(content))...)
	return a.add(&document{engine: e, closer: closer}), nil
}

// Open reads the file at path into a new current buffer. A missing file
// opens an empty buffer that Save will create.
func (a *Application) Open(path string) (uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	opts, closer, err := a.engineOptions(filepath.Base(path))
	if err != nil {
		return uuid.Nil, err
	}

	fail := func(err error) (uuid.UUID, error) {
		if closer != nil {
			_ = closer.Close()
		}
		return uuid.Nil, err
	}

	var e *engine.Engine
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		e = engine.New(opts...)
	case err != nil:
		return fail(fmt.Errorf("open %s: %w", path, err))
	default:
		defer f.Close()
		e, err = engine.NewFromReader(f, opts...)
		if err != nil {
			return fail(fmt.Errorf("read %s: %w", path, err))
		}
	}
	id := a.add(&document{engine: e, path: path, closer: closer})
	a.logger.WithField("buffer", id).Debug("opened %s (%d bytes)", path, e.Len())
	return id, nil
}

func (a *Application) add(d *document) uuid.UUID {
	id := d.engine.ID()
	a.docs[id] = d
	a.order = append(a.order, id)
	a.current = id
	return id
}

// Buffers returns the IDs of the open buffers in opening order.
func (a *Application) Buffers() []uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.order)
}

// Engine returns the engine of buffer id.
func (a *Application) Engine(id uuid.UUID) (*engine.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBufferUnknown, id)
	}
	return d.engine, nil
}

// Current returns the engine of the current buffer.
func (a *Application) Current() (*engine.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.docs[a.current]
	if !ok {
		return nil, ErrNoBuffer
	}
	return d.engine, nil
}

// Switch makes buffer id current.
func (a *Application) Switch(id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBufferUnknown, id)
	}
	a.current = id
	return nil
}

// Save writes buffer id to path, or to the file it was opened from when
// path is empty.
func (a *Application) Save(id uuid.UUID, path string) error {
	a.mu.Lock()
	d, ok := a.docs[id]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrBufferUnknown, id)
	}
	if path == "" {
		path = d.path
	}
	if path == "" {
		return ErrNoPath
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	n, err := d.engine.Save(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	a.logger.WithField("buffer", id).Info("wrote %s (%d bytes)", path, n)
	return nil
}

// CloseBuffer closes buffer id. The most recently opened remaining
// buffer becomes current.
func (a *Application) CloseBuffer(id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBufferUnknown, id)
	}
	d.engine.Close()
	if d.closer != nil {
		_ = d.closer.Close()
	}
	delete(a.docs, id)
	a.order = slices.DeleteFunc(a.order, func(x uuid.UUID) bool { return x == id })
	if a.current == id {
		a.current = uuid.Nil
		if n := len(a.order); n > 0 {
			a.current = a.order[n-1]
		}
	}
	return nil
}

// Shutdown closes every buffer.
func (a *Application) Shutdown() {
	for _, id := range a.Buffers() {
		_ = a.CloseBuffer(id)
	}
}
