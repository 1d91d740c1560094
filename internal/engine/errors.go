package engine

import (
	"errors"

	"github.com/dshills/stormcore/internal/engine/window"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrClosed indicates the engine's view was closed.
	ErrClosed = errors.New("engine is closed")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = window.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = window.ErrNothingToRedo
)
