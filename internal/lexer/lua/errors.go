package lua

import "errors"

// Errors for Lua state and lexer operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoNextToken is returned when a script does not define next_token.
	ErrNoNextToken = errors.New("script does not define next_token")

	// ErrBadResult is returned when next_token returns malformed values.
	ErrBadResult = errors.New("next_token returned malformed values")
)
