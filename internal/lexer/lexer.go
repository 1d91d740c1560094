package lexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
)

// ErrUnknownLexer is returned for lexer names not built in.
var ErrUnknownLexer = errors.New("unknown lexer")

// Names of the built-in lexers.
const (
	NamePlain   = "plain"
	NameGeneral = "general"
)

// cFamily lists file extensions handled by General.
var cFamily = map[string]bool{
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true,
	".cxx": true, ".go": true, ".java": true, ".js": true, ".ts": true,
	".rs": true, ".cs": true, ".swift": true, ".kt": true, ".m": true,
}

// ByName returns a new built-in lexer.
func ByName(name string) (token.Lexer, error) {
	switch strings.ToLower(name) {
	case "", NamePlain:
		return Plain{}, nil
	case NameGeneral, "c", "cpp", "go":
		return NewGeneral(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLexer, name)
	}
}

// ForFile picks a built-in lexer by file extension.
func ForFile(path string) token.Lexer {
	if cFamily[strings.ToLower(filepath.Ext(path))] {
		return NewGeneral()
	}
	return Plain{}
}

// Plain splits text into runs of non-whitespace bytes. It never uses the
// state.
type Plain struct{}

// NextToken implements token.Lexer.
func (Plain) NextToken(it *contents.Iterator, tok *token.Token, state *uint64) bool {
	for !it.AtEOB() && isSpace(it.Get()) {
		it.Advance()
	}
	if it.AtEOB() {
		return false
	}
	tok.Start = it.Position()
	for !it.AtEOB() && !isSpace(it.Get()) {
		it.Advance()
	}
	tok.End = it.Position()
	tok.Type = token.Default
	return true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}
