// Package token defines tokens, the lexer plug-in contract and the
// checkpointed cache that re-lexes only what an edit invalidated.
package token

import (
	"fmt"

	"github.com/dshills/stormcore/internal/engine/contents"
)

// Type represents the semantic type of a token.
type Type uint8

// Token types.
const (
	Default Type = iota
	Comment
	DocComment
	String
	Character
	Number
	Identifier
	Keyword
	TypeName
	Preprocessor
	OpenPair
	ClosePair
	Punctuation
	Operator
	Invalid

	typeCount
)

var typeNames = [typeCount]string{
	Default:      "default",
	Comment:      "comment",
	DocComment:   "doc-comment",
	String:       "string",
	Character:    "character",
	Number:       "number",
	Identifier:   "identifier",
	Keyword:      "keyword",
	TypeName:     "type",
	Preprocessor: "preprocessor",
	OpenPair:     "open-pair",
	ClosePair:    "close-pair",
	Punctuation:  "punctuation",
	Operator:     "operator",
	Invalid:      "invalid",
}

// String returns the string representation of a token type.
func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType converts a type name as returned by String back to a Type.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return Invalid, false
}

// IsComment returns true for comment tokens.
func (t Type) IsComment() bool {
	return t == Comment || t == DocComment
}

// IsString returns true for string and character literals.
func (t Type) IsString() bool {
	return t == String || t == Character
}

// IsPair returns true for opening and closing brackets.
func (t Type) IsPair() bool {
	return t == OpenPair || t == ClosePair
}

// priority orders token types when a position lies on the boundary
// between two tokens.
func (t Type) priority() int {
	switch {
	case t.IsPair() || t == Punctuation:
		return 3
	case t == Preprocessor:
		return 2
	case t == Default || t.IsComment() || t.IsString():
		return 1
	default:
		return 0
	}
}

// Token is a lexed span of the buffer.
type Token struct {
	Start uint64
	End   uint64
	Type  Type
}

// Len returns the length of the token.
func (t Token) Len() uint64 {
	return t.End - t.Start
}

// Contains returns true if pos is within the token.
func (t Token) Contains(pos uint64) bool {
	return pos >= t.Start && pos < t.End
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s[%d,%d)", t.Type, t.Start, t.End)
}

// Lexer is the plug-in contract for tokenizers.
//
// NextToken advances it across exactly one token, fills tok and updates
// state. It returns false, without a token, at the end of the buffer.
// Whitespace between tokens may be skipped. The lexer must be a pure
// function of the iterator position and state, and where a token ends
// may depend only on the bytes before the end and the byte at the end.
type Lexer interface {
	NextToken(it *contents.Iterator, tok *Token, state *uint64) bool
}

// LexerFunc adapts a function to the Lexer interface.
type LexerFunc func(it *contents.Iterator, tok *Token, state *uint64) bool

// NextToken calls f.
func (f LexerFunc) NextToken(it *contents.Iterator, tok *Token, state *uint64) bool {
	return f(it, tok, state)
}

// next runs l once and guarantees progress: a lexer that returns a token
// without advancing is stepped one byte.
func next(l Lexer, it *contents.Iterator, tok *Token, state *uint64) bool {
	start := it.Position()
	if !l.NextToken(it, tok, state) {
		return false
	}
	if it.Position() <= start {
		if it.AtEOB() {
			return false
		}
		it.Advance()
		tok.Start, tok.End = start, it.Position()
	}
	return true
}
