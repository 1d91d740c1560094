// Package lexer provides reference lexer plug-ins for the token cache.
package lexer

import (
	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
)

// State layout used by General.
const (
	modeMask uint64 = 0b11

	modeNormal       uint64 = 0
	modeBlockComment uint64 = 1
	modeDocComment   uint64 = 2
	modeRawString    uint64 = 3

	// midLine is set once a token other than whitespace was seen on the
	// current line. A '#' is a preprocessor directive only when clear.
	midLine uint64 = 1 << 2
)

// maxWord bounds identifiers looked up in the keyword table.
const maxWord = 64

// General is a lexer for C-family languages: identifiers, keywords and
// type names, numbers, string and character literals, line and block
// comments, raw `strings`, preprocessor lines, pairs, punctuation and
// operators.
//
// Block comments and raw strings are emitted one line at a time; the
// open construct is carried in the state.
type General struct {
	language string
	keywords map[string]token.Type
}

// NewGeneral creates a lexer with the default C-family keyword table.
func NewGeneral() *General {
	g := &General{
		language: "general",
		keywords: make(map[string]token.Type),
	}
	g.AddKeywords(token.Keyword, defaultKeywords...)
	g.AddKeywords(token.TypeName, defaultTypes...)
	return g
}

// Language returns the language name.
func (g *General) Language() string {
	return g.language
}

// AddKeywords assigns tokenType to every word.
func (g *General) AddKeywords(tokenType token.Type, words ...string) *General {
	for _, w := range words {
		g.keywords[w] = tokenType
	}
	return g
}

// NextToken implements token.Lexer.
func (g *General) NextToken(it *contents.Iterator, tok *token.Token, state *uint64) bool {
	mode := *state & modeMask

	// Skip whitespace, except inside an open comment or raw string.
	if mode == modeNormal {
		for !it.AtEOB() {
			ch := it.Get()
			if ch == '\n' {
				*state &^= midLine
			} else if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\f' && ch != '\v' {
				break
			}
			it.Advance()
		}
	}
	if it.AtEOB() {
		return false
	}
	tok.Start = it.Position()

	switch mode {
	case modeBlockComment, modeDocComment:
		tok.Type = token.Comment
		if mode == modeDocComment {
			tok.Type = token.DocComment
		}
		g.blockComment(it, tok.Start, state)
		tok.End = it.Position()
		return true
	case modeRawString:
		tok.Type = token.String
		g.rawString(it, tok.Start, state)
		tok.End = it.Position()
		return true
	}

	ch := it.Get()
	atLineStart := *state&midLine == 0
	*state |= midLine

	switch {
	case isIdentStart(ch):
		tok.Type = g.word(it)
	case isDigit(ch) || (ch == '.' && isDigit(peek(it, 1))):
		tok.Type = token.Number
		number(it)
	case ch == '"' || ch == '\'':
		tok.Type = quoted(it, ch)
	case ch == '`':
		it.Advance()
		*state = *state&^modeMask | modeRawString
		tok.Type = token.String
		g.rawString(it, tok.Start, state)
	case ch == '#' && atLineStart:
		tok.Type = token.Preprocessor
		toLineEnd(it)
	case ch == '/' && peek(it, 1) == '/':
		tok.Type = token.Comment
		if peek(it, 2) == '/' || peek(it, 2) == '!' {
			tok.Type = token.DocComment
		}
		toLineEnd(it)
	case ch == '/' && peek(it, 1) == '*':
		it.AdvanceN(2)
		newMode := modeBlockComment
		tok.Type = token.Comment
		if !it.AtEOB() && it.Get() == '*' && peek(it, 1) != '/' {
			newMode = modeDocComment
			tok.Type = token.DocComment
		}
		*state = *state&^modeMask | newMode
		g.blockComment(it, tok.Start, state)
	case ch == '(' || ch == '[' || ch == '{':
		it.Advance()
		tok.Type = token.OpenPair
	case ch == ')' || ch == ']' || ch == '}':
		it.Advance()
		tok.Type = token.ClosePair
	case ch == ',' || ch == ';' || ch == '.' || ch == ':' || ch == '?':
		it.Advance()
		tok.Type = token.Punctuation
	case isOperator(ch):
		tok.Type = token.Operator
		operator(it)
	default:
		it.Advance()
		tok.Type = token.Invalid
	}
	tok.End = it.Position()
	return true
}

// word consumes an identifier and classifies it.
func (g *General) word(it *contents.Iterator) token.Type {
	var buf [maxWord]byte
	n := 0
	for !it.AtEOB() && isIdentPart(it.Get()) {
		if n < maxWord {
			buf[n] = it.Get()
		}
		n++
		it.Advance()
	}
	if n <= maxWord {
		if t, ok := g.keywords[string(buf[:n])]; ok {
			return t
		}
	}
	return token.Identifier
}

// blockComment consumes comment text up to and including "*/", or up to
// the end of the line, leaving the comment open in the state. A newline
// at start belongs to the segment it begins.
func (g *General) blockComment(it *contents.Iterator, start uint64, state *uint64) {
	for !it.AtEOB() {
		ch := it.Get()
		if ch == '\n' && it.Position() != start {
			return
		}
		it.Advance()
		if ch == '*' && !it.AtEOB() && it.Get() == '/' {
			it.Advance()
			*state &^= modeMask
			return
		}
	}
}

// rawString consumes raw string text up to and including the closing
// backquote, or up to the end of the line.
func (g *General) rawString(it *contents.Iterator, start uint64, state *uint64) {
	for !it.AtEOB() {
		ch := it.Get()
		if ch == '\n' && it.Position() != start {
			return
		}
		it.Advance()
		if ch == '`' {
			*state &^= modeMask
			return
		}
	}
}

// quoted consumes a string or character literal ending at the matching
// quote. A literal left open at the end of the line is invalid.
func quoted(it *contents.Iterator, quote byte) token.Type {
	it.Advance()
	for !it.AtEOB() {
		ch := it.Get()
		if ch == '\n' {
			return token.Invalid
		}
		it.Advance()
		if ch == '\\' && !it.AtEOB() && it.Get() != '\n' {
			it.Advance()
			continue
		}
		if ch == quote {
			if quote == '\'' {
				return token.Character
			}
			return token.String
		}
	}
	return token.Invalid
}

func number(it *contents.Iterator) {
	prev := byte(0)
	for !it.AtEOB() {
		ch := it.Get()
		switch {
		case isIdentPart(ch) || ch == '.':
		case (ch == '+' || ch == '-') && (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'):
		default:
			return
		}
		prev = ch
		it.Advance()
	}
}

// operators lists the multi-byte operators, longest first.
var operators = []string{
	"<<=", ">>=", "&^=",
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>", "++", "--", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ":=", "&^", "<-",
}

func operator(it *contents.Iterator) {
	for _, op := range operators {
		if matches(it, op) {
			it.AdvanceN(uint64(len(op)))
			return
		}
	}
	it.Advance()
}

func matches(it *contents.Iterator, s string) bool {
	for i := 0; i < len(s); i++ {
		if peek(it, uint64(i)) != s[i] {
			return false
		}
	}
	return true
}

func toLineEnd(it *contents.Iterator) {
	for !it.AtEOB() && it.Get() != '\n' {
		it.Advance()
	}
}

// peek returns the byte n positions ahead of it, or 0 past the end.
func peek(it *contents.Iterator, n uint64) byte {
	pos := it.Position() + n
	c := it.Contents()
	if pos >= c.Len() {
		return 0
	}
	if n == 0 {
		return it.Get()
	}
	return c.GetOnce(pos)
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperator(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '^', '~', '@', '$':
		return true
	}
	return false
}
