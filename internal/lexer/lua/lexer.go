package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
)

// Lexer runs next_token from a Lua script for every token.
//
// A script error ends lexing at the failing position; Err reports it.
type Lexer struct {
	state *State
	next  *lua.LFunction
	peek  *lua.LFunction

	cur *contents.Iterator
	err error
}

// NewLexer compiles script and looks up next_token.
func NewLexer(script string, opts ...StateOption) (*Lexer, error) {
	s := NewState(opts...)
	if err := s.DoString(script); err != nil {
		s.Close()
		return nil, fmt.Errorf("load lexer script: %w", err)
	}
	return newLexer(s)
}

// LoadLexer reads the script from path.
func LoadLexer(path string, opts ...StateOption) (*Lexer, error) {
	s := NewState(opts...)
	if err := s.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("load lexer %s: %w", path, err)
	}
	return newLexer(s)
}

func newLexer(s *State) (*Lexer, error) {
	fn, ok := s.Global("next_token").(*lua.LFunction)
	if !ok {
		s.Close()
		return nil, ErrNoNextToken
	}
	l := &Lexer{state: s, next: fn}
	l.peek = s.NewFunction(l.peekByte)
	return l, nil
}

// peekByte implements peek(i) for the script.
func (l *Lexer) peekByte(L *lua.LState) int {
	pos := L.CheckInt64(1)
	c := l.cur.Contents()
	if pos < 0 || uint64(pos) >= c.Len() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(c.GetOnce(uint64(pos))))
	return 1
}

// NextToken implements token.Lexer.
func (l *Lexer) NextToken(it *contents.Iterator, tok *token.Token, state *uint64) bool {
	if it.AtEOB() {
		return false
	}
	l.cur = it
	defer func() { l.cur = nil }()

	pos := it.Position()
	res, err := l.state.Call(l.next, l.peek, lua.LNumber(pos), lua.LNumber(*state))
	if err != nil {
		l.err = fmt.Errorf("next_token at %d: %w", pos, err)
		return false
	}
	if len(res) == 0 || res[0] == lua.LNil {
		return false
	}
	if len(res) < 4 {
		l.err = fmt.Errorf("%w at %d: got %d values", ErrBadResult, pos, len(res))
		return false
	}
	start, ok1 := res[0].(lua.LNumber)
	end, ok2 := res[1].(lua.LNumber)
	name, ok3 := res[2].(lua.LString)
	st, ok4 := res[3].(lua.LNumber)
	if !ok1 || !ok2 || !ok3 || !ok4 || start < lua.LNumber(pos) || end < start {
		l.err = fmt.Errorf("%w at %d", ErrBadResult, pos)
		return false
	}

	tok.Start = min(uint64(start), it.Contents().Len())
	tok.End = min(uint64(end), it.Contents().Len())
	tok.Type = token.Invalid
	if ty, ok := token.ParseType(string(name)); ok {
		tok.Type = ty
	}
	*state = uint64(st)
	it.AdvanceN(tok.End - pos)
	return true
}

// Err returns the last script error.
func (l *Lexer) Err() error {
	return l.err
}

// Close releases the Lua state.
func (l *Lexer) Close() error {
	return l.state.Close()
}
