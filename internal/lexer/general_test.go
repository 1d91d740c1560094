package lexer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/edit"
	"github.com/dshills/stormcore/internal/engine/token"
)

type span struct {
	Text string
	Type token.Type
}

func lexAll(l token.Lexer, text string) []span {
	c := contents.FromString(text)
	cache := token.NewCache(l, token.WithInterval(8))
	var got []span
	for tok := range cache.Tokens(c, 0, c.Len()) {
		got = append(got, span{text[tok.Start:tok.End], tok.Type})
	}
	return got
}

func TestGeneralTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []span
	}{
		{
			name: "keywords and types",
			text: "return int x",
			want: []span{{"return", token.Keyword}, {"int", token.TypeName}, {"x", token.Identifier}},
		},
		{
			name: "numbers",
			text: "1 0x1F 3.5e-2 .5",
			want: []span{{"1", token.Number}, {"0x1F", token.Number}, {"3.5e-2", token.Number}, {".5", token.Number}},
		},
		{
			name: "strings and characters",
			text: `"a\"b" 'c'`,
			want: []span{{`"a\"b"`, token.String}, {"'c'", token.Character}},
		},
		{
			name: "unterminated string",
			text: "\"abc\nx",
			want: []span{{`"abc`, token.Invalid}, {"x", token.Identifier}},
		},
		{
			name: "line comments",
			text: "a // b\n/// doc\nc",
			want: []span{
				{"a", token.Identifier}, {"// b", token.Comment},
				{"/// doc", token.DocComment}, {"c", token.Identifier},
			},
		},
		{
			name: "block comment across lines",
			text: "/* a\nb */ x",
			want: []span{{"/* a", token.Comment}, {"\nb */", token.Comment}, {"x", token.Identifier}},
		},
		{
			name: "doc block comment",
			text: "/** d */ /**/",
			want: []span{{"/** d */", token.DocComment}, {"/**/", token.Comment}},
		},
		{
			name: "raw string across lines",
			text: "`a\nb` c",
			want: []span{{"`a", token.String}, {"\nb`", token.String}, {"c", token.Identifier}},
		},
		{
			name: "preprocessor only at line start",
			text: "#include <x>\n  #define y\nint a # b",
			want: []span{
				{"#include <x>", token.Preprocessor},
				{"#define y", token.Preprocessor},
				{"int", token.TypeName}, {"a", token.Identifier},
				{"#", token.Invalid}, {"b", token.Identifier},
			},
		},
		{
			name: "pairs punctuation and operators",
			text: "f(a, b[0]) <<= c != d;",
			want: []span{
				{"f", token.Identifier}, {"(", token.OpenPair}, {"a", token.Identifier},
				{",", token.Punctuation}, {"b", token.Identifier}, {"[", token.OpenPair},
				{"0", token.Number}, {"]", token.ClosePair}, {")", token.ClosePair},
				{"<<=", token.Operator}, {"c", token.Identifier}, {"!=", token.Operator},
				{"d", token.Identifier}, {";", token.Punctuation},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexAll(NewGeneral(), tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGeneralAddKeywords(t *testing.T) {
	g := NewGeneral().AddKeywords(token.Keyword, "fn")
	got := lexAll(g, "fn main")
	want := []span{{"fn", token.Keyword}, {"main", token.Identifier}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneralCommentStateSurvivesEdits(t *testing.T) {
	cache := token.NewCache(NewGeneral(), token.WithInterval(4))
	b := buffer.FromString("int a;\nint b;\nint c;\n", buffer.WithListener(cache))
	cache.GenerateTo(b.Contents(), b.Len())

	tx := b.NewTransaction()
	_ = tx.Push(edit.NewInsert(0, "/*"))
	if err := b.Commit(tx); err != nil {
		t.Fatal(err)
	}
	// int c; is at 16 after the insert.
	if tok, _ := cache.TokenAt(b.Contents(), 17); tok.Type != token.Comment {
		t.Errorf("TokenAt(17) = %v, want comment", tok)
	}

	tx = b.NewTransaction()
	_ = tx.Push(edit.NewInsert(b.Len(), "*/ x"))
	_ = b.Commit(tx)
	got := lexAll(NewGeneral(), b.String())
	var resumed []span
	text := b.String()
	for tok := range cache.Tokens(b.Contents(), 0, b.Len()) {
		resumed = append(resumed, span{text[tok.Start:tok.End], tok.Type})
	}
	if diff := cmp.Diff(got, resumed); diff != "" {
		t.Errorf("cached tokens differ from a fresh lex (-fresh +cached):\n%s", diff)
	}

	b.Undo()
	b.Undo()
	if tok, _ := cache.TokenAt(b.Contents(), 15); tok.Type != token.TypeName {
		t.Errorf("after undo TokenAt(15) = %v, want type", tok)
	}
}

func TestPlain(t *testing.T) {
	got := lexAll(Plain{}, "  a bc\n\td ")
	want := []span{{"a", token.Default}, {"bc", token.Default}, {"d", token.Default}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "plain", "general", "C", "go"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q) error: %v", name, err)
		}
	}
	if _, err := ByName("cobol"); !errors.Is(err, ErrUnknownLexer) {
		t.Errorf("ByName(cobol) error = %v, want ErrUnknownLexer", err)
	}
	if _, ok := ForFile("main.go").(*General); !ok {
		t.Error("ForFile(main.go) should be General")
	}
	if _, ok := ForFile("notes.txt").(Plain); !ok {
		t.Error("ForFile(notes.txt) should be Plain")
	}
}
