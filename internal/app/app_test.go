package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/stormcore/internal/config"
	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
)

func newApp(t *testing.T, opts ...Option) *Application {
	t.Helper()
	a := New(config.Default(), append([]Option{WithLogger(NullLogger)}, opts...)...)
	t.Cleanup(a.Shutdown)
	return a
}

func run(t *testing.T, a *Application, script string) (string, int) {
	t.Helper()
	var out strings.Builder
	failed, err := a.Run(context.Background(), strings.NewReader(script), &out, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String(), failed
}

func TestRunScript(t *testing.T) {
	a := newApp(t)
	if _, err := a.NewBuffer("t.txt", ""); err != nil {
		t.Fatal(err)
	}

	script := `insert foo bar
goto 0
mark
goto 4
cut
print
goto 3
paste
print
paste-previous
undo
print
token 1
search a
bogus
# comments and blank lines are skipped

insert "\tx"
print
`
	want := `"bar"
"barfoo "
error: no previous kill-ring entry
"bar"
default[0,3) "bar"
1 line 1
error: unknown command: bogus
"bar\tx"
`
	got, failed := run(t, a, script)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}

func TestMultiCursorScript(t *testing.T) {
	a := newApp(t)
	_, _ = a.NewBuffer("list.txt", "a\nb\nc")

	got, failed := run(t, a, "cursor 2\ncursor 4\ninsert \"- \"\nprint\ncursors\ncursor clear\ncursors\n")
	want := `"- a\n- b\n- c"
point 2 mark 2
point 6 mark 6
point 10 mark 10
point 2 mark 2
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if failed != 0 {
		t.Errorf("failed = %d", failed)
	}
}

func TestCommandErrors(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	var out strings.Builder

	if err := a.Exec(ctx, &out, "print"); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("print without a buffer = %v, want ErrNoBuffer", err)
	}
	_, _ = a.NewBuffer("x", "abc")
	for _, line := range []string{"goto x", "delete -1", "tokens 1", "insert \"unterminated", "switch 9", "search"} {
		if err := a.Exec(ctx, &out, line); err == nil {
			t.Errorf("Exec(%q) should fail", line)
		}
	}
	if err := a.Exec(ctx, &out, "save"); !errors.Is(err, ErrNoPath) {
		t.Errorf("save without a path = %v, want ErrNoPath", err)
	}
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := newApp(t)
	id, err := a.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	e, _ := a.Engine(id)
	if tok, _ := e.TokenAt(1); tok.Type != token.TypeName {
		t.Errorf("TokenAt(1) = %v, want type (general lexer for .c)", tok)
	}

	if _, failed := run(t, a, "goto 6\ninsert \" // ok\"\nsave\n"); failed != 0 {
		t.Fatalf("script failed")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "int x; // ok\n" {
		t.Errorf("saved %q", data)
	}

	other := filepath.Join(dir, "copy.c")
	if err := a.Save(id, other); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Save to another path: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	a := newApp(t)
	if _, err := a.Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, failed := run(t, a, "insert hello\nsave\n"); failed != 0 {
		t.Fatal("script failed")
	}
	if data, _ := os.ReadFile(path); string(data) != "hello" {
		t.Errorf("saved %q", data)
	}
}

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestOpenFailureClosesLexer(t *testing.T) {
	a := newApp(t)
	counter := &closeCounter{}
	a.lexerFor = func(string) (token.Lexer, io.Closer, error) {
		return token.LexerFunc(func(*contents.Iterator, *token.Token, *uint64) bool { return false }), counter, nil
	}

	// Reading a directory fails after it was opened.
	if _, err := a.Open(t.TempDir()); err == nil {
		t.Fatal("Open() of a directory should fail")
	}
	if counter.closed != 1 {
		t.Errorf("lexer closed %d times, want 1", counter.closed)
	}
	if len(a.Buffers()) != 0 {
		t.Errorf("failed open registered %d buffers", len(a.Buffers()))
	}
}

func TestBufferRegistry(t *testing.T) {
	a := newApp(t)
	first, _ := a.NewBuffer("one", "1")
	second, _ := a.NewBuffer("two", "22")

	out, _ := run(t, a, "buffers\nswitch 1\nprint\n")
	want := " 1 one 1\n*2 two 2\n\"1\"\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if err := a.CloseBuffer(first); err != nil {
		t.Fatal(err)
	}
	cur, err := a.Current()
	if err != nil || cur.ID() != second {
		t.Errorf("Current() after closing = %v, %v", cur, err)
	}
	if _, err := a.Engine(first); !errors.Is(err, ErrBufferUnknown) {
		t.Errorf("Engine(closed) = %v", err)
	}
	if diff := cmp.Diff(1, len(a.Buffers())); diff != "" {
		t.Errorf("Buffers() size mismatch: %s", diff)
	}
}

func TestLuaLexerFromConfig(t *testing.T) {
	script := filepath.Join(t.TempDir(), "all.lua")
	src := `function next_token(peek, pos, state)
  if peek(pos) == nil then return nil end
  return pos, pos + 1, "keyword", state
end`
	if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Lexer.Script = script
	a := New(cfg, WithLogger(NullLogger))
	defer a.Shutdown()

	if _, err := a.NewBuffer("x", "ab"); err != nil {
		t.Fatal(err)
	}
	out, _ := run(t, a, "tokens\n")
	if out != "keyword[0,1) \"a\"\nkeyword[1,2) \"b\"\n" {
		t.Errorf("tokens output %q", out)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"alpha.go", "beta.go"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	a := newApp(t, WithRoot(root))
	out, _ := run(t, a, "find alp\n")
	if out != "alpha.go\n" {
		t.Errorf("find output %q", out)
	}
}

func TestSetConfigAppliesLogLevel(t *testing.T) {
	a := New(nil)
	cfg := config.Default()
	cfg.Log.Level = "error"
	a.SetConfig(cfg)
	if a.Logger().Level() != LogLevelError {
		t.Errorf("Level() = %v", a.Logger().Level())
	}
	if a.Config() != cfg {
		t.Error("Config() did not return the new config")
	}
}

func TestReadOnlyApplication(t *testing.T) {
	a := newApp(t, WithReadOnly())
	_, _ = a.NewBuffer("ro", "keep")
	out, failed := run(t, a, "insert x\nprint\n")
	if failed != 1 || out != "error: engine is read-only\n\"keep\"\n" {
		t.Errorf("output %q, failed %d", out, failed)
	}
}
