package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/stormcore/internal/engine"
	"github.com/dshills/stormcore/internal/job"
)

// ErrUnknownCommand is returned for command names not in the table.
var ErrUnknownCommand = errors.New("unknown command")

// pollInterval paces waiting on background jobs.
const pollInterval = 5 * time.Millisecond

// command runs one script line. args is the rest of the line after the
// command name, with surrounding blanks removed.
type command struct {
	usage string
	run   func(a *Application, ctx context.Context, w io.Writer, args string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"insert":         {"insert TEXT", withEngine(func(e *engine.Engine, args string) error { return insertCmd(e, args, false) })},
		"insert-after":   {"insert-after TEXT", withEngine(func(e *engine.Engine, args string) error { return insertCmd(e, args, true) })},
		"delete":         {"delete [N]", withCount((*engine.Engine).DeleteForward)},
		"backspace":      {"backspace [N]", withCount((*engine.Engine).DeleteBackward)},
		"delete-region":  {"delete-region", withEngine(func(e *engine.Engine, _ string) error { return e.DeleteRegion() })},
		"mark":           {"mark", withEngine(func(e *engine.Engine, _ string) error { return e.SetMark() })},
		"goto":           {"goto POS", withPos((*engine.Engine).SetPoint)},
		"cursor":         {"cursor POS | cursor clear", withEngine(cursorCmd)},
		"cut":            {"cut", withEngine(func(e *engine.Engine, _ string) error { return e.Cut() })},
		"copy":           {"copy", withEngine(func(e *engine.Engine, _ string) error { return e.Copy() })},
		"paste":          {"paste", withEngine(func(e *engine.Engine, _ string) error { return e.Paste() })},
		"paste-previous": {"paste-previous", withEngine(func(e *engine.Engine, _ string) error { return e.PastePrevious() })},
		"undo":           {"undo", withEngine(func(e *engine.Engine, _ string) error { return e.Undo() })},
		"redo":           {"redo", withEngine(func(e *engine.Engine, _ string) error { return e.Redo() })},
		"token":          {"token POS", tokenCmd},
		"tokens":         {"tokens [START END]", tokensCmd},
		"search":         {"search TEXT", searchCmd},
		"find":           {"find TEXT", findCmd},
		"print":          {"print", printCmd},
		"cursors":        {"cursors", cursorsCmd},
		"save":           {"save [PATH]", saveCmd},
		"open":           {"open PATH", openCmd},
		"buffers":        {"buffers", buffersCmd},
		"switch":         {"switch N", switchCmd},
		"help":           {"help", helpCmd},
	}
}

func withEngine(fn func(e *engine.Engine, args string) error) func(*Application, context.Context, io.Writer, string) error {
	return func(a *Application, _ context.Context, _ io.Writer, args string) error {
		e, err := a.Current()
		if err != nil {
			return err
		}
		return fn(e, args)
	}
}

func withCount(fn func(e *engine.Engine, n uint64) error) func(*Application, context.Context, io.Writer, string) error {
	return withEngine(func(e *engine.Engine, args string) error {
		n := uint64(1)
		if args != "" {
			var err error
			if n, err = strconv.ParseUint(args, 10, 64); err != nil {
				return fmt.Errorf("bad count %q", args)
			}
		}
		return fn(e, n)
	})
}

func withPos(fn func(e *engine.Engine, pos uint64) error) func(*Application, context.Context, io.Writer, string) error {
	return withEngine(func(e *engine.Engine, args string) error {
		pos, err := parsePos(args)
		if err != nil {
			return err
		}
		return fn(e, pos)
	})
}

func parsePos(s string) (uint64, error) {
	pos, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad position %q", s)
	}
	return pos, nil
}

// unquote accepts either a Go-quoted string or literal text.
func unquote(s string) (string, error) {
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	return s, nil
}

func insertCmd(e *engine.Engine, args string, after bool) error {
	text, err := unquote(args)
	if err != nil {
		return fmt.Errorf("bad text %s: %w", args, err)
	}
	if after {
		return e.InsertAfter(text)
	}
	return e.Insert(text)
}

func cursorCmd(e *engine.Engine, args string) error {
	if args == "clear" {
		return e.ClearCursors()
	}
	pos, err := parsePos(args)
	if err != nil {
		return err
	}
	return e.AddCursor(pos)
}

func tokenCmd(a *Application, _ context.Context, w io.Writer, args string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	pos, err := parsePos(args)
	if err != nil {
		return err
	}
	tok, ok := e.TokenAt(pos)
	if !ok {
		_, err = fmt.Fprintln(w, "no token")
		return err
	}
	_, err = fmt.Fprintf(w, "%s %q\n", tok, e.TextRange(tok.Start, tok.End))
	return err
}

func tokensCmd(a *Application, _ context.Context, w io.Writer, args string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	start, end := uint64(0), e.Len()
	if args != "" {
		f := strings.Fields(args)
		if len(f) != 2 {
			return errors.New("usage: tokens [START END]")
		}
		if start, err = parsePos(f[0]); err != nil {
			return err
		}
		if end, err = parsePos(f[1]); err != nil {
			return err
		}
	}
	for _, tok := range e.Tokens(start, end) {
		if _, err := fmt.Fprintf(w, "%s %q\n", tok, e.TextRange(tok.Start, tok.End)); err != nil {
			return err
		}
	}
	return nil
}

// drain collects a job's results until it finishes or ctx is done.
func drain[T any](ctx context.Context, r *job.Results[T]) ([]T, error) {
	var all []T
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for !r.Done() {
		all = append(all, r.Take()...)
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-ticker.C:
		}
	}
	return append(all, r.Take()...), nil
}

func searchCmd(a *Application, ctx context.Context, w io.Writer, args string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	query, err := unquote(args)
	if err != nil || query == "" {
		return errors.New("usage: search TEXT")
	}
	matches, err := drain(ctx, job.SearchBuffer(e.Handle(), query))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(w, "%d line %d\n", m.Position, m.Line+1); err != nil {
			return err
		}
	}
	a.logger.WithComponent("search").Debug("%q: %d matches", query, len(matches))
	return nil
}

func findCmd(a *Application, ctx context.Context, w io.Writer, args string) error {
	if args == "" {
		return errors.New("usage: find TEXT")
	}
	files, err := drain(ctx, job.SearchFiles(a.root, args))
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(w, f); err != nil {
			return err
		}
	}
	return nil
}

func printCmd(a *Application, _ context.Context, w io.Writer, _ string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%q\n", e.Text())
	return err
}

func cursorsCmd(a *Application, _ context.Context, w io.Writer, _ string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	for _, c := range e.Cursors() {
		if _, err := fmt.Fprintf(w, "point %d mark %d\n", c.Point, c.Mark); err != nil {
			return err
		}
	}
	return nil
}

func saveCmd(a *Application, _ context.Context, _ io.Writer, args string) error {
	e, err := a.Current()
	if err != nil {
		return err
	}
	return a.Save(e.ID(), args)
}

func openCmd(a *Application, _ context.Context, _ io.Writer, args string) error {
	if args == "" {
		return errors.New("usage: open PATH")
	}
	_, err := a.Open(args)
	return err
}

func buffersCmd(a *Application, _ context.Context, w io.Writer, _ string) error {
	cur, _ := a.Current()
	for i, id := range a.Buffers() {
		e, err := a.Engine(id)
		if err != nil {
			continue
		}
		marker := " "
		if e == cur {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s%d %s %d\n", marker, i+1, e.Name(), e.Len()); err != nil {
			return err
		}
	}
	return nil
}

func switchCmd(a *Application, _ context.Context, _ io.Writer, args string) error {
	ids := a.Buffers()
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 || n > len(ids) {
		return fmt.Errorf("%w: %q", ErrBufferUnknown, args)
	}
	return a.Switch(ids[n-1])
}

func helpCmd(_ *Application, _ context.Context, w io.Writer, _ string) error {
	for _, name := range sortedCommands() {
		if _, err := fmt.Fprintln(w, commands[name].usage); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs one script line. Blank lines and lines starting with '#' are
// ignored.
func (a *Application) Exec(ctx context.Context, w io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, args, _ := strings.Cut(line, " ")
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(a, ctx, w, strings.TrimSpace(args))
}

// Run executes every line of r, writing output to w. A failing command
// is reported on w as "error: ..." and the script continues. prompt, if
// not empty, is written before each line is read. Run returns the number
// of failed commands.
func (a *Application) Run(ctx context.Context, r io.Reader, w io.Writer, prompt string) (int, error) {
	log := a.logger.WithComponent("script")
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	failed := 0
	for lineNo := 1; ; lineNo++ {
		if prompt != "" {
			fmt.Fprint(w, prompt)
		}
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := a.Exec(ctx, w, sc.Text()); err != nil {
			failed++
			log.WithField("line", lineNo).Debug("%v", err)
			if _, werr := fmt.Fprintf(w, "error: %v\n", err); werr != nil {
				return failed, werr
			}
		}
	}
	return failed, sc.Err()
}

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
