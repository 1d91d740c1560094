package job

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/stormcore/internal/engine/buffer"
)

func wait[T any](t *testing.T, r *Results[T]) []T {
	t.Helper()
	var all []T
	deadline := time.Now().Add(5 * time.Second)
	for !r.Done() {
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		all = append(all, r.Take()...)
		time.Sleep(time.Millisecond)
	}
	return append(all, r.Take()...)
}

func TestStartPublishes(t *testing.T) {
	r := NewResults[int]()
	Start(r, func(publish func([]int) bool) {
		for i := range 5 {
			if !publish([]int{i, i * 10}) {
				return
			}
		}
	})
	got := wait(t, r)
	want := []int{0, 0, 1, 10, 2, 20, 3, 30, 4, 40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if r.Total() != len(want) {
		t.Errorf("Total() = %d, want %d", r.Total(), len(want))
	}
}

func TestWorkerExitsWhenOwnerCollected(t *testing.T) {
	exited := make(chan struct{})
	func() {
		Start(NewResults[int](), func(publish func([]int) bool) {
			defer close(exited)
			for publish([]int{1}) {
				time.Sleep(time.Millisecond)
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-exited:
			return
		case <-deadline:
			t.Fatal("worker still running after its owner became unreachable")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSearchBuffer(t *testing.T) {
	var sb strings.Builder
	var want []uint64
	for sb.Len() < 3*ChunkSize {
		// Place hits so some straddle chunk boundaries.
		if sb.Len()%ChunkSize > ChunkSize-20 {
			want = append(want, uint64(sb.Len()))
			sb.WriteString("needle")
			continue
		}
		sb.WriteString("hay\n")
	}
	h := buffer.NewHandle(buffer.FromString(sb.String()))

	matches := wait(t, SearchBuffer(h, "needle"))
	var got []uint64
	for _, m := range matches {
		got = append(got, m.Position)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if len(matches) > 0 && matches[0].Line != strings.Count(sb.String()[:want[0]], "\n") {
		t.Errorf("first match line = %d", matches[0].Line)
	}
	if h.Refs() != 1 {
		t.Errorf("Refs() = %d after search, want 1", h.Refs())
	}
}

func TestSearchBufferEmptyQuery(t *testing.T) {
	h := buffer.NewHandle(buffer.FromString("abc"))
	r := SearchBuffer(h, "")
	if !r.Done() || len(r.Take()) != 0 {
		t.Error("empty query should finish immediately with no matches")
	}
}

func TestSearchFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"main.go", "cmd/tool/Main_test.go", "README.md", ".git/main.go"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := wait(t, SearchFiles(root, "main"))
	slices.Sort(got)
	want := []string{"cmd/tool/Main_test.go", "main.go"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}
