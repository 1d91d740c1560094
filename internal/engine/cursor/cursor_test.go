package cursor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/stormcore/internal/engine/buffer"
	"github.com/dshills/stormcore/internal/engine/edit"
	"github.com/dshills/stormcore/internal/engine/sso"
)

func TestCursorRegion(t *testing.T) {
	tests := []struct {
		name        string
		point, mark uint64
		start, end  uint64
	}{
		{"empty", 4, 4, 4, 4},
		{"forward", 7, 2, 2, 7},
		{"backward", 2, 7, 2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cursor{Point: tt.point, Mark: tt.mark}
			start, end := c.Region()
			if start != tt.start || end != tt.end {
				t.Errorf("Region() = (%d, %d), want (%d, %d)", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestCursorAdjust(t *testing.T) {
	b := buffer.FromString("hello world")
	c := &Cursor{Point: 6, Mark: 11}

	tx := b.NewTransaction()
	_ = tx.Push(edit.NewInsert(0, ">> "))
	if err := b.Commit(tx); err != nil {
		t.Fatal(err)
	}
	c.Adjust(b.ChangesSince(0))
	if c.Point != 9 || c.Mark != 14 {
		t.Errorf("after insert: %v", c)
	}

	b.Undo()
	c.Adjust(b.ChangesSince(1))
	if c.Point != 6 || c.Mark != 11 {
		t.Errorf("after undo: %v", c)
	}
}

func TestCopyChainSharesTails(t *testing.T) {
	var global *CopyChain
	global = PushCopy(global, sso.FromString("foo"))
	old := global
	global = PushCopy(global, sso.FromString("bar"))

	if global.Previous != old {
		t.Error("new head should link to the old head")
	}
	if diff := cmp.Diff([]string{"bar", "foo"}, global.Strings()); diff != "" {
		t.Errorf("Strings() mismatch (-want +got):\n%s", diff)
	}
	if old.Len() != 1 || global.Len() != 2 {
		t.Errorf("Len() = %d, %d", old.Len(), global.Len())
	}
}

func TestPasteSequence(t *testing.T) {
	var global *CopyChain
	global = PushCopy(global, sso.FromString("g1"))
	global = PushCopy(global, sso.FromString("g2"))

	c := New(0)
	c.LocalCopyChain = PushCopy(nil, sso.FromString("l1"))
	c.LocalCopyChain = PushCopy(c.LocalCopyChain, sso.FromString("l2"))

	var got []string
	for entry := c.StartPaste(global); ; entry = c.PasteEntry() {
		got = append(got, entry.Value.String())
		if !c.AdvancePaste() {
			break
		}
	}
	want := []string{"l2", "l1", "g2", "g1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paste sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestPasteEmpty(t *testing.T) {
	c := New(0)
	if c.StartPaste(nil) != nil {
		t.Error("paste with empty rings should yield nil")
	}
	if c.AdvancePaste() {
		t.Error("AdvancePaste with empty rings should fail")
	}
}

func TestBatchRunningOffset(t *testing.T) {
	b := buffer.FromString("a b c")
	tx := b.NewTransaction()
	batch := NewBatch(tx)

	for _, pos := range []uint64{0, 2, 4} {
		if _, err := batch.Insert(pos, sso.FromString("<>"), false); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Commit(tx); err != nil {
		t.Fatal(err)
	}
	if b.String() != "<>a <>b <>c" {
		t.Errorf("String() = %q", b.String())
	}
	if diff := cmp.Diff([]uint64{2, 6, 10}, batch.Points()); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchRemove(t *testing.T) {
	b := buffer.FromString("xaxbxc")
	tx := b.NewTransaction()
	batch := NewBatch(tx)
	for _, pos := range []uint64{0, 2, 4} {
		if _, err := batch.Remove(pos, sso.FromString("x"), false); err != nil {
			t.Fatal(err)
		}
	}
	_ = b.Commit(tx)
	if b.String() != "abc" {
		t.Errorf("String() = %q, want %q", b.String(), "abc")
	}
	if diff := cmp.Diff([]uint64{0, 1, 2}, batch.Points()); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchRejectsUnordered(t *testing.T) {
	tx := edit.NewTransaction()
	batch := NewBatch(tx)
	if _, err := batch.Remove(3, sso.FromString("ab"), false); err != nil {
		t.Fatal(err)
	}
	if _, err := batch.Insert(4, sso.FromString("x"), false); !errors.Is(err, ErrUnordered) {
		t.Errorf("overlapping insert = %v, want ErrUnordered", err)
	}
	if _, err := batch.Insert(1, sso.FromString("x"), false); !errors.Is(err, ErrUnordered) {
		t.Errorf("backwards insert = %v, want ErrUnordered", err)
	}
	if tx.Len() != 1 {
		t.Errorf("rejected operations must not push, Len() = %d", tx.Len())
	}
}

func TestBatchInsertAfterTieBreak(t *testing.T) {
	b := buffer.FromString("[]")
	tx := b.NewTransaction()
	batch := NewBatch(tx)
	pa, _ := batch.Insert(1, sso.FromString("A"), true)
	pb, _ := batch.Insert(1, sso.FromString("B"), true)
	_ = b.Commit(tx)

	text := b.String()
	if text != "[AB]" {
		t.Fatalf("String() = %q, want %q", text, "[AB]")
	}
	if text[pa] != 'A' {
		t.Errorf("first cursor should see its text to the right, got %q", text[pa])
	}
	if text[pb] != 'B' || text[pb-1] != 'A' {
		t.Errorf("second cursor should see B right and A left")
	}
}

func TestSetOrdering(t *testing.T) {
	s := NewSet(5)
	s.Add(New(2))
	s.Add(New(9))
	second := New(5)
	s.Add(second)

	if diff := cmp.Diff([]uint64{2, 5, 5, 9}, s.Points()); diff != "" {
		t.Fatalf("Points() mismatch (-want +got):\n%s", diff)
	}
	if s.Get(2) != second {
		t.Error("equal points should keep insertion order")
	}

	s.Get(0).Point = 20
	s.Normalize()
	if s.Primary().Point != 5 {
		t.Errorf("Primary().Point = %d, want 5", s.Primary().Point)
	}

	s.Clear()
	if s.Count() != 1 || s.IsMulti() {
		t.Errorf("Clear left %d cursors", s.Count())
	}
}

func TestClamp(t *testing.T) {
	c := &Cursor{Point: 10, Mark: 3}
	c.Clamp(5)
	if c.Point != 5 || c.Mark != 3 {
		t.Errorf("Clamp(5) = %v", c)
	}
}
