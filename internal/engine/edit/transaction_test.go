package edit

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/stormcore/internal/engine/contents"
)

func TestTransactionPushAndFinish(t *testing.T) {
	tx := NewTransaction()
	tx.Init(2, 0)
	if err := tx.Push(NewInsert(0, "a")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Push(NewInsert(1, "b")); err != nil {
		t.Fatal(err)
	}
	if tx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tx.Len())
	}
	commit, err := tx.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(commit.Edits) != 2 || commit.ID.String() == "" {
		t.Errorf("unexpected commit %+v", commit)
	}
	if !tx.IsDone() {
		t.Error("finished transaction should be done")
	}
	if err := tx.Push(NewInsert(0, "c")); !errors.Is(err, ErrDropped) {
		t.Errorf("Push after Finish = %v, want ErrDropped", err)
	}
}

func TestTransactionDrop(t *testing.T) {
	tx := NewTransaction()
	_ = tx.Push(NewInsert(0, "abc"))
	tx.Drop()
	if tx.Len() != 0 {
		t.Error("dropped transaction should hold no edits")
	}
	if _, err := tx.Finish(); !errors.Is(err, ErrDropped) {
		t.Errorf("Finish after Drop = %v, want ErrDropped", err)
	}
}

func TestTransactionByteLimit(t *testing.T) {
	tx := NewTransaction(WithByteLimit(4))
	if err := tx.Push(NewInsert(0, "abc")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Push(NewInsert(3, "de")); !errors.Is(err, ErrAllocation) {
		t.Errorf("Push over budget = %v, want ErrAllocation", err)
	}
	if tx.Len() != 1 {
		t.Errorf("failed push must not append, Len() = %d", tx.Len())
	}
}

func TestTransactionArenaPayloads(t *testing.T) {
	tx := NewTransaction()
	tx.Init(2, 64)
	long := strings.Repeat("x", 30)
	a := tx.String(long)
	b := tx.Bytes([]byte(long + "y"))
	if a.String() != long || b.String() != long+"y" {
		t.Fatal("arena payloads corrupted")
	}
	short := tx.String("hi")
	if !short.IsInline() {
		t.Error("short payload should be inline")
	}
}

func TestTransactionSlice(t *testing.T) {
	c := contents.FromString("hello, wonderful world", contents.WithBucketSize(4))
	tx := NewTransaction()
	s := tx.Slice(c, 7, 16)
	if s.String() != "wonderful" {
		t.Errorf("Slice = %q, want %q", s.String(), "wonderful")
	}
	long := tx.Slice(c, 0, c.Len())
	if long.String() != c.String() {
		t.Errorf("long Slice = %q", long.String())
	}
}

func TestCommitApplyAndInverse(t *testing.T) {
	c := contents.FromString("abc")
	commit := Commit{Edits: []Edit{
		NewInsert(1, "X"), // aXbc
		NewRemove(3, "c"), // aXb
		NewInsertAfter(3, strings.Repeat("z", 20)),
	}}
	commit.Apply(c)
	want := "aXb" + strings.Repeat("z", 20)
	if c.String() != want {
		t.Fatalf("after Apply = %q, want %q", c.String(), want)
	}
	if commit.Delta() != 20 {
		t.Errorf("Delta() = %d, want 20", commit.Delta())
	}
	commit.ApplyInverse(c)
	if c.String() != "abc" {
		t.Fatalf("after ApplyInverse = %q, want %q", c.String(), "abc")
	}
}

func TestKindStrings(t *testing.T) {
	tests := map[Kind]string{
		Remove:      "remove",
		Insert:      "insert",
		RemoveAfter: "remove-after",
		InsertAfter: "insert-after",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}

func TestInverseFlipsOnlyInsertBit(t *testing.T) {
	e := NewInsertAfter(4, "q")
	inv := e.Inverse()
	if inv.Kind != RemoveAfter {
		t.Errorf("Inverse kind = %v, want remove-after", inv.Kind)
	}
	if inv.Inverse().Kind != InsertAfter {
		t.Error("double inverse should restore the kind")
	}
}
