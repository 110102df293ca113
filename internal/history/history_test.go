package history

import (
	"reflect"
	"testing"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

func board(contents ...string) *store.DB {
	db := &store.DB{}
	for i, c := range contents {
		db.Tasks = append(db.Tasks, model.Task{ID: c, Content: c, Position: model.Point{X: float64(i)}})
	}
	return db
}

func TestUndoRedo_Basic(t *testing.T) {
	h := New(0)
	if h.Cap() != DefaultCap {
		t.Fatalf("expected default cap %d; got %d", DefaultCap, h.Cap())
	}
	h.Reset(board())
	h.Push(board("a"))
	h.Push(board("a", "b"))

	got, ok := h.Undo()
	if !ok || !reflect.DeepEqual(got, board("a")) {
		t.Fatalf("expected undo to [a]; got ok=%v %+v", ok, got)
	}
	got, ok = h.Undo()
	if !ok || len(got.Tasks) != 0 {
		t.Fatalf("expected undo to initial; got ok=%v %+v", ok, got)
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("expected undo at oldest entry to be a no-op")
	}
	if h.Cursor() != 0 {
		t.Fatalf("expected cursor 0; got %d", h.Cursor())
	}

	got, ok = h.Redo()
	if !ok || !reflect.DeepEqual(got, board("a")) {
		t.Fatalf("expected redo to [a]; got ok=%v %+v", ok, got)
	}
	h.Redo()
	if _, ok := h.Redo(); ok {
		t.Fatalf("expected redo at newest entry to be a no-op")
	}
}

func TestPush_TruncatesRedo(t *testing.T) {
	h := New(DefaultCap)
	h.Reset(board())
	h.Push(board("a"))
	h.Push(board("a", "b"))
	h.Undo()

	h.Push(board("a", "c"))
	if h.CanRedo() {
		t.Fatalf("expected redo branch discarded")
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("expected redo to be a no-op after a new push")
	}
	if got, want := h.Len(), 3; got != want {
		t.Fatalf("expected %d entries; got %d", want, got)
	}
}

func TestPush_EvictsOldest(t *testing.T) {
	h := New(3)
	h.Reset(board("0"))
	for _, c := range []string{"1", "2", "3", "4"} {
		h.Push(board(c))
	}
	if got, want := h.Len(), 3; got != want {
		t.Fatalf("expected %d entries; got %d", want, got)
	}
	entries := h.Entries()
	if entries[0].Tasks[0].ID != "2" || entries[2].Tasks[0].ID != "4" {
		t.Fatalf("expected entries 2..4; got %+v", entries)
	}
	h.Undo()
	got, _ := h.Undo()
	if got.Tasks[0].ID != "2" {
		t.Fatalf("expected oldest kept entry; got %+v", got)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	h := New(DefaultCap)
	live := board("a")
	h.Reset(live)
	live.Tasks[0].Content = "mutated"
	h.Push(live)

	got, _ := h.Undo()
	if got.Tasks[0].Content != "a" {
		t.Fatalf("expected pushed snapshot unaffected by later edits; got %q", got.Tasks[0].Content)
	}
	got.Tasks[0].Content = "changed again"
	again, _ := h.Redo()
	if again.Tasks[0].Content != "mutated" {
		t.Fatalf("expected redo snapshot intact; got %q", again.Tasks[0].Content)
	}
}

func TestKUndosReturnToInitial(t *testing.T) {
	h := New(DefaultCap)
	initial := board()
	h.Reset(initial)
	ids := []string{}
	for i := 0; i < DefaultCap-1; i++ {
		ids = append(ids, string(rune('a'+i%26))+string(rune('a'+i/26)))
		h.Push(board(ids...))
	}
	var last *store.DB
	for i := 0; i < DefaultCap-1; i++ {
		s, ok := h.Undo()
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		last = s
	}
	if !reflect.DeepEqual(last, initial) {
		t.Fatalf("expected initial state after k undos; got %+v", last)
	}
}

func TestRestore(t *testing.T) {
	h := New(2)
	if err := h.Restore(nil, 0); err == nil {
		t.Fatalf("expected error for empty restore")
	}
	if err := h.Restore([]*store.DB{board("a")}, 1); err == nil {
		t.Fatalf("expected error for out-of-range cursor")
	}
	if err := h.Restore([]*store.DB{board("a"), board("b"), board("c")}, 1); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if h.Len() != 2 || h.Cursor() != 0 {
		t.Fatalf("expected trimmed buffer with cursor 0; got len=%d cursor=%d", h.Len(), h.Cursor())
	}
	got, ok := h.Redo()
	if !ok || got.Tasks[0].ID != "c" {
		t.Fatalf("expected redo to c; got ok=%v %+v", ok, got)
	}
}
