package mutate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Ngyama/idea-canvas/internal/layout"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

func newBoard(t *testing.T, n int) (*store.DB, []string) {
	t.Helper()
	db := &store.DB{}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, db.CreateTask(model.Point{X: 100, Y: 100 + float64(i)*300}, ""))
	}
	return db, ids
}

func mustTask(t *testing.T, db *store.DB, id string) *model.Task {
	t.Helper()
	tk, ok := db.FindTask(id)
	if !ok {
		t.Fatalf("task %s not found", id)
	}
	return tk
}

func assertValid(t *testing.T, db *store.DB) {
	t.Helper()
	if err := db.Validate(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestAddChildRelation_PositionsChild(t *testing.T) {
	db, ids := newBoard(t, 2)
	a, b := ids[0], ids[1]

	res, err := AddChildRelation(db, b, a)
	if err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}

	ta, tb := mustTask(t, db, a), mustTask(t, db, b)
	if ta.ParentIDValue() != b {
		t.Fatalf("expected parent %s; got %q", b, ta.ParentIDValue())
	}
	if !reflect.DeepEqual(tb.ChildrenIDs, []string{a}) {
		t.Fatalf("expected children [%s]; got %v", a, tb.ChildrenIDs)
	}
	if want := layout.ChildPosition(tb.Position, tb.Size, 0); ta.Position != want {
		t.Fatalf("expected child at %+v; got %+v", want, ta.Position)
	}
	if tb.Style != model.StyleFor(model.TaskKindParent) || ta.Style != model.StyleFor(model.TaskKindChild) {
		t.Fatalf("expected parent/child styles; got parent=%+v child=%+v", tb.Style, ta.Style)
	}
	assertValid(t, db)
}

func TestAddChildRelation_Idempotent(t *testing.T) {
	db, ids := newBoard(t, 2)
	if _, err := AddChildRelation(db, ids[1], ids[0]); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	once := db.Clone()

	res, err := AddChildRelation(db, ids[1], ids[0])
	if err != nil {
		t.Fatalf("second AddChildRelation error: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected changed=false on repeat")
	}
	if !reflect.DeepEqual(once, db) {
		t.Fatalf("expected identical state after repeat")
	}
}

func TestAddChildRelation_RejectsCycles(t *testing.T) {
	db, ids := newBoard(t, 3)
	a, b, c := ids[0], ids[1], ids[2]
	if _, err := AddChildRelation(db, a, b); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	if _, err := AddChildRelation(db, b, c); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	before := db.Clone()

	// Immediate reversal.
	if _, err := AddChildRelation(db, b, a); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle; got %v", err)
	}
	// Longer chain a -> b -> c -> a.
	if _, err := AddChildRelation(db, c, a); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle; got %v", err)
	}
	if _, err := AddChildRelation(db, a, a); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle for self; got %v", err)
	}
	if !reflect.DeepEqual(before, db) {
		t.Fatalf("expected board untouched after rejected nesting")
	}
}

func TestAddChildRelation_ReparentClosesGap(t *testing.T) {
	db, ids := newBoard(t, 5)
	p1, p2 := ids[0], ids[1]
	for _, c := range ids[2:] {
		if _, err := AddChildRelation(db, p1, c); err != nil {
			t.Fatalf("AddChildRelation error: %v", err)
		}
	}

	if _, err := AddChildRelation(db, p2, ids[2]); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}

	tp1 := mustTask(t, db, p1)
	if !reflect.DeepEqual(tp1.ChildrenIDs, []string{ids[3], ids[4]}) {
		t.Fatalf("unexpected old parent children: %v", tp1.ChildrenIDs)
	}
	for i, cid := range tp1.ChildrenIDs {
		if got, want := mustTask(t, db, cid).Position, layout.ChildPosition(tp1.Position, tp1.Size, i); got != want {
			t.Fatalf("sibling %d: expected %+v; got %+v", i, want, got)
		}
	}
	assertValid(t, db)
}

func TestAddChildRelation_LeavesCategoryAndDissolves(t *testing.T) {
	db, ids := newBoard(t, 3)
	cid, err := db.CreateCategory([]string{ids[0], ids[1]})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}

	res, err := AddChildRelation(db, ids[2], ids[0])
	if err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	if res.EventPayload["categoryDissolved"] != true {
		t.Fatalf("expected dissolved category in payload; got %v", res.EventPayload)
	}
	if _, ok := db.FindCategory(cid); ok {
		t.Fatalf("expected category dissolved")
	}
	if mustTask(t, db, ids[1]).InCategory() {
		t.Fatalf("expected last member freed")
	}
	if mustTask(t, db, ids[0]).InCategory() {
		t.Fatalf("expected child to leave category")
	}
	assertValid(t, db)
}

func TestAddChildRelation_MovesGrandchildren(t *testing.T) {
	db, ids := newBoard(t, 3)
	a, b, c := ids[0], ids[1], ids[2]
	if _, err := AddChildRelation(db, b, c); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	if _, err := AddChildRelation(db, a, b); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}
	tb := mustTask(t, db, b)
	if got, want := mustTask(t, db, c).Position, layout.ChildPosition(tb.Position, tb.Size, 0); got != want {
		t.Fatalf("expected grandchild at %+v; got %+v", want, got)
	}
	assertValid(t, db)
}

func TestAddChildRelation_NotFound(t *testing.T) {
	db, ids := newBoard(t, 1)
	_, err := AddChildRelation(db, "task-missing", ids[0])
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "task-missing" {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestRemoveTaskFromParent_KeepsPosition(t *testing.T) {
	db, ids := newBoard(t, 4)
	p := ids[0]
	for _, c := range ids[1:] {
		if _, err := AddChildRelation(db, p, c); err != nil {
			t.Fatalf("AddChildRelation error: %v", err)
		}
	}
	pos := mustTask(t, db, ids[1]).Position

	res, err := RemoveTaskFromParent(db, ids[1])
	if err != nil || !res.Changed {
		t.Fatalf("RemoveTaskFromParent: changed=%v err=%v", res.Changed, err)
	}
	if got := mustTask(t, db, ids[1]); got.HasParent() || got.Position != pos {
		t.Fatalf("expected detached task in place; got %+v", got)
	}
	tp := mustTask(t, db, p)
	if got, want := mustTask(t, db, ids[2]).Position, layout.ChildPosition(tp.Position, tp.Size, 0); got != want {
		t.Fatalf("expected sibling moved up to %+v; got %+v", want, got)
	}

	res, err = RemoveTaskFromParent(db, ids[1])
	if err != nil || res.Changed {
		t.Fatalf("expected no-op for free task; changed=%v err=%v", res.Changed, err)
	}
	assertValid(t, db)
}

func TestRemoveTaskFromCategory_DissolvesAtOneMember(t *testing.T) {
	db, ids := newBoard(t, 2)
	cid, err := db.CreateCategory(ids)
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}

	res, err := RemoveTaskFromCategory(db, ids[0])
	if err != nil || !res.Changed {
		t.Fatalf("RemoveTaskFromCategory: changed=%v err=%v", res.Changed, err)
	}
	if _, ok := db.FindCategory(cid); ok {
		t.Fatalf("expected category dissolved")
	}
	if mustTask(t, db, ids[1]).CategoryID != nil {
		t.Fatalf("expected remaining member freed")
	}
	assertValid(t, db)
}

func TestRemoveTaskFromCategory_KeepsLargerCategory(t *testing.T) {
	db, ids := newBoard(t, 3)
	cid, err := db.CreateCategory(ids)
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}
	before := *mustTask(t, db, ids[2])

	if _, err := RemoveTaskFromCategory(db, ids[0]); err != nil {
		t.Fatalf("RemoveTaskFromCategory error: %v", err)
	}
	c, ok := db.FindCategory(cid)
	if !ok {
		t.Fatalf("expected category kept")
	}
	if !reflect.DeepEqual(c.TaskIDs, []string{ids[1], ids[2]}) {
		t.Fatalf("unexpected members: %v", c.TaskIDs)
	}
	if got := mustTask(t, db, ids[2]); got.Position != before.Position {
		t.Fatalf("expected remaining members untouched")
	}
	assertValid(t, db)
}

func TestAddTaskToCategory_LeavesParentAndOldCategory(t *testing.T) {
	db, ids := newBoard(t, 6)
	target, err := db.CreateCategory([]string{ids[0], ids[1]})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}
	old, err := db.CreateCategory([]string{ids[2], ids[3]})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}
	if _, err := AddChildRelation(db, ids[4], ids[5]); err != nil {
		t.Fatalf("AddChildRelation error: %v", err)
	}

	if _, err := AddTaskToCategory(db, ids[2], target); err != nil {
		t.Fatalf("AddTaskToCategory error: %v", err)
	}
	if _, ok := db.FindCategory(old); ok {
		t.Fatalf("expected old category dissolved")
	}

	if _, err := AddTaskToCategory(db, ids[5], target); err != nil {
		t.Fatalf("AddTaskToCategory error: %v", err)
	}
	child := mustTask(t, db, ids[5])
	if child.HasParent() || child.CategoryIDValue() != target {
		t.Fatalf("expected nested task moved into category; got %+v", child)
	}
	if len(mustTask(t, db, ids[4]).ChildrenIDs) != 0 {
		t.Fatalf("expected old parent to lose child")
	}
	c, _ := db.FindCategory(target)
	if !reflect.DeepEqual(c.TaskIDs, []string{ids[0], ids[1], ids[2], ids[5]}) {
		t.Fatalf("unexpected members: %v", c.TaskIDs)
	}

	res, err := AddTaskToCategory(db, ids[5], target)
	if err != nil || res.Changed {
		t.Fatalf("expected no-op when already a member; changed=%v err=%v", res.Changed, err)
	}
	assertValid(t, db)
}
