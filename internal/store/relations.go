package store

import (
	"github.com/Ngyama/idea-canvas/internal/layout"
	"github.com/Ngyama/idea-canvas/internal/model"
)

// RelayoutSubtree places every descendant of rootID with layout.ChildPosition,
// level by level, so a moved parent drags its whole subtree along.
func (db *DB) RelayoutSubtree(rootID string) {
	seen := map[string]bool{}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true

		p, ok := db.FindTask(id)
		if !ok {
			continue
		}
		for i, cid := range p.ChildrenIDs {
			c, ok := db.FindTask(cid)
			if !ok {
				continue
			}
			c.Position = layout.ChildPosition(p.Position, p.Size, i)
			stack = append(stack, cid)
		}
	}
}

// Restyle re-derives the presentation style of the given tasks.
func (db *DB) Restyle(ids ...string) {
	for _, id := range ids {
		if t, ok := db.FindTask(id); ok {
			t.Style = model.StyleFor(model.KindOf(t))
		}
	}
}

// DetachFromParent removes taskID from its parent's children and closes the
// gap by re-laying out the remaining siblings. The detached task keeps its
// current position. It returns the old parent id, or "" when the task had
// no parent.
func (db *DB) DetachFromParent(taskID string) string {
	t, ok := db.FindTask(taskID)
	if !ok || !t.HasParent() {
		return ""
	}
	pid := t.ParentIDValue()
	t.ParentID = nil

	if p, ok := db.FindTask(pid); ok {
		p.ChildrenIDs, _ = removeID(p.ChildrenIDs, taskID)
		db.RelayoutSubtree(pid)
	}
	db.Restyle(taskID, pid)
	return pid
}

// DetachFromCategory removes taskID from its category. A category left with
// one member or none is dissolved and its last member freed.
func (db *DB) DetachFromCategory(taskID string) (categoryID string, dissolved bool) {
	t, ok := db.FindTask(taskID)
	if !ok || !t.InCategory() {
		return "", false
	}
	categoryID = t.CategoryIDValue()
	t.CategoryID = nil

	c, ok := db.FindCategory(categoryID)
	if !ok {
		return categoryID, false
	}
	c.TaskIDs, _ = removeID(c.TaskIDs, taskID)
	if len(c.TaskIDs) <= 1 {
		db.dissolveCategory(categoryID)
		return categoryID, true
	}
	return categoryID, false
}

// dissolveCategory frees every member still pointing at the category and
// drops the record. Member tasks survive.
func (db *DB) dissolveCategory(categoryID string) {
	c, ok := db.FindCategory(categoryID)
	if !ok {
		return
	}
	for _, tid := range c.TaskIDs {
		if t, ok := db.FindTask(tid); ok && t.CategoryIDValue() == categoryID {
			t.CategoryID = nil
		}
	}
	db.removeCategoryRecord(categoryID)
}
