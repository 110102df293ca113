package store

import (
	"strings"

	"github.com/Ngyama/idea-canvas/internal/layout"
	"github.com/Ngyama/idea-canvas/internal/model"
)

// CreateTask adds a free task at pos and returns its id.
func (db *DB) CreateTask(pos model.Point, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		content = model.DefaultTaskContent
	}
	id := db.nextID(taskIDPrefix)
	db.Tasks = append(db.Tasks, model.Task{
		ID:          id,
		Content:     content,
		Position:    pos,
		Size:        model.Size{Width: model.DefaultTaskWidth, Height: model.DefaultTaskHeight},
		ChildrenIDs: []string{},
		Style:       model.StyleFor(model.TaskKindFree),
	})
	return id
}

// UpdateTaskContent replaces the task text. Empty text falls back to the
// placeholder. It reports whether anything changed.
func (db *DB) UpdateTaskContent(id, content string) (bool, error) {
	t, ok := db.FindTask(id)
	if !ok {
		return false, NotFoundError{Kind: "task", ID: id}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		content = model.DefaultTaskContent
	}
	if t.Content == content {
		return false, nil
	}
	t.Content = content
	return true, nil
}

// UpdateTaskPosition moves one task. Children and category bounds are not
// touched; callers cascade.
func (db *DB) UpdateTaskPosition(id string, pos model.Point) (bool, error) {
	t, ok := db.FindTask(id)
	if !ok {
		return false, NotFoundError{Kind: "task", ID: id}
	}
	if t.Position == pos {
		return false, nil
	}
	t.Position = pos
	return true, nil
}

// CreateCategory groups the listed tasks. Each task is first pulled out of
// any parent or category it belonged to; the bounding box is then computed
// from the tasks' geometry plus the category padding. Unknown ids are
// skipped.
func (db *DB) CreateCategory(taskIDs []string) (string, error) {
	ids := []string{}
	seen := map[string]bool{}
	for _, id := range taskIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := db.FindTask(id); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return "", ErrCategoryTooSmall
	}

	for _, id := range ids {
		db.DetachFromParent(id)
		db.DetachFromCategory(id)
	}

	rects := make([]layout.Rect, 0, len(ids))
	for _, id := range ids {
		t, _ := db.FindTask(id)
		rects = append(rects, layout.RectOf(t.Position, t.Size))
	}
	pos, size, _ := layout.CategoryBounds(rects)

	cid := db.nextID(categoryIDPrefix)
	db.Categories = append(db.Categories, model.Category{
		ID:       cid,
		Name:     model.DefaultCategoryName,
		TaskIDs:  ids,
		Position: pos,
		Size:     size,
		Style:    model.DefaultCategoryStyle(),
	})
	for _, id := range ids {
		t, _ := db.FindTask(id)
		t.CategoryID = model.StrPtr(cid)
		t.ParentID = nil
	}
	db.Restyle(ids...)
	return cid, nil
}

func (db *DB) UpdateCategoryName(id, name string) (bool, error) {
	c, ok := db.FindCategory(id)
	if !ok {
		return false, NotFoundError{Kind: "category", ID: id}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultCategoryName
	}
	if c.Name == name {
		return false, nil
	}
	c.Name = name
	return true, nil
}

// UpdateCategoryPosition moves the category box and translates every member
// (and each member's subtree) by the same delta.
func (db *DB) UpdateCategoryPosition(id string, pos model.Point) (bool, error) {
	c, ok := db.FindCategory(id)
	if !ok {
		return false, NotFoundError{Kind: "category", ID: id}
	}
	dx := pos.X - c.Position.X
	dy := pos.Y - c.Position.Y
	if dx == 0 && dy == 0 {
		return false, nil
	}
	c.Position = pos
	for _, tid := range c.TaskIDs {
		t, ok := db.FindTask(tid)
		if !ok {
			continue
		}
		t.Position = model.Point{X: t.Position.X + dx, Y: t.Position.Y + dy}
		db.RelayoutSubtree(tid)
	}
	return true, nil
}

// DeleteTask removes the task with all of its descendants. The task is
// detached from its parent (siblings close the gap) and from its category
// (which may dissolve).
func (db *DB) DeleteTask(id string) (bool, error) {
	if _, ok := db.FindTask(id); !ok {
		return false, NotFoundError{Kind: "task", ID: id}
	}
	db.DetachFromParent(id)
	db.DetachFromCategory(id)

	doomed := map[string]bool{id: true}
	for _, d := range db.Descendants(id) {
		doomed[d] = true
	}
	// Descendants are nested and therefore never category members, but an
	// imported board may still list them somewhere.
	for d := range doomed {
		if d != id {
			db.DetachFromCategory(d)
		}
	}
	db.removeTaskRecords(doomed)
	return true, nil
}

// DeleteCategory frees every member and drops the category. Members are not
// deleted.
func (db *DB) DeleteCategory(id string) (bool, error) {
	if _, ok := db.FindCategory(id); !ok {
		return false, NotFoundError{Kind: "category", ID: id}
	}
	db.dissolveCategory(id)
	return true, nil
}
