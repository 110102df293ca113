package mutate

import (
	"strings"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type Result struct {
	Changed      bool
	EventPayload map[string]any
}

// AddChildRelation nests childID under parentID.
//
// It is idempotent. The child leaves its old parent (whose remaining children
// close the gap) and its category (which may dissolve), is appended to the
// parent's children and placed by the layout function. Nesting under a
// descendant returns ErrCycle.
func AddChildRelation(db *store.DB, parentID, childID string) (Result, error) {
	parentID = strings.TrimSpace(parentID)
	childID = strings.TrimSpace(childID)
	if db == nil {
		return Result{}, nil
	}
	child, ok := db.FindTask(childID)
	if !ok {
		return Result{}, NotFoundError{Kind: "task", ID: childID}
	}
	if _, ok := db.FindTask(parentID); !ok {
		return Result{}, NotFoundError{Kind: "task", ID: parentID}
	}
	if child.ParentIDValue() == parentID {
		return Result{}, nil
	}
	if parentID == childID || db.IsAncestor(childID, parentID) {
		return Result{}, ErrCycle
	}

	oldParent := db.DetachFromParent(childID)
	oldCategory, dissolved := db.DetachFromCategory(childID)

	parent, _ := db.FindTask(parentID)
	child, _ = db.FindTask(childID)
	parent.ChildrenIDs = append(parent.ChildrenIDs, childID)
	child.ParentID = model.StrPtr(parentID)
	child.CategoryID = nil
	db.RelayoutSubtree(parentID)
	db.Restyle(childID, parentID)

	payload := map[string]any{
		"parentId": parentID,
		"childId":  childID,
		"index":    len(parent.ChildrenIDs) - 1,
	}
	if oldParent != "" {
		payload["fromParentId"] = oldParent
	}
	if oldCategory != "" {
		payload["fromCategoryId"] = oldCategory
		payload["categoryDissolved"] = dissolved
	}
	return Result{Changed: true, EventPayload: payload}, nil
}

// RemoveTaskFromParent un-nests taskID. The task stays where it is drawn;
// the remaining siblings are re-laid out by index.
func RemoveTaskFromParent(db *store.DB, taskID string) (Result, error) {
	taskID = strings.TrimSpace(taskID)
	if db == nil {
		return Result{}, nil
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return Result{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !t.HasParent() {
		return Result{}, nil
	}
	pid := db.DetachFromParent(taskID)
	return Result{
		Changed:      true,
		EventPayload: map[string]any{"taskId": taskID, "fromParentId": pid},
	}, nil
}

// RemoveTaskFromCategory drops taskID from its category, dissolving the
// category when at most one member would remain.
func RemoveTaskFromCategory(db *store.DB, taskID string) (Result, error) {
	taskID = strings.TrimSpace(taskID)
	if db == nil {
		return Result{}, nil
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return Result{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !t.InCategory() {
		return Result{}, nil
	}
	cid, dissolved := db.DetachFromCategory(taskID)
	return Result{
		Changed: true,
		EventPayload: map[string]any{
			"taskId":            taskID,
			"fromCategoryId":    cid,
			"categoryDissolved": dissolved,
		},
	}, nil
}

// AddTaskToCategory moves taskID into categoryID. A task cannot be grouped
// and nested at once, so it also leaves its parent.
func AddTaskToCategory(db *store.DB, taskID, categoryID string) (Result, error) {
	taskID = strings.TrimSpace(taskID)
	categoryID = strings.TrimSpace(categoryID)
	if db == nil {
		return Result{}, nil
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return Result{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if _, ok := db.FindCategory(categoryID); !ok {
		return Result{}, NotFoundError{Kind: "category", ID: categoryID}
	}
	if t.CategoryIDValue() == categoryID {
		return Result{}, nil
	}

	payload := map[string]any{"taskId": taskID, "categoryId": categoryID}
	if t.InCategory() {
		old, dissolved := db.DetachFromCategory(taskID)
		payload["fromCategoryId"] = old
		payload["categoryDissolved"] = dissolved
	}
	if pid := db.DetachFromParent(taskID); pid != "" {
		payload["fromParentId"] = pid
	}

	c, _ := db.FindCategory(categoryID)
	if !c.HasMember(taskID) {
		c.TaskIDs = append(c.TaskIDs, taskID)
	}
	t, _ = db.FindTask(taskID)
	t.CategoryID = model.StrPtr(categoryID)
	t.ParentID = nil
	return Result{Changed: true, EventPayload: payload}, nil
}
