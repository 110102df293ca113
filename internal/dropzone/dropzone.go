// Package dropzone classifies where a dragged task is dropped. Everything
// here is read-only over the board so it can run on every pointer move.
package dropzone

import (
	"math"

	"github.com/Ngyama/idea-canvas/internal/layout"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type Kind string

const (
	Move           Kind = "MOVE"
	AddChild       Kind = "ADD_CHILD"
	CreateCategory Kind = "CREATE_CATEGORY"
	AddToCategory  Kind = "ADD_TO_CATEGORY"
)

const (
	// ChildZoneDepth is how far below a task the child drop zone reaches.
	ChildZoneDepth = 80.0
	// ChildZoneSlack widens the child zone by this fraction of the target
	// width on both sides.
	ChildZoneSlack = 0.2

	CategoryZoneMin = 20.0
	CategoryZoneMax = 80.0

	// DragThreshold is the pointer travel a gesture needs before drag end
	// may form a relationship.
	DragThreshold = 30.0
	// ParentExitTolerance is how far a child may leave its parent's box
	// and stay nested.
	ParentExitTolerance = 50.0
)

// Preview carries what a renderer needs to highlight a pending action.
type Preview struct {
	ParentID   string      `json:"parentId,omitempty"`
	ChildID    string      `json:"childId,omitempty"`
	ParentPos  model.Point `json:"parentPos"`
	ParentSize model.Size  `json:"parentSize"`
	TaskIDs    []string    `json:"taskIds,omitempty"`
	CategoryID string      `json:"categoryId,omitempty"`
	TaskID     string      `json:"taskId,omitempty"`
}

type Action struct {
	Kind     Kind     `json:"type"`
	TargetID string   `json:"targetId,omitempty"`
	Preview  *Preview `json:"preview,omitempty"`
}

func (a Action) IsMove() bool { return a.Kind == "" || a.Kind == Move }

var moveAction = Action{Kind: Move}

// ClassifyTask reports what dropping dragged with the pointer at p would do
// to target. Incomplete geometry is never a target.
func ClassifyTask(dragged, target *model.Task, p model.Point) Action {
	if dragged == nil || target == nil || dragged.ID == target.ID {
		return moveAction
	}
	if !target.Size.Valid() {
		return moveAction
	}
	tx, ty := target.Position.X, target.Position.Y
	w, h := target.Size.Width, target.Size.Height

	below := p.Y > ty+h && p.Y <= ty+h+ChildZoneDepth
	inRange := p.X >= tx-w*ChildZoneSlack && p.X <= tx+w*(1+ChildZoneSlack)
	if below && inRange {
		// Re-nesting requires an explicit drag-out first.
		if target.ParentIDValue() == dragged.ID || dragged.HasParent() {
			return moveAction
		}
		return Action{
			Kind:     AddChild,
			TargetID: target.ID,
			Preview: &Preview{
				ParentID:   target.ID,
				ChildID:    dragged.ID,
				ParentPos:  target.Position,
				ParentSize: target.Size,
			},
		}
	}

	above := ty - p.Y
	horizontal := math.Abs(p.X - (tx + w/2))
	if above > CategoryZoneMin && above < CategoryZoneMax && horizontal < w {
		return Action{
			Kind:     CreateCategory,
			TargetID: target.ID,
			Preview:  &Preview{TaskIDs: []string{dragged.ID, target.ID}},
		}
	}
	return moveAction
}

// ClassifyCategory reports ADD_TO_CATEGORY when p lies inside c (edges
// included) and dragged is not already a member.
func ClassifyCategory(dragged *model.Task, c *model.Category, p model.Point) Action {
	if dragged == nil || c == nil || dragged.ID == "" {
		return moveAction
	}
	box := layout.RectOf(c.Position, c.Size)
	if !box.Valid() || !box.Contains(p) {
		return moveAction
	}
	if dragged.CategoryIDValue() == c.ID {
		return moveAction
	}
	return Action{
		Kind:     AddToCategory,
		TargetID: c.ID,
		Preview:  &Preview{CategoryID: c.ID, TaskID: dragged.ID},
	}
}

// Resolve picks the action for a drop at p. Every category is tried before
// any task; within each pass the first qualifying candidate in creation
// order wins. Only top-level tasks are task targets.
func Resolve(db *store.DB, draggedID string, p model.Point) Action {
	dragged, ok := db.FindTask(draggedID)
	if !ok {
		return moveAction
	}
	for i := range db.Categories {
		if a := ClassifyCategory(dragged, &db.Categories[i], p); !a.IsMove() {
			return a
		}
	}
	for _, t := range db.TopLevelTasks() {
		if t.ID == dragged.ID {
			continue
		}
		if a := ClassifyTask(dragged, t, p); !a.IsMove() {
			return a
		}
	}
	return moveAction
}

// Gesture is a finished drag as seen by the pointer.
type Gesture struct {
	TaskID string
	// Start and End are pointer positions at drag start and release.
	Start model.Point
	End   model.Point
	// Selected is the number of tasks moving together; zero counts as one.
	Selected int
}

// Displacement is the straight-line pointer travel of the gesture.
func (g Gesture) Displacement() float64 {
	return math.Hypot(g.End.X-g.Start.X, g.End.Y-g.Start.Y)
}

// Finalize applies the drag-end policy: group drags and short jitters are
// plain moves, anything else resolves at the release point.
func Finalize(db *store.DB, g Gesture) Action {
	if g.Selected > 1 {
		return moveAction
	}
	if g.Displacement() <= DragThreshold {
		return moveAction
	}
	return Resolve(db, g.TaskID, g.End)
}

// ExitParent reports whether a nested task dropped at pos has left its
// parent's box by more than ParentExitTolerance on any side.
func ExitParent(db *store.DB, taskID string, pos model.Point) bool {
	t, ok := db.FindTask(taskID)
	if !ok || !t.HasParent() {
		return false
	}
	p, ok := db.FindTask(t.ParentIDValue())
	if !ok || !p.Size.Valid() {
		return false
	}
	return !layout.RectOf(p.Position, p.Size).Expand(ParentExitTolerance).ContainsRect(layout.RectOf(pos, t.Size))
}

// ExitCategory reports whether a member dropped at pos is no longer fully
// inside its category's box.
func ExitCategory(db *store.DB, taskID string, pos model.Point) bool {
	t, ok := db.FindTask(taskID)
	if !ok || !t.InCategory() {
		return false
	}
	c, ok := db.FindCategory(t.CategoryIDValue())
	if !ok || !c.Size.Valid() {
		return false
	}
	return !layout.RectOf(c.Position, c.Size).ContainsRect(layout.RectOf(pos, t.Size))
}
