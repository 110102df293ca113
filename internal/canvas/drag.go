package canvas

import (
	"errors"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/dropzone"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/mutate"
	"github.com/Ngyama/idea-canvas/internal/store"
)

var ErrNoDrag = errors.New("no drag in progress")

// Exit names the containment a drop pulled a task out of.
type Exit string

const (
	ExitNone     Exit = ""
	ExitParent   Exit = "parent"
	ExitCategory Exit = "category"
)

// DropResult describes what a finished drag did.
type DropResult struct {
	Action dropzone.Action `json:"action"`
	Exit   Exit            `json:"exit,omitempty"`
	// CategoryID is set when the drop created a category.
	CategoryID string `json:"categoryId,omitempty"`
	Committed  bool   `json:"committed"`
}

type dragState struct {
	primary string
	// selection holds every task moving with the pointer, primary first.
	selection    []string
	pointerStart model.Point
	// starts holds the pre-drag position of every moving task, followers
	// (descendants of the selection) included.
	starts  map[string]model.Point
	order   []string
	before  *store.DB
	preview dropzone.Action
}

// BeginDrag starts a gesture on taskID with the pointer at p. Extra ids in
// selection move along by the same delta.
func (s *Session) BeginDrag(taskID string, p model.Point, selection ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()

	taskID = strings.TrimSpace(taskID)
	if _, ok := s.db.FindTask(taskID); !ok {
		return s.miss("begin-drag", store.NotFoundError{Kind: "task", ID: taskID})
	}
	d := &dragState{
		primary:      taskID,
		selection:    []string{taskID},
		pointerStart: p,
		starts:       map[string]model.Point{},
		before:       s.db.Clone(),
		preview:      dropzone.Action{Kind: dropzone.Move},
	}
	for _, id := range selection {
		id = strings.TrimSpace(id)
		if id == "" || id == taskID || containsID(d.selection, id) {
			continue
		}
		if _, ok := s.db.FindTask(id); ok {
			d.selection = append(d.selection, id)
		}
	}
	for _, id := range d.selection {
		d.track(s.db, id)
		for _, desc := range s.db.Descendants(id) {
			d.track(s.db, desc)
		}
	}
	s.drag = d
	return nil
}

func (d *dragState) track(db *store.DB, id string) {
	if _, seen := d.starts[id]; seen {
		return
	}
	if t, ok := db.FindTask(id); ok {
		d.starts[id] = t.Position
		d.order = append(d.order, id)
	}
}

func (d *dragState) gesture(p model.Point) dropzone.Gesture {
	return dropzone.Gesture{
		TaskID:   d.primary,
		Start:    d.pointerStart,
		End:      p,
		Selected: len(d.selection),
	}
}

// dropPos is where the primary task lands for pointer p.
func (d *dragState) dropPos(p model.Point) model.Point {
	start := d.starts[d.primary]
	return model.Point{
		X: start.X + p.X - d.pointerStart.X,
		Y: start.Y + p.Y - d.pointerStart.Y,
	}
}

// Dragging reports whether a gesture is in flight.
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag != nil
}

// DragMove updates positions for an intermediate pointer position and
// returns the preview classification. Nothing is committed.
func (s *Session) DragMove(p model.Point) (dropzone.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drag
	if d == nil {
		return dropzone.Action{Kind: dropzone.Move}, ErrNoDrag
	}
	dx, dy := p.X-d.pointerStart.X, p.Y-d.pointerStart.Y
	for _, id := range d.order {
		t, ok := s.db.FindTask(id)
		if !ok {
			// Deleted mid-gesture.
			continue
		}
		start := d.starts[id]
		t.Position = model.Point{X: start.X + dx, Y: start.Y + dy}
	}
	if len(d.selection) > 1 {
		d.preview = dropzone.Action{Kind: dropzone.Move}
	} else {
		d.preview = dropzone.Resolve(s.db, d.primary, p)
	}
	return d.preview, nil
}

// Preview returns the classification of the last DragMove.
func (s *Session) Preview() (dropzone.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return dropzone.Action{}, false
	}
	return s.drag.preview, true
}

// CancelDrag puts every moved task back where it started.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != nil {
		s.db = s.drag.before
		s.drag = nil
	}
}

// EndDrag finishes the gesture with the pointer released at p. Containment
// exits are checked first and end the gesture on their own; otherwise the
// drop is classified and dispatched. At most one snapshot is committed.
func (s *Session) EndDrag(p model.Point) (DropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drag
	if d == nil {
		return DropResult{Action: dropzone.Action{Kind: dropzone.Move}}, ErrNoDrag
	}
	s.drag = nil

	// Replay the gesture on the pre-drag board so the drop sees settled
	// relationships with the live positions.
	s.db = d.before.Clone()
	dx, dy := p.X-d.pointerStart.X, p.Y-d.pointerStart.Y
	for _, id := range d.order {
		if t, ok := s.db.FindTask(id); ok {
			start := d.starts[id]
			t.Position = model.Point{X: start.X + dx, Y: start.Y + dy}
		}
	}

	var res DropResult
	if len(d.selection) > 1 {
		res = s.dropGroup(d)
	} else {
		res = s.dropSingle(d, p)
	}

	res.Committed = !reflect.DeepEqual(d.before, s.db)
	s.commit(res.Committed)
	s.log.WithFields(logrus.Fields{
		"task":      d.primary,
		"action":    res.Action.Kind,
		"exit":      res.Exit,
		"committed": res.Committed,
	}).Debug("drag finished")
	return res, nil
}

func (s *Session) dropSingle(d *dragState, p model.Point) DropResult {
	id := d.primary
	if _, ok := s.db.FindTask(id); !ok {
		return DropResult{Action: dropzone.Action{Kind: dropzone.Move}}
	}
	pos := d.dropPos(p)
	move := dropzone.Action{Kind: dropzone.Move}

	if dropzone.ExitParent(s.db, id, pos) {
		s.db.DetachFromParent(id)
		s.place(id, pos)
		return DropResult{Action: move, Exit: ExitParent}
	}
	if dropzone.ExitCategory(s.db, id, pos) {
		s.db.DetachFromCategory(id)
		s.place(id, pos)
		return DropResult{Action: move, Exit: ExitCategory}
	}

	action := dropzone.Finalize(s.db, d.gesture(p))
	switch action.Kind {
	case dropzone.AddChild:
		if _, err := mutate.AddChildRelation(s.db, action.TargetID, id); err != nil {
			s.log.WithError(err).WithField("task", id).Info("drop fell back to move")
			s.place(id, pos)
			return DropResult{Action: move}
		}
		return DropResult{Action: action}
	case dropzone.CreateCategory:
		s.place(id, pos)
		cid, err := s.db.CreateCategory([]string{id, action.TargetID})
		if err != nil {
			s.log.WithError(err).WithField("task", id).Info("drop fell back to move")
			return DropResult{Action: move}
		}
		return DropResult{Action: action, CategoryID: cid}
	case dropzone.AddToCategory:
		s.place(id, pos)
		if _, err := mutate.AddTaskToCategory(s.db, id, action.TargetID); err != nil {
			s.log.WithError(err).WithField("task", id).Info("drop fell back to move")
			return DropResult{Action: move}
		}
		s.settlePositions(id)
		return DropResult{Action: action}
	default:
		s.place(id, pos)
		return DropResult{Action: move}
	}
}

// dropGroup settles a multi-selection drag. Group drags never form
// relationships, but each task still honours the containment exits unless
// its parent moved with it.
func (s *Session) dropGroup(d *dragState) DropResult {
	for _, id := range d.selection {
		t, ok := s.db.FindTask(id)
		if !ok {
			continue
		}
		pos := t.Position
		_, parentMoved := d.starts[t.ParentIDValue()]
		switch {
		case parentMoved:
			// Moving with its parent keeps the relation.
		case dropzone.ExitParent(s.db, id, pos):
			s.db.DetachFromParent(id)
		case dropzone.ExitCategory(s.db, id, pos):
			s.db.DetachFromCategory(id)
		}
		s.place(id, pos)
	}
	return DropResult{Action: dropzone.Action{Kind: dropzone.Move}}
}

// place puts a task at pos and re-applies the layout law around it.
func (s *Session) place(id string, pos model.Point) {
	if t, ok := s.db.FindTask(id); ok {
		t.Position = pos
	}
	s.settlePositions(id)
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
