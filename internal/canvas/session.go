// Package canvas owns one board for the lifetime of an editing session. It
// wraps the store, the relationship engine and the history buffer so that
// every discrete user action commits exactly one snapshot.
package canvas

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/history"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/mutate"
	"github.com/Ngyama/idea-canvas/internal/store"
)

// Session is safe for use from the UI goroutine plus readers such as the
// autosave loop; all access goes through mu.
type Session struct {
	mu   sync.Mutex
	db   *store.DB
	hist *history.History
	log  logrus.FieldLogger

	drag *dragState
	edit *editState
}

type Option func(*Session)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithHistoryCap(n int) Option {
	return func(s *Session) { s.hist = history.New(n) }
}

// New starts a session on db, which becomes history entry 0. db is copied;
// the caller keeps ownership of its value.
func New(db *store.DB, opts ...Option) *Session {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	s := &Session{
		db:   db.Clone(),
		hist: history.New(history.DefaultCap),
		log:  quiet,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hist.Reset(s.db)
	return s
}

// Resume starts a session from persisted history. The live board is the
// entry under cursor.
func Resume(entries []*store.DB, cursor int, opts ...Option) (*Session, error) {
	if len(entries) == 0 || cursor < 0 || cursor >= len(entries) {
		return nil, errors.New("resume: no usable history")
	}
	s := New(entries[cursor], opts...)
	if err := s.hist.Restore(entries, cursor); err != nil {
		return nil, err
	}
	if snap, ok := currentEntry(s.hist); ok {
		s.db = snap
	}
	return s, nil
}

func currentEntry(h *history.History) (*store.DB, bool) {
	entries := h.Entries()
	if h.Cursor() < 0 || h.Cursor() >= len(entries) {
		return nil, false
	}
	return entries[h.Cursor()], true
}

// Snapshot returns a deep copy of the live board. It never touches history.
func (s *Session) Snapshot() *store.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Clone()
}

// AllData is the export-shaped state of the board.
func (s *Session) AllData() *store.DB { return s.Snapshot() }

// History returns the persisted form of the undo buffer.
func (s *Session) History() ([]*store.DB, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Entries(), s.hist.Cursor()
}

func (s *Session) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.db.FindTask(id)
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

func (s *Session) Category(id string) (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.db.FindCategory(id)
	if !ok {
		return model.Category{}, false
	}
	return c.Clone(), true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// commit records the live board when changed is true. Callers hold mu.
func (s *Session) commit(changed bool) {
	if changed {
		s.hist.Push(s.db)
	}
}

// settle aborts any gesture in flight so discrete commands see a settled
// board. Callers hold mu.
func (s *Session) settle() {
	if s.drag != nil {
		s.db = s.drag.before
		s.drag = nil
	}
	s.edit = nil
}

// miss logs a referential miss and hands the error back.
func (s *Session) miss(op string, err error) error {
	if store.IsNotFound(err) {
		s.log.WithFields(logrus.Fields{"op": op}).WithError(err).Debug("no-op on unknown id")
	}
	return err
}

func (s *Session) CreateTask(pos model.Point, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	id := s.db.CreateTask(pos, content)
	s.commit(true)
	return id
}

func (s *Session) UpdateTaskContent(id, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	changed, err := s.db.UpdateTaskContent(id, content)
	if err != nil {
		return false, s.miss("update-task-content", err)
	}
	s.commit(changed)
	return changed, nil
}

// MoveTask places a task at pos as one discrete action. A nested task snaps
// back to its layout slot; a parent's subtree follows it.
func (s *Session) MoveTask(id string, pos model.Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	before := s.db.Clone()
	if _, err := s.db.UpdateTaskPosition(id, pos); err != nil {
		return false, s.miss("move-task", err)
	}
	s.settlePositions(id)
	changed := !reflect.DeepEqual(before, s.db)
	s.commit(changed)
	return changed, nil
}

// settlePositions re-applies the layout law around a task that was just
// moved by hand. Callers hold mu.
func (s *Session) settlePositions(id string) {
	t, ok := s.db.FindTask(id)
	if !ok {
		return
	}
	if t.HasParent() {
		s.db.RelayoutSubtree(t.ParentIDValue())
		return
	}
	s.db.RelayoutSubtree(id)
}

func (s *Session) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	changed, err := s.db.DeleteTask(id)
	if err != nil {
		return s.miss("delete-task", err)
	}
	s.commit(changed)
	return nil
}

func (s *Session) CreateCategory(taskIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	id, err := s.db.CreateCategory(taskIDs)
	if err != nil {
		return "", err
	}
	s.commit(true)
	return id, nil
}

func (s *Session) UpdateCategoryName(id, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	changed, err := s.db.UpdateCategoryName(id, name)
	if err != nil {
		return false, s.miss("update-category-name", err)
	}
	s.commit(changed)
	return changed, nil
}

// DragCategory moves a category and everything in it as one rigid body and
// commits once.
func (s *Session) DragCategory(id string, pos model.Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	changed, err := s.db.UpdateCategoryPosition(id, pos)
	if err != nil {
		return false, s.miss("drag-category", err)
	}
	s.commit(changed)
	return changed, nil
}

func (s *Session) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	changed, err := s.db.DeleteCategory(id)
	if err != nil {
		return s.miss("delete-category", err)
	}
	s.commit(changed)
	return nil
}

func (s *Session) AddChildRelation(parentID, childID string) (bool, error) {
	return s.apply("add-child", func(db *store.DB) (mutate.Result, error) {
		return mutate.AddChildRelation(db, parentID, childID)
	})
}

func (s *Session) RemoveTaskFromParent(taskID string) (bool, error) {
	return s.apply("remove-from-parent", func(db *store.DB) (mutate.Result, error) {
		return mutate.RemoveTaskFromParent(db, taskID)
	})
}

func (s *Session) RemoveTaskFromCategory(taskID string) (bool, error) {
	return s.apply("remove-from-category", func(db *store.DB) (mutate.Result, error) {
		return mutate.RemoveTaskFromCategory(db, taskID)
	})
}

func (s *Session) AddTaskToCategory(taskID, categoryID string) (bool, error) {
	return s.apply("add-to-category", func(db *store.DB) (mutate.Result, error) {
		return mutate.AddTaskToCategory(db, taskID, categoryID)
	})
}

func (s *Session) apply(op string, fn func(*store.DB) (mutate.Result, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	res, err := fn(s.db)
	if err != nil {
		if errors.Is(err, mutate.ErrCycle) {
			s.log.WithField("op", op).Info("nesting rejected: would create a cycle")
		}
		return false, s.miss(op, err)
	}
	if res.Changed {
		s.log.WithFields(logrus.Fields(res.EventPayload)).WithField("op", op).Debug("relationship changed")
	}
	s.commit(res.Changed)
	return res.Changed, nil
}

// Undo replaces the board with the previous snapshot. It reports false at
// the oldest entry.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	snap, ok := s.hist.Undo()
	if ok {
		s.db = snap
	}
	return ok
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	snap, ok := s.hist.Redo()
	if ok {
		s.db = snap
	}
	return ok
}

// ClearCanvas empties the board and starts a fresh history.
func (s *Session) ClearCanvas() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	s.db = &store.DB{}
	s.hist.Reset(s.db)
}

// LoadData replaces the board wholesale, repairing invariants, and starts a
// fresh history from it.
func (s *Session) LoadData(db *store.DB) {
	next := db.Clone()
	store.Repair(next)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	s.db = next
	s.hist.Reset(s.db)
}

// Import loads an exported payload. On error the live board is untouched.
func (s *Session) Import(b []byte) error {
	db, err := store.Import(b)
	if err != nil {
		s.log.WithError(err).Warn("import rejected")
		return err
	}
	s.LoadData(db)
	return nil
}

func (s *Session) Export(pretty bool) ([]byte, error) {
	return store.Export(s.Snapshot(), pretty)
}
