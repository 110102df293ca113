package canvas

import (
	"errors"
	"strings"

	"github.com/Ngyama/idea-canvas/internal/store"
)

var ErrNoEdit = errors.New("no edit in progress")

type editState struct {
	id       string
	category bool
	original string
}

// BeginEdit opens an in-place text edit on a task's content or a category's
// name and returns the current text.
func (s *Session) BeginEdit(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	id = strings.TrimSpace(id)
	if t, ok := s.db.FindTask(id); ok {
		s.edit = &editState{id: id, original: t.Content}
		return t.Content, nil
	}
	if c, ok := s.db.FindCategory(id); ok {
		s.edit = &editState{id: id, category: true, original: c.Name}
		return c.Name, nil
	}
	return "", s.miss("begin-edit", store.NotFoundError{Kind: "task", ID: id})
}

// Editing returns the id under edit, if any.
func (s *Session) Editing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return "", false
	}
	return s.edit.id, true
}

// CommitEdit applies text. Blank or unchanged text closes the edit without
// touching the board or history.
func (s *Session) CommitEdit(text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.edit
	if e == nil {
		return false, ErrNoEdit
	}
	s.edit = nil

	text = strings.TrimSpace(text)
	if text == "" || text == e.original {
		return false, nil
	}
	var (
		changed bool
		err     error
	)
	if e.category {
		changed, err = s.db.UpdateCategoryName(e.id, text)
	} else {
		changed, err = s.db.UpdateTaskContent(e.id, text)
	}
	if err != nil {
		return false, s.miss("commit-edit", err)
	}
	s.commit(changed)
	return changed, nil
}

// CancelEdit closes the edit; the prior text stays.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}
