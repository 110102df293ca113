package model

import "slices"

const (
	DefaultTaskContent  = "New task"
	DefaultCategoryName = "Category"

	DefaultTaskWidth  = 240.0
	DefaultTaskHeight = 50.0
)

// Point is a board coordinate; y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a box's width and height in board units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the size describes a non-degenerate box.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// TaskStyle is the card palette, derived from the task's relationships.
type TaskStyle struct {
	BgColor     string `json:"bgColor"`
	TextColor   string `json:"textColor"`
	BorderColor string `json:"borderColor"`
}

type CategoryStyle struct {
	BorderColor string  `json:"borderColor"`
	BgColor     string  `json:"bgColor"`
	BorderWidth float64 `json:"borderWidth"`
}

// Task is a card on the board. ParentID and CategoryID are never both set.
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Position    Point     `json:"position"`
	Size        Size      `json:"size"`
	ParentID    *string   `json:"parentId"`
	CategoryID  *string   `json:"categoryId"`
	ChildrenIDs []string  `json:"childrenIds"`
	Style       TaskStyle `json:"style"`
}

// HasParent reports whether the task is nested under another task.
func (t *Task) HasParent() bool {
	return t != nil && t.ParentID != nil && *t.ParentID != ""
}

// InCategory reports whether the task is a category member.
func (t *Task) InCategory() bool {
	return t != nil && t.CategoryID != nil && *t.CategoryID != ""
}

func (t *Task) ParentIDValue() string {
	if t == nil || t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

func (t *Task) CategoryIDValue() string {
	if t == nil || t.CategoryID == nil {
		return ""
	}
	return *t.CategoryID
}

// Clone returns a deep copy; pointer fields and slices are not shared.
func (t Task) Clone() Task {
	out := t
	if t.ParentID != nil {
		v := *t.ParentID
		out.ParentID = &v
	}
	if t.CategoryID != nil {
		v := *t.CategoryID
		out.CategoryID = &v
	}
	out.ChildrenIDs = slices.Clone(t.ChildrenIDs)
	return out
}

// Category groups two or more top-level tasks inside a named box.
type Category struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	TaskIDs  []string      `json:"taskIds"`
	Position Point         `json:"position"`
	Size     Size          `json:"size"`
	Style    CategoryStyle `json:"style"`
}

func (c Category) Clone() Category {
	out := c
	out.TaskIDs = slices.Clone(c.TaskIDs)
	return out
}

// HasMember reports whether taskID is listed in the category.
func (c *Category) HasMember(taskID string) bool {
	if c == nil {
		return false
	}
	for _, id := range c.TaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

func StrPtr(s string) *string { return &s }
