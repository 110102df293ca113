package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Ngyama/idea-canvas/internal/model"
)

// Export encodes the board in the interchange shape
//
//	{"tasks": {"<id>": {...}}, "categories": {"<id>": {...}}}
//
// Object keys are written in creation order so Import restores the same
// enumeration order.
func Export(db *DB, pretty bool) ([]byte, error) {
	if db == nil {
		db = &DB{}
	}
	var buf bytes.Buffer
	buf.WriteString(`{"tasks":{`)
	for i, t := range db.Tasks {
		if i > 0 {
			buf.WriteByte(',')
		}
		if t.ChildrenIDs == nil {
			t.ChildrenIDs = []string{}
		}
		if err := writeEntry(&buf, t.ID, t); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`},"categories":{`)
	for i, c := range db.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
		}
		if err := writeEntry(&buf, c.ID, c); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)

	if !pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(b)
	return nil
}

type wireTask struct {
	ID          string           `json:"id"`
	Content     string           `json:"content"`
	Position    *model.Point     `json:"position"`
	Size        *model.Size      `json:"size"`
	ParentID    *string          `json:"parentId"`
	CategoryID  *string          `json:"categoryId"`
	ChildrenIDs []string         `json:"childrenIds"`
	Style       *model.TaskStyle `json:"style"`
}

type wireCategory struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	TaskIDs  []string             `json:"taskIds"`
	Position *model.Point         `json:"position"`
	Size     *model.Size          `json:"size"`
	Style    *model.CategoryStyle `json:"style"`
}

// Import decodes an exported board. Structural problems (not JSON, wrong
// types) are reported as *ImportError. Inconsistent references are repaired
// rather than rejected, see Repair.
func Import(b []byte) (*DB, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, &ImportError{Reason: "payload is not a JSON object", Err: err}
	}
	if top == nil {
		return nil, &ImportError{Reason: "payload is null"}
	}

	taskKeys, taskRaw, err := decodeOrderedObject(top["tasks"])
	if err != nil {
		return nil, &ImportError{Reason: `"tasks" must be an object`, Err: err}
	}
	catKeys, catRaw, err := decodeOrderedObject(top["categories"])
	if err != nil {
		return nil, &ImportError{Reason: `"categories" must be an object`, Err: err}
	}

	db := &DB{}
	seen := map[string]bool{}

	for _, key := range taskKeys {
		var w wireTask
		if err := json.Unmarshal(taskRaw[key], &w); err != nil {
			return nil, &ImportError{Reason: fmt.Sprintf("task %q", key), Err: err}
		}
		id := strings.TrimSpace(w.ID)
		if id == "" {
			id = key
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		db.Tasks = append(db.Tasks, normalizeTask(id, w))
	}
	for _, key := range catKeys {
		var w wireCategory
		if err := json.Unmarshal(catRaw[key], &w); err != nil {
			return nil, &ImportError{Reason: fmt.Sprintf("category %q", key), Err: err}
		}
		id := strings.TrimSpace(w.ID)
		if id == "" {
			id = key
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		db.Categories = append(db.Categories, normalizeCategory(id, w))
	}

	Repair(db)
	return db, nil
}

func normalizeTask(id string, w wireTask) model.Task {
	t := model.Task{
		ID:          id,
		Content:     strings.TrimSpace(w.Content),
		Size:        model.Size{Width: model.DefaultTaskWidth, Height: model.DefaultTaskHeight},
		ParentID:    nonEmpty(w.ParentID),
		CategoryID:  nonEmpty(w.CategoryID),
		ChildrenIDs: append([]string{}, w.ChildrenIDs...),
	}
	if t.Content == "" {
		t.Content = model.DefaultTaskContent
	}
	if w.Position != nil {
		t.Position = *w.Position
	}
	if w.Size != nil && w.Size.Valid() {
		t.Size = *w.Size
	}
	if w.Style != nil {
		t.Style = *w.Style
	} else {
		t.Style = model.StyleFor(model.TaskKindFree)
	}
	return t
}

func normalizeCategory(id string, w wireCategory) model.Category {
	c := model.Category{
		ID:      id,
		Name:    strings.TrimSpace(w.Name),
		TaskIDs: append([]string{}, w.TaskIDs...),
		Style:   model.DefaultCategoryStyle(),
	}
	if c.Name == "" {
		c.Name = model.DefaultCategoryName
	}
	if w.Position != nil {
		c.Position = *w.Position
	}
	if w.Size != nil {
		c.Size = *w.Size
	}
	if w.Style != nil {
		c.Style = *w.Style
	}
	return c
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// decodeOrderedObject returns the keys of a JSON object in document order.
// A missing or null value decodes as an empty object.
func decodeOrderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	values := map[string]json.RawMessage{}
	if isNullOrEmpty(raw) {
		return nil, values, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected object")
	}
	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("expected object key")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
