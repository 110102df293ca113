package store

import (
	"strings"
	"testing"

	"github.com/Ngyama/idea-canvas/internal/model"
)

func TestNewRandomID_PrefixAndLength(t *testing.T) {
	id, err := newRandomID("task")
	if err != nil {
		t.Fatalf("newRandomID: %v", err)
	}
	if !strings.HasPrefix(id, "task-") {
		t.Fatalf("expected task prefix, got %q", id)
	}
	suffix := strings.TrimPrefix(id, "task-")
	if got, want := len(suffix), 8; got != want {
		t.Fatalf("expected suffix len %d, got %d (%q)", want, got, suffix)
	}
}

func TestNextID_AvoidsExistingIDs(t *testing.T) {
	db := &DB{Tasks: []model.Task{{ID: "task-1"}}, Categories: []model.Category{{ID: "cat-1"}}}
	seen := map[string]bool{"task-1": true, "cat-1": true}
	for i := 0; i < 50; i++ {
		id := db.nextID(taskIDPrefix)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		db.Tasks = append(db.Tasks, model.Task{ID: id})
	}
}
