package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ngyama/idea-canvas/internal/config"
	"github.com/Ngyama/idea-canvas/internal/model"
)

const stateDirName = ".idea-canvas"

// DB is the canonical board state: every task and category, kept in creation
// order so enumeration (drop-zone resolution, export) is deterministic.
//
// Relationship fields are plain id references; DB is their sole owner.
type DB struct {
	Tasks      []model.Task
	Categories []model.Category
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, stateDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// BoardDir returns the state dir of a named board under the global config dir.
func BoardDir(name string) (string, error) {
	name, err := config.NormalizeBoardName(name)
	if err != nil {
		return "", err
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "boards", name), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Load() (*DB, error) {
	st, err := s.LoadSession(context.Background())
	if err != nil {
		return nil, err
	}
	return st.DB, nil
}

func (db *DB) FindTask(id string) (*model.Task, bool) {
	if db == nil {
		return nil, false
	}
	id = strings.TrimSpace(id)
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindCategory(id string) (*model.Category, bool) {
	if db == nil {
		return nil, false
	}
	id = strings.TrimSpace(id)
	for i := range db.Categories {
		if db.Categories[i].ID == id {
			return &db.Categories[i], true
		}
	}
	return nil, false
}

// ChildrenOf returns the children of parentID in layout order. Dangling ids
// in the children list are skipped.
func (db *DB) ChildrenOf(parentID string) []*model.Task {
	p, ok := db.FindTask(parentID)
	if !ok {
		return nil
	}
	out := make([]*model.Task, 0, len(p.ChildrenIDs))
	for _, cid := range p.ChildrenIDs {
		if c, ok := db.FindTask(cid); ok {
			out = append(out, c)
		}
	}
	return out
}

// TopLevelTasks returns every task without a parent, in creation order.
func (db *DB) TopLevelTasks() []*model.Task {
	if db == nil {
		return nil
	}
	out := []*model.Task{}
	for i := range db.Tasks {
		if !db.Tasks[i].HasParent() {
			out = append(out, &db.Tasks[i])
		}
	}
	return out
}

// Descendants returns every transitive child of rootID (excluding rootID),
// breadth first. A corrupt graph with a cycle terminates because each id is
// visited once.
func (db *DB) Descendants(rootID string) []string {
	seen := map[string]bool{rootID: true}
	out := []string{}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		t, ok := db.FindTask(id)
		if !ok {
			continue
		}
		for _, cid := range t.ChildrenIDs {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			out = append(out, cid)
			queue = append(queue, cid)
		}
	}
	return out
}

// IsAncestor reports whether ancestorID appears on the parent chain of taskID.
func (db *DB) IsAncestor(ancestorID, taskID string) bool {
	seen := map[string]bool{}
	cur, ok := db.FindTask(taskID)
	for ok && cur.HasParent() {
		pid := cur.ParentIDValue()
		if pid == ancestorID {
			return true
		}
		if seen[pid] {
			return false
		}
		seen[pid] = true
		cur, ok = db.FindTask(pid)
	}
	return false
}

// Clone returns a deep copy suitable for history snapshots.
func (db *DB) Clone() *DB {
	if db == nil {
		return &DB{}
	}
	out := &DB{}
	if db.Tasks != nil {
		out.Tasks = make([]model.Task, len(db.Tasks))
		for i := range db.Tasks {
			out.Tasks[i] = db.Tasks[i].Clone()
		}
	}
	if db.Categories != nil {
		out.Categories = make([]model.Category, len(db.Categories))
		for i := range db.Categories {
			out.Categories[i] = db.Categories[i].Clone()
		}
	}
	return out
}

// Empty reports whether the board holds no tasks and no categories.
func (db *DB) Empty() bool {
	return db == nil || (len(db.Tasks) == 0 && len(db.Categories) == 0)
}

func (db *DB) removeTaskRecords(ids map[string]bool) {
	kept := db.Tasks[:0]
	for _, t := range db.Tasks {
		if ids[t.ID] {
			continue
		}
		kept = append(kept, t)
	}
	db.Tasks = kept
}

func (db *DB) removeCategoryRecord(id string) {
	kept := db.Categories[:0]
	for _, c := range db.Categories {
		if c.ID == id {
			continue
		}
		kept = append(kept, c)
	}
	db.Categories = kept
}

func removeID(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, x := range ids {
		if x == id {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out, removed
}
