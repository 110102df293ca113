package store

import (
	"errors"
	"fmt"
	"math"

	"github.com/Ngyama/idea-canvas/internal/layout"
)

const layoutEpsilon = 1e-6

// Validate checks every board invariant and returns all violations joined,
// or nil for a consistent board.
func (db *DB) Validate() error {
	if db == nil {
		return nil
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	ids := map[string]bool{}
	for _, t := range db.Tasks {
		if ids[t.ID] {
			add("duplicate id %s", t.ID)
		}
		ids[t.ID] = true
	}
	for _, c := range db.Categories {
		if ids[c.ID] {
			add("duplicate id %s", c.ID)
		}
		ids[c.ID] = true
	}

	for i := range db.Tasks {
		t := &db.Tasks[i]
		if t.HasParent() && t.InCategory() {
			add("task %s has both parent %s and category %s", t.ID, t.ParentIDValue(), t.CategoryIDValue())
		}
		if t.HasParent() {
			p, ok := db.FindTask(t.ParentIDValue())
			switch {
			case !ok:
				add("task %s points at missing parent %s", t.ID, t.ParentIDValue())
			case !containsID(p.ChildrenIDs, t.ID):
				add("parent %s does not list child %s", p.ID, t.ID)
			}
			if db.IsAncestor(t.ID, t.ID) {
				add("task %s is its own ancestor", t.ID)
			}
		}
		seen := map[string]bool{}
		for idx, cid := range t.ChildrenIDs {
			if seen[cid] {
				add("task %s lists child %s twice", t.ID, cid)
			}
			seen[cid] = true
			c, ok := db.FindTask(cid)
			if !ok {
				add("task %s lists missing child %s", t.ID, cid)
				continue
			}
			if c.ParentIDValue() != t.ID {
				add("child %s of %s points at parent %q", cid, t.ID, c.ParentIDValue())
				continue
			}
			want := layout.ChildPosition(t.Position, t.Size, idx)
			if math.Abs(c.Position.X-want.X) > layoutEpsilon || math.Abs(c.Position.Y-want.Y) > layoutEpsilon {
				add("child %s is at %+v; layout puts it at %+v", cid, c.Position, want)
			}
		}
		if t.InCategory() {
			c, ok := db.FindCategory(t.CategoryIDValue())
			switch {
			case !ok:
				add("task %s points at missing category %s", t.ID, t.CategoryIDValue())
			case !c.HasMember(t.ID):
				add("category %s does not list member %s", c.ID, t.ID)
			}
		}
	}

	for _, c := range db.Categories {
		if len(c.TaskIDs) <= 1 {
			add("category %s has %d members", c.ID, len(c.TaskIDs))
		}
		seen := map[string]bool{}
		for _, tid := range c.TaskIDs {
			if seen[tid] {
				add("category %s lists %s twice", c.ID, tid)
			}
			seen[tid] = true
			t, ok := db.FindTask(tid)
			if !ok {
				add("category %s lists missing task %s", c.ID, tid)
				continue
			}
			if t.CategoryIDValue() != c.ID {
				add("member %s of %s points at category %q", tid, c.ID, t.CategoryIDValue())
			}
		}
	}

	return errors.Join(errs...)
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
