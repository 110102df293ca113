package store

// Repair restores the board invariants on externally supplied state.
//
// Children lists are authoritative for nesting and category member lists for
// grouping: a back-reference that is not confirmed by the owning list is
// dropped, the first owner in creation order wins a contested id, nested
// tasks cannot be category members, cycles are cut at the edge that closes
// them, undersized categories dissolve, children are re-laid out and every
// task's style is re-derived from its final relationships.
func Repair(db *DB) {
	if db == nil {
		return
	}

	owner := map[string]string{}
	for i := range db.Tasks {
		p := &db.Tasks[i]
		kept := make([]string, 0, len(p.ChildrenIDs))
		for _, cid := range p.ChildrenIDs {
			if cid == p.ID || owner[cid] != "" {
				continue
			}
			if _, ok := db.FindTask(cid); !ok {
				continue
			}
			owner[cid] = p.ID
			kept = append(kept, cid)
		}
		p.ChildrenIDs = kept
	}
	for i := range db.Tasks {
		t := &db.Tasks[i]
		t.ParentID = nil
		if pid := owner[t.ID]; pid != "" {
			v := pid
			t.ParentID = &v
		}
	}

	for i := range db.Tasks {
		id := db.Tasks[i].ID
		if db.IsAncestor(id, id) {
			db.DetachFromParent(id)
		}
	}

	member := map[string]string{}
	for i := range db.Categories {
		c := &db.Categories[i]
		kept := make([]string, 0, len(c.TaskIDs))
		for _, tid := range c.TaskIDs {
			if member[tid] != "" {
				continue
			}
			t, ok := db.FindTask(tid)
			if !ok || t.HasParent() {
				continue
			}
			member[tid] = c.ID
			kept = append(kept, tid)
		}
		c.TaskIDs = kept
	}
	for i := range db.Tasks {
		t := &db.Tasks[i]
		t.CategoryID = nil
		if cid := member[t.ID]; cid != "" {
			v := cid
			t.CategoryID = &v
		}
	}

	undersized := []string{}
	for _, c := range db.Categories {
		if len(c.TaskIDs) <= 1 {
			undersized = append(undersized, c.ID)
		}
	}
	for _, id := range undersized {
		db.dissolveCategory(id)
	}

	for _, t := range db.TopLevelTasks() {
		db.RelayoutSubtree(t.ID)
	}

	for i := range db.Tasks {
		db.Restyle(db.Tasks[i].ID)
	}
}
