package publish

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type RenderOptions struct {
	// Title is the level-1 heading; defaults to "Board".
	Title   string
	ShowIDs bool
}

// RenderBoardMarkdown renders the board as an outline: one section per
// category (members and their subtrees as nested lists), then the free
// top-level tasks. Everything follows creation order; children follow their
// parent's display order.
func RenderBoardMarkdown(db *store.DB, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Board"
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + title)

	if db.Empty() {
		writeLn("")
		writeLn("_Empty board._")
		return buf.String(), nil
	}

	for _, c := range db.Categories {
		name := oneLine(c.Name)
		if name == "" {
			name = model.DefaultCategoryName
		}
		if opt.ShowIDs {
			name += " `" + c.ID + "`"
		}
		writeLn("")
		writeLn("## " + name)
		writeLn("")
		for _, id := range c.TaskIDs {
			writeTree(&buf, db, id, opt)
		}
	}

	var free []string
	for _, t := range db.TopLevelTasks() {
		if !t.InCategory() {
			free = append(free, t.ID)
		}
	}
	if len(free) > 0 {
		writeLn("")
		if len(db.Categories) > 0 {
			writeLn("## Ungrouped")
			writeLn("")
		}
		for _, id := range free {
			writeTree(&buf, db, id, opt)
		}
	}
	return buf.String(), nil
}

type frame struct {
	id    string
	depth int
}

// writeTree writes rootID and its descendants as a nested list, walking the
// tree with an explicit stack.
func writeTree(buf *bytes.Buffer, db *store.DB, rootID string, opt RenderOptions) {
	stack := []frame{{id: rootID}}
	seen := map[string]bool{}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.id] {
			continue
		}
		seen[f.id] = true
		t, ok := db.FindTask(f.id)
		if !ok {
			continue
		}
		line := oneLine(t.Content)
		if line == "" {
			line = model.DefaultTaskContent
		}
		if opt.ShowIDs {
			line += " `" + t.ID + "`"
		}
		buf.WriteString(strings.Repeat("  ", f.depth))
		buf.WriteString("- ")
		buf.WriteString(line)
		buf.WriteString("\n")
		for i := len(t.ChildrenIDs) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: t.ChildrenIDs[i], depth: f.depth + 1})
		}
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
