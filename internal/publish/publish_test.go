package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

func sampleBoard() *store.DB {
	t := func(id, content string) model.Task {
		return model.Task{ID: id, Content: content, Size: model.Size{Width: 240, Height: 50}}
	}
	db := &store.DB{
		Tasks: []model.Task{
			t("task-root", "Launch plan"),
			t("task-kid1", "Write copy"),
			t("task-kid2", "Pick date"),
			t("task-grand", "Ask   legal\nabout it"),
			t("task-m1", "Idea one"),
			t("task-m2", "Idea two"),
			t("task-free", ""),
		},
		Categories: []model.Category{{ID: "cat-ideas", Name: "Ideas", TaskIDs: []string{"task-m2", "task-m1"}}},
	}
	db.Tasks[0].ChildrenIDs = []string{"task-kid1", "task-kid2"}
	db.Tasks[1].ParentID = model.StrPtr("task-root")
	db.Tasks[1].ChildrenIDs = []string{"task-grand"}
	db.Tasks[2].ParentID = model.StrPtr("task-root")
	db.Tasks[3].ParentID = model.StrPtr("task-kid1")
	db.Tasks[4].CategoryID = model.StrPtr("cat-ideas")
	db.Tasks[5].CategoryID = model.StrPtr("cat-ideas")
	return db
}

func TestRenderBoardMarkdown_Outline(t *testing.T) {
	t.Parallel()

	md, err := RenderBoardMarkdown(sampleBoard(), RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"# Board",
		"",
		"## Ideas",
		"",
		"- Idea two",
		"- Idea one",
		"",
		"## Ungrouped",
		"",
		"- Launch plan",
		"  - Write copy",
		"    - Ask legal about it",
		"  - Pick date",
		"- New task",
		"",
	}, "\n")
	if md != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", md, want)
	}
}

func TestRenderBoardMarkdown_IDsAndEmpty(t *testing.T) {
	t.Parallel()

	md, err := RenderBoardMarkdown(sampleBoard(), RenderOptions{Title: "Q3", ShowIDs: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(md, "# Q3\n") || !strings.Contains(md, "## Ideas `cat-ideas`") || !strings.Contains(md, "- Pick date `task-kid2`") {
		t.Fatalf("expected title and ids; got:\n%s", md)
	}

	empty, err := RenderBoardMarkdown(&store.DB{}, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(empty, "_Empty board._") {
		t.Fatalf("expected empty marker; got %q", empty)
	}

	if _, err := RenderBoardMarkdown(nil, RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestWriteBoard_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "board.md")
	res, err := WriteBoard(sampleBoard(), path, WriteOptions{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(res.Written) != 1 || res.Written[0] != path {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := WriteBoard(sampleBoard(), path, WriteOptions{}); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := WriteBoard(sampleBoard(), path, WriteOptions{Overwrite: true, Title: "Again"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || !strings.HasPrefix(string(b), "# Again") {
		t.Fatalf("expected overwritten file; got %q err=%v", b, err)
	}
}

func TestRenderTerminal_NoTTYKeepsText(t *testing.T) {
	t.Parallel()

	out := RenderTerminal("# Board\n\n- Idea one\n", "notty", 60)
	if !strings.Contains(out, "Idea one") {
		t.Fatalf("expected rendered text to contain list item; got %q", out)
	}
}
