package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/dropzone"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(appModel)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(appModel)
	}
	return m
}

func twoTaskSession() (*canvas.Session, string, string) {
	db := &store.DB{}
	a := db.CreateTask(model.Point{X: 100, Y: 100}, "A")
	b := db.CreateTask(model.Point{X: 100, Y: 400}, "B")
	return canvas.New(db), a, b
}

func TestNewTaskThenEdit(t *testing.T) {
	s := canvas.New(&store.DB{})
	m := newAppModel(s, quietLogger(), "test", nil)

	m = press(t, m, "n")
	if m.mode != modeEdit {
		t.Fatalf("expected edit mode after new task; got %v", m.mode)
	}
	m.input.SetValue("")
	m = typeText(t, m, "hello")
	m = press(t, m, "enter")

	tk, ok := s.Task(m.selected)
	if !ok || tk.Content != "hello" {
		t.Fatalf("expected task content hello; got %+v ok=%v", tk, ok)
	}
	if m.mode != modeBoard {
		t.Fatalf("expected board mode after commit")
	}
}

func TestEditEscapeKeepsContent(t *testing.T) {
	s, a, _ := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)
	if m.selected != a {
		t.Fatalf("expected first task selected; got %s", m.selected)
	}

	m = press(t, m, "e")
	m = typeText(t, m, " changed")
	m = press(t, m, "esc")
	if tk, _ := s.Task(a); tk.Content != "A" {
		t.Fatalf("expected cancelled edit to keep content; got %q", tk.Content)
	}
	if s.CanUndo() {
		t.Fatalf("expected no history entry for a cancelled edit")
	}
}

func TestDragOntoChildZoneNests(t *testing.T) {
	s, a, b := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)

	m = press(t, m, "m")
	if m.mode != modeDrag {
		t.Fatalf("expected drag mode")
	}
	// Pointer starts at A's centre (220,125); 17 steps down lands at y=465,
	// inside B's child zone.
	for i := 0; i < 17; i++ {
		m = press(t, m, "j")
	}
	if m.preview.Kind != dropzone.AddChild || m.preview.TargetID != b {
		t.Fatalf("expected ADD_CHILD preview on B; got %+v", m.preview)
	}
	m = press(t, m, "enter")

	child, _ := s.Task(a)
	if child.ParentIDValue() != b {
		t.Fatalf("expected A nested under B; got parent %q", child.ParentIDValue())
	}
	if child.Position != (model.Point{X: 172, Y: 465}) {
		t.Fatalf("expected A laid out under B; got %+v", child.Position)
	}
	if !s.CanUndo() {
		t.Fatalf("expected the drop to commit history")
	}
	m = press(t, m, "u")
	if tk, _ := s.Task(a); tk.HasParent() || tk.Position != (model.Point{X: 100, Y: 100}) {
		t.Fatalf("expected undo to restore A; got %+v", tk)
	}
}

func TestDragEscapeRestoresPositions(t *testing.T) {
	s, a, _ := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)

	m = press(t, m, "m", "l", "l", "J")
	if tk, _ := s.Task(a); tk.Position == (model.Point{X: 100, Y: 100}) {
		t.Fatalf("expected live position update while dragging")
	}
	m = press(t, m, "esc")
	if tk, _ := s.Task(a); tk.Position != (model.Point{X: 100, Y: 100}) {
		t.Fatalf("expected cancel to restore position; got %+v", tk.Position)
	}
	if s.CanUndo() || m.mode != modeBoard {
		t.Fatalf("expected no history and board mode after cancel")
	}
}

func TestMarkAndGroup(t *testing.T) {
	s, a, b := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)

	m = press(t, m, "space", "tab", "space", "g")
	ta, _ := s.Task(a)
	tb, _ := s.Task(b)
	if !ta.InCategory() || ta.CategoryIDValue() != tb.CategoryIDValue() {
		t.Fatalf("expected both tasks grouped; got %+v / %+v", ta, tb)
	}
	if len(m.marked) != 0 {
		t.Fatalf("expected marks cleared after grouping")
	}

	m = press(t, m, "r")
	m.input.SetValue("Ideas")
	m = press(t, m, "enter")
	if c, _ := s.Category(ta.CategoryIDValue()); c.Name != "Ideas" {
		t.Fatalf("expected renamed category; got %q", c.Name)
	}
}

func TestGroupNeedsTwoTasks(t *testing.T) {
	s, _, _ := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)
	m = press(t, m, "space", "g")
	if !m.statusErr {
		t.Fatalf("expected an error status for a one-task group")
	}
}

func TestRestoreOffer(t *testing.T) {
	s := canvas.New(&store.DB{})
	saved := &store.DB{}
	saved.CreateTask(model.Point{}, "from autosave")
	m := newAppModel(s, quietLogger(), "test", &RestoreOffer{DB: saved, SavedAt: time.Now()})
	if m.mode != modeRestore || !strings.Contains(m.View(), "Restore autosaved board") {
		t.Fatalf("expected restore prompt")
	}
	m = press(t, m, "y")
	if got := s.Snapshot(); len(got.Tasks) != 1 || got.Tasks[0].Content != "from autosave" {
		t.Fatalf("expected restored board; got %+v", got.Tasks)
	}
	if m.selected == "" {
		t.Fatalf("expected a selection after restore")
	}

	s2 := canvas.New(&store.DB{})
	m2 := newAppModel(s2, quietLogger(), "test", &RestoreOffer{DB: saved, SavedAt: time.Now()})
	press(t, m2, "n")
	if !s2.Snapshot().Empty() {
		t.Fatalf("expected declined restore to leave board empty")
	}
}

func TestViewDrawsTasksAndOutline(t *testing.T) {
	s, _, _ := twoTaskSession()
	m := newAppModel(s, quietLogger(), "test", nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	m = next.(appModel)

	view := xansi.Strip(m.View())
	lines := strings.Split(view, "\n")
	// A spans rows 5-7 and columns 12-42; its label sits on the middle row.
	if len(lines) < 7 || !strings.Contains(lines[6], "• A") {
		t.Fatalf("expected A on row 6; got:\n%s", view)
	}

	m = press(t, m, "o")
	if out := xansi.Strip(m.View()); !strings.Contains(out, "A") || !strings.Contains(out, "back to board") {
		t.Fatalf("expected outline view; got:\n%s", out)
	}
	m = press(t, m, "esc")
	if m.mode != modeBoard {
		t.Fatalf("expected esc to leave the outline")
	}
}

func TestGrid_CategoryBoxAndTruncation(t *testing.T) {
	db := &store.DB{Categories: []model.Category{{
		ID:       "cat-1",
		Name:     "Ideas",
		Position: model.Point{X: 0, Y: 0},
		Size:     model.Size{Width: 160, Height: 60},
		Style:    model.DefaultCategoryStyle(),
	}}}
	g := drawBoard(db, boardView{}, 24, 4)
	lines := strings.Split(xansi.Strip(g.String()), "\n")
	if !strings.HasPrefix(lines[0], "┌─ Ideas ") || !strings.HasPrefix(lines[2], "└") {
		t.Fatalf("unexpected category box:\n%s", strings.Join(lines, "\n"))
	}

	if got := truncateToWidth("a long   line\nof text", 8); got != "a long …" {
		t.Fatalf("expected truncated text; got %q", got)
	}
}

func TestGrid_LongCategoryNameKeepsPadding(t *testing.T) {
	db := &store.DB{Categories: []model.Category{{
		ID:       "cat-1",
		Name:     "A very long category name",
		Position: model.Point{X: 0, Y: 0},
		Size:     model.Size{Width: 160, Height: 60},
		Style:    model.DefaultCategoryStyle(),
	}}}
	g := drawBoard(db, boardView{}, 24, 4)
	lines := strings.Split(xansi.Strip(g.String()), "\n")
	if !strings.HasPrefix(lines[0], "┌─ A very long c… ─┐") {
		t.Fatalf("expected padded, truncated header; got %q", lines[0])
	}
}
