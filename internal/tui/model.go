package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/dropzone"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/publish"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type mode int

const (
	modeBoard mode = iota
	modeEdit
	modeDrag
	modeRestore
	modeOutline
)

// Pointer steps while dragging, in board units.
const (
	stepX = 2 * cellW
	stepY = cellH
	// Shift multiplies a step.
	bigStep = 5
)

// RestoreOffer is an autosaved board the user may load at startup.
type RestoreOffer struct {
	DB      *store.DB
	SavedAt time.Time
}

type appModel struct {
	s     *canvas.Session
	log   logrus.FieldLogger
	title string

	width  int
	height int

	mode     mode
	cam      camera
	selected string
	marked   map[string]bool

	input textinput.Model

	pointer model.Point
	preview dropzone.Action

	offer *RestoreOffer

	status    string
	statusErr bool
}

func newAppModel(s *canvas.Session, log logrus.FieldLogger, title string, offer *RestoreOffer) appModel {
	in := textinput.New()
	in.Placeholder = model.DefaultTaskContent
	in.CharLimit = 500
	in.Width = 40

	m := appModel{
		s:      s,
		log:    log,
		title:  title,
		width:  100,
		height: 30,
		marked: map[string]bool{},
		input:  in,
		offer:  offer,
	}
	if offer != nil && offer.DB != nil {
		m.mode = modeRestore
	}
	db := s.Snapshot()
	if len(db.Tasks) > 0 {
		m.selected = db.Tasks[0].ID
	}
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m *appModel) flash(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *appModel) fail(err error) {
	m.log.WithError(err).Debug("board action rejected")
	m.status = err.Error()
	m.statusErr = true
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeRestore:
			return m.updateRestore(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeDrag:
			return m.updateDrag(msg)
		case modeOutline:
			switch msg.String() {
			case "o", "esc", "q":
				m.mode = modeBoard
			}
			return m, nil
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m appModel) updateRestore(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.s.LoadData(m.offer.DB)
		m.offer = nil
		m.mode = modeBoard
		m.selectFirst()
		m.flash("restored autosave")
	case "n", "esc":
		m.offer = nil
		m.mode = modeBoard
		m.flash("starting with the saved board")
	}
	return m, nil
}

func (m *appModel) selectFirst() {
	db := m.s.Snapshot()
	m.selected = ""
	if len(db.Tasks) > 0 {
		m.selected = db.Tasks[0].ID
	}
}

func (m *appModel) cycle(delta int) {
	db := m.s.Snapshot()
	n := len(db.Tasks)
	if n == 0 {
		m.selected = ""
		return
	}
	idx := -1
	for i := range db.Tasks {
		if db.Tasks[i].ID == m.selected {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	m.selected = db.Tasks[idx].ID
}

// focus pans so the selected task sits near the middle of the board area.
func (m *appModel) focus() {
	t, ok := m.s.Task(m.selected)
	if !ok {
		return
	}
	m.cam.X = t.Position.X - float64(m.width/2)*cellW + t.Size.Width/2
	m.cam.Y = t.Position.Y - float64(m.boardHeight()/2)*cellH
}

func (m appModel) boardHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) markedIDs() []string {
	db := m.s.Snapshot()
	out := []string{}
	for i := range db.Tasks {
		if m.marked[db.Tasks[i].ID] {
			out = append(out, db.Tasks[i].ID)
		}
	}
	return out
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "left":
		m.cam.X -= 10 * cellW
	case "right":
		m.cam.X += 10 * cellW
	case "up":
		m.cam.Y -= 3 * cellH
	case "down":
		m.cam.Y += 3 * cellH
	case "f":
		m.focus()
	case "n":
		center := m.cam.unproject(m.width/2-15, m.boardHeight()/2)
		m.selected = m.s.CreateTask(center, "")
		return m.startEdit(m.selected)
	case "e", "enter":
		if m.selected == "" {
			return m, nil
		}
		return m.startEdit(m.selected)
	case "r":
		t, ok := m.s.Task(m.selected)
		if !ok || !t.InCategory() {
			m.fail(errors.New("selected task is not in a category"))
			return m, nil
		}
		return m.startEdit(t.CategoryIDValue())
	case " ":
		if m.selected != "" {
			m.marked[m.selected] = !m.marked[m.selected]
			if !m.marked[m.selected] {
				delete(m.marked, m.selected)
			}
		}
	case "m":
		return m.startDrag()
	case "g":
		ids := m.markedIDs()
		id, err := m.s.CreateCategory(ids)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.marked = map[string]bool{}
		m.flash("grouped %d tasks into %s", len(ids), id)
	case "x", "delete":
		if m.selected == "" {
			return m, nil
		}
		if err := m.s.DeleteTask(m.selected); err != nil {
			m.fail(err)
			return m, nil
		}
		delete(m.marked, m.selected)
		m.selectFirst()
		m.flash("deleted")
	case "p":
		if changed, err := m.s.RemoveTaskFromParent(m.selected); err != nil {
			m.fail(err)
		} else if changed {
			m.flash("detached from parent")
		}
	case "c":
		if changed, err := m.s.RemoveTaskFromCategory(m.selected); err != nil {
			m.fail(err)
		} else if changed {
			m.flash("removed from category")
		}
	case "u", "ctrl+z":
		if m.s.Undo() {
			m.flash("undo")
		}
		m.keepSelection()
	case "U", "ctrl+y":
		if m.s.Redo() {
			m.flash("redo")
		}
		m.keepSelection()
	case "o":
		m.mode = modeOutline
	}
	return m, nil
}

// keepSelection drops a selection that no longer exists after undo/redo.
func (m *appModel) keepSelection() {
	if _, ok := m.s.Task(m.selected); !ok {
		m.selectFirst()
	}
	for id := range m.marked {
		if _, ok := m.s.Task(id); !ok {
			delete(m.marked, id)
		}
	}
}

func (m appModel) startEdit(id string) (tea.Model, tea.Cmd) {
	text, err := m.s.BeginEdit(id)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.mode = modeEdit
	cmd := m.input.Focus()
	return m, cmd
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		changed, err := m.s.CommitEdit(m.input.Value())
		if err != nil {
			m.fail(err)
		} else if changed {
			m.flash("saved")
		}
		m.input.Blur()
		m.mode = modeBoard
		return m, nil
	case "esc":
		m.s.CancelEdit()
		m.input.Blur()
		m.mode = modeBoard
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) startDrag() (tea.Model, tea.Cmd) {
	t, ok := m.s.Task(m.selected)
	if !ok {
		return m, nil
	}
	p := model.Point{X: t.Position.X + t.Size.Width/2, Y: t.Position.Y + t.Size.Height/2}
	if err := m.s.BeginDrag(t.ID, p, m.markedIDs()...); err != nil {
		m.fail(err)
		return m, nil
	}
	m.pointer = p
	m.preview = dropzone.Action{Kind: dropzone.Move}
	m.mode = modeDrag
	m.flash("dragging: move with arrows/hjkl, enter drops, esc cancels")
	return m, nil
}

func (m appModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dx, dy := 0.0, 0.0
	switch msg.String() {
	case "left", "h":
		dx = -stepX
	case "right", "l":
		dx = stepX
	case "up", "k":
		dy = -stepY
	case "down", "j":
		dy = stepY
	case "shift+left", "H":
		dx = -stepX * bigStep
	case "shift+right", "L":
		dx = stepX * bigStep
	case "shift+up", "K":
		dy = -stepY * bigStep
	case "shift+down", "J":
		dy = stepY * bigStep
	case "enter":
		res, err := m.s.EndDrag(m.pointer)
		m.mode = modeBoard
		m.preview = dropzone.Action{Kind: dropzone.Move}
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.marked = map[string]bool{}
		m.flash("%s", describeDrop(res))
		return m, nil
	case "esc":
		m.s.CancelDrag()
		m.mode = modeBoard
		m.preview = dropzone.Action{Kind: dropzone.Move}
		m.flash("drag cancelled")
		return m, nil
	default:
		return m, nil
	}
	m.pointer.X += dx
	m.pointer.Y += dy
	a, err := m.s.DragMove(m.pointer)
	if err != nil {
		m.fail(err)
		m.mode = modeBoard
		return m, nil
	}
	m.preview = a
	return m, nil
}

func describeDrop(res canvas.DropResult) string {
	var parts []string
	switch res.Exit {
	case canvas.ExitParent:
		parts = append(parts, "left parent")
	case canvas.ExitCategory:
		parts = append(parts, "left category")
	}
	switch res.Action.Kind {
	case dropzone.AddChild:
		parts = append(parts, "nested under "+res.Action.TargetID)
	case dropzone.CreateCategory:
		parts = append(parts, "created "+res.CategoryID)
	case dropzone.AddToCategory:
		parts = append(parts, "joined "+res.Action.TargetID)
	default:
		if res.Exit == canvas.ExitNone {
			parts = append(parts, "moved")
		}
	}
	if !res.Committed {
		parts = append(parts, "(no change)")
	}
	return strings.Join(parts, ", ")
}

func (m appModel) View() string {
	switch m.mode {
	case modeOutline:
		md, err := publish.RenderBoardMarkdown(m.s.Snapshot(), publish.RenderOptions{Title: m.title})
		if err != nil {
			return styleError().Render(err.Error())
		}
		return publish.RenderTerminal(md, publish.TerminalStyle(), m.width) + "\n" + styleMuted().Render("o/esc: back to board")
	case modeRestore:
		when := m.offer.SavedAt.Local().Format("2006-01-02 15:04")
		n := len(m.offer.DB.Tasks)
		return styleStatus().Render(fmt.Sprintf("Restore autosaved board from %s (%d tasks)? [y/n]", when, n))
	}

	highlight := ""
	if m.mode == modeDrag && !m.preview.IsMove() {
		highlight = m.preview.TargetID
	}
	g := drawBoard(m.s.Snapshot(), boardView{
		cam:       m.cam,
		selected:  m.selected,
		marked:    m.marked,
		highlight: highlight,
	}, m.width, m.boardHeight())
	if m.mode == modeDrag {
		col, row := m.cam.project(m.pointer)
		g.set(col, row, '✚', g.addStyle(styleStatus()))
	}

	var b strings.Builder
	b.WriteString(g.String())
	b.WriteByte('\n')
	b.WriteString(m.footer())
	return b.String()
}

func (m appModel) footer() string {
	switch m.mode {
	case modeEdit:
		return "edit: " + m.input.View()
	case modeDrag:
		return styleStatus().Render(fmt.Sprintf("drop: %s %s", m.preview.Kind, m.preview.TargetID))
	}
	line := ""
	if m.status != "" {
		if m.statusErr {
			line = styleError().Render(m.status)
		} else {
			line = styleStatus().Render(m.status)
		}
		line += "  "
	}
	undo := "-"
	if m.s.CanUndo() {
		undo = "u"
	}
	redo := "-"
	if m.s.CanRedo() {
		redo = "U"
	}
	return line + styleMuted().Render(fmt.Sprintf(
		"%s  n new  e edit  m drag  space mark  g group  x delete  p/c detach  %s/%s undo/redo  o outline  q quit",
		m.title, undo, redo))
}
