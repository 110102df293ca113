package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

// One terminal cell covers cellW x cellH board units; a default 240x50 task
// is 30 columns by 3 rows.
const (
	cellW = 8.0
	cellH = 20.0
)

// camera is the board point drawn in the top-left cell.
type camera struct {
	X, Y float64
}

func (c camera) project(p model.Point) (col, row int) {
	return int(math.Floor((p.X - c.X) / cellW)), int(math.Floor((p.Y - c.Y) / cellH))
}

// unproject returns the board point at the top-left corner of a cell.
func (c camera) unproject(col, row int) model.Point {
	return model.Point{X: c.X + float64(col)*cellW, Y: c.Y + float64(row)*cellH}
}

func (c camera) span(pos model.Point, size model.Size) (c0, r0, c1, r1 int) {
	c0, r0 = c.project(pos)
	c1 = int(math.Ceil((pos.X+size.Width-c.X)/cellW)) - 1
	r1 = int(math.Ceil((pos.Y+size.Height-c.Y)/cellH)) - 1
	if c1 < c0 {
		c1 = c0
	}
	if r1 < r0 {
		r1 = r0
	}
	return
}

type cell struct {
	r     rune
	style int
}

// grid is a fixed-size character canvas. Style 0 is unstyled; a zero rune
// marks the second half of a wide character.
type grid struct {
	w, h   int
	cells  [][]cell
	styles []lipgloss.Style
}

func newGrid(w, h int) *grid {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	g := &grid{w: w, h: h, styles: []lipgloss.Style{lipgloss.NewStyle()}}
	g.cells = make([][]cell, h)
	for i := range g.cells {
		row := make([]cell, w)
		for j := range row {
			row[j] = cell{r: ' '}
		}
		g.cells[i] = row
	}
	return g
}

func (g *grid) addStyle(s lipgloss.Style) int {
	g.styles = append(g.styles, s)
	return len(g.styles) - 1
}

func (g *grid) set(col, row int, r rune, style int) {
	if row < 0 || row >= g.h || col < 0 || col >= g.w {
		return
	}
	g.cells[row][col] = cell{r: r, style: style}
}

func (g *grid) fill(c0, r0, c1, r1 int, style int) {
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.set(col, row, ' ', style)
		}
	}
}

// text writes s starting at col, cut to maxW display columns.
// text writes s as-is, clipped to maxW cells. Callers normalize labels with
// truncateToWidth first.
func (g *grid) text(col, row int, s string, maxW int, style int) {
	if maxW <= 0 {
		return
	}
	if xansi.StringWidth(s) > maxW {
		s = xansi.Truncate(s, maxW, "")
	}
	for _, r := range s {
		w := xansi.StringWidth(string(r))
		if w == 0 {
			continue
		}
		g.set(col, row, r, style)
		if w == 2 {
			g.set(col+1, row, 0, style)
		}
		col += w
	}
}

func (g *grid) box(c0, r0, c1, r1 int, style int) {
	for col := c0 + 1; col < c1; col++ {
		g.set(col, r0, '─', style)
		g.set(col, r1, '─', style)
	}
	for row := r0 + 1; row < r1; row++ {
		g.set(c0, row, '│', style)
		g.set(c1, row, '│', style)
	}
	g.set(c0, r0, '┌', style)
	g.set(c1, r0, '┐', style)
	g.set(c0, r1, '└', style)
	g.set(c1, r1, '┘', style)
}

func (g *grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for start < len(row) {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].style == row[start].style {
				if row[end].r != 0 {
					run.WriteRune(row[end].r)
				}
				end++
			}
			if row[start].style == 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(g.styles[row[start].style].Render(run.String()))
			}
			start = end
		}
	}
	return b.String()
}

func truncateToWidth(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Truncate(s, w, "…")
}

type boardView struct {
	cam       camera
	selected  string
	marked    map[string]bool
	highlight string
}

func glyph(t *model.Task) string {
	switch model.KindOf(t) {
	case model.TaskKindParent:
		return "◆ "
	case model.TaskKindChild:
		return "↳ "
	default:
		return "• "
	}
}

// drawBoard paints categories first, then tasks in creation order.
func drawBoard(db *store.DB, v boardView, w, h int) *grid {
	g := newGrid(w, h)
	selectedCat := ""
	if t, ok := db.FindTask(v.selected); ok && t.InCategory() {
		selectedCat = t.CategoryIDValue()
	}
	for i := range db.Categories {
		c := &db.Categories[i]
		c0, r0, c1, r1 := v.cam.span(c.Position, c.Size)
		st := categoryStyle(c.Style, c.ID == selectedCat || c.ID == v.highlight)
		if c.ID == v.highlight {
			st = st.Reverse(true)
		}
		idx := g.addStyle(st)
		g.box(c0, r0, c1, r1, idx)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = model.DefaultCategoryName
		}
		g.text(c0+2, r0, " "+truncateToWidth(name, c1-c0-5)+" ", c1-c0-3, idx)
	}
	for i := range db.Tasks {
		t := &db.Tasks[i]
		c0, r0, c1, r1 := v.cam.span(t.Position, t.Size)
		st := taskStyle(t.Style, t.ID == v.selected, v.marked[t.ID])
		if t.ID == v.highlight {
			st = st.Reverse(true)
		}
		idx := g.addStyle(st)
		g.fill(c0, r0, c1, r1, idx)
		label := glyph(t) + t.Content
		if v.marked[t.ID] {
			label = "✓ " + t.Content
		}
		g.text(c0+1, r0+(r1-r0)/2, truncateToWidth(label, c1-c0-1), c1-c0-1, idx)
	}
	return g
}
