package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Ngyama/idea-canvas/internal/store"
)

type WriteOptions struct {
	Title     string
	ShowIDs   bool
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes the board outline to path.
func WriteBoard(db *store.DB, path string, opt WriteOptions) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	path = filepath.Clean(path)

	md, err := RenderBoardMarkdown(db, RenderOptions{Title: opt.Title, ShowIDs: opt.ShowIDs})
	if err != nil {
		return WriteResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, err
	}
	if err := writeFile(path, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{path}}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

var (
	renderersMu sync.Mutex
	// Keyed by style + width; building a renderer is not free.
	renderers = map[string]*glamour.TermRenderer{}
)

// TerminalStyle picks a glamour standard style for stdout: "notty" when
// colour is off (NO_COLOR or an ASCII profile), otherwise dark or light by
// the terminal's background.
func TerminalStyle() string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return "notty"
	}
	out := termenv.NewOutput(os.Stdout)
	if out.EnvColorProfile() == termenv.Ascii {
		return "notty"
	}
	if out.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// RenderTerminal renders markdown for display. On renderer failure the raw
// markdown is returned.
func RenderTerminal(md, style string, width int) string {
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = "notty"
	}
	key := style + ":" + strconv.Itoa(width)

	renderersMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			renderersMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	renderersMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
