package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Ngyama/idea-canvas/internal/canvas"
)

type Options struct {
	Title string
	// Offer, when set, asks the user whether to load an autosaved board.
	Offer  *RestoreOffer
	Logger logrus.FieldLogger
}

// Run drives the board until the user quits. The session keeps its state
// afterwards so callers can persist it.
func Run(s *canvas.Session, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	title := opts.Title
	if title == "" {
		title = "board"
	}
	m := newAppModel(s, log, title, opts.Offer)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
