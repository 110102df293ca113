package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Ngyama/idea-canvas/internal/model"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted     lipgloss.TerminalColor = ac("240", "243")
	colorAccent    lipgloss.TerminalColor = ac("#1976D2", "#64B5F6")
	colorError     lipgloss.TerminalColor = ac("#C62828", "#EF9A9A")
	colorSelection lipgloss.TerminalColor = ac("232", "255")
)

func styleMuted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleStatus() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError).Bold(true)
}

// taskStyle renders a card in the task's own palette. Selected cards are
// bold and underlined; marked cards (part of a multi-selection) italic.
func taskStyle(st model.TaskStyle, selected, marked bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(st.BgColor)).
		Foreground(lipgloss.Color(st.TextColor))
	if selected {
		s = s.Bold(true).Underline(true).Foreground(lipgloss.Color(st.BorderColor))
	}
	if marked {
		s = s.Italic(true)
	}
	return s
}

func categoryStyle(st model.CategoryStyle, selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(st.BorderColor))
	if selected {
		s = s.Foreground(colorSelection).Bold(true)
	}
	return s
}

// applyColorProfilePreference sets Lip Gloss's color profile for the board.
// Only NO_COLOR is honoured; otherwise follow the terminal, upgrading when
// TERM/COLORTERM advertise more than the detector reports.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference lets CANVAS_TUI_THEME=light|dark override background
// detection, which some terminals get wrong.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CANVAS_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
}
