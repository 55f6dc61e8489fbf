package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/memorial"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Edict    lipgloss.Style
	Memorial lipgloss.Style
	Seal     lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Selected lipgloss.Style
	Sidebar  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t memorial.Theme) Styles {
	return Styles{
		Edict:    lipgloss.NewStyle().Foreground(ansiColor(t.Edict)).Bold(true),
		Memorial: lipgloss.NewStyle().Foreground(ansiColor(t.Memorial)).Bold(true),
		Seal:     lipgloss.NewStyle().Foreground(ansiColor(t.Seal)).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Italic(true),
		Selected: lipgloss.NewStyle().Foreground(ansiColor(t.Seal)).Bold(true),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(ansiColor(t.Muted)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
