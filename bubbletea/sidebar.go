package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/memorial"
	"github.com/mattn/go-runewidth"
)

const sidebarHeading = "Imperial Archives"

// sidebarWidth returns the sidebar width for a terminal width, border
// included. Narrow terminals get no sidebar.
func sidebarWidth(total int) int {
	if total < 60 {
		return 0
	}
	return min(30, total/4)
}

// renderSidebar lists session titles newest first, marking the current one.
// Titles are truncated by display width since most are Chinese.
func renderSidebar(c memorial.Collection, width, height int, styles Styles) string {
	inner := width - 1 // right border
	lines := []string{styles.Seal.Render(sidebarHeading), ""}
	for _, s := range c.Sessions {
		if len(lines) >= height {
			break
		}
		title := runewidth.Truncate(s.Title, inner-2, "…")
		if s.ID == c.CurrentID {
			lines = append(lines, styles.Selected.Render("▸ "+title))
			continue
		}
		lines = append(lines, "  "+title)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return styles.Sidebar.
		Width(inner).
		Height(height).
		Render(lipgloss.NewStyle().MaxWidth(inner).Render(strings.Join(lines, "\n")))
}
