package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes message text safe to draw: escape sequences written by the
// model or pasted by the user would otherwise reach the terminal. Tabs and
// newlines survive; CRLF becomes LF and every other control character is
// dropped.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return (r <= 0x1F && r != '\t' && r != '\n') || r == 0x7F
}
