package bubbletea

import "github.com/charmbracelet/lipgloss"

var _ MessageBlock = (*EdictBlock)(nil)

// EdictBlock renders one of the Emperor's messages.
type EdictBlock struct {
	text   string
	styles Styles
}

// NewEdictBlock creates an EdictBlock.
func NewEdictBlock(text string, styles Styles) *EdictBlock {
	return &EdictBlock{text: text, styles: styles}
}

func (b *EdictBlock) View(width int) string {
	label := b.styles.Edict.Render(EdictLabel)
	body := lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(b.text)
	return label + "\n" + body
}
