package bubbletea

import (
	"github.com/fwojciec/memorial"
	"github.com/fwojciec/memorial/goldmark"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the in-character reply recorded for a failed request.
// The label carries the error color; the text itself is markdown.
type ErrorBlock struct {
	text   string
	theme  memorial.Theme
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(text string, theme memorial.Theme, styles Styles) *ErrorBlock {
	return &ErrorBlock{text: text, theme: theme, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	return b.styles.Error.Render(MemorialLabel) + "\n" + goldmark.Render(b.text, width, b.theme)
}
