package bubbletea

import (
	"strings"

	"github.com/fwojciec/memorial"
	"github.com/fwojciec/memorial/goldmark"
)

var _ MessageBlock = (*MemorialBlock)(nil)

// MemorialBlock renders a reply from the Grand Councilor with markdown
// formatting. The store delivers the full reply text on every fragment;
// finalized paragraphs (separated by a blank line) are rendered once and
// cached, and only the trailing text is re-rendered as it grows.
type MemorialBlock struct {
	content   string
	streaming bool
	theme     memorial.Theme
	styles    Styles

	// finalizedRaw is the stable prefix ending at the last blank line.
	// It's rendered once per width and cached in finalizedByWidth.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewMemorialBlock creates an empty MemorialBlock.
func NewMemorialBlock(theme memorial.Theme, styles Styles) *MemorialBlock {
	return &MemorialBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

// SetContent replaces the reply text. Text that extends the previous content
// keeps the cached rendering of its finalized paragraphs.
func (b *MemorialBlock) SetContent(text string) {
	if text == b.content {
		return
	}
	if !strings.HasPrefix(text, b.content) {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.content = text
	b.promoteFinalized()
}

// SetStreaming marks whether the reply is still being written.
func (b *MemorialBlock) SetStreaming(streaming bool) {
	b.streaming = streaming
}

// Content returns the reply text.
func (b *MemorialBlock) Content() string {
	return b.content
}

func (b *MemorialBlock) View(width int) string {
	var out strings.Builder
	out.WriteString(b.styles.Memorial.Render(MemorialLabel))
	if body := b.renderBody(width); body != "" {
		out.WriteString("\n")
		out.WriteString(body)
	}
	if b.streaming {
		out.WriteString("\n")
		out.WriteString(b.styles.Muted.Render(StreamingMarker))
	}
	return out.String()
}

func (b *MemorialBlock) renderBody(width int) string {
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close fence only for rendering so partial streams display safely.
		trailing += "\n```"
	}
	if trailing == "" {
		return finalizedRendered
	}
	trailingRendered := goldmark.Render(trailing, width, b.theme)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	if finalizedRendered == "" {
		return trailingRendered
	}
	// Independently rendered fragments are joined with a single blank line
	// to match full-document output.
	return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
}

// promoteFinalized moves the finalized boundary to the last blank line that
// doesn't fall inside an unclosed fenced code block.
func (b *MemorialBlock) promoteFinalized() {
	raw := b.content
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *MemorialBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *MemorialBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.content
	}
	return strings.TrimPrefix(b.content, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" in s. Triple backticks
// inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
