package memorial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// maxTitleGraphemes bounds generated titles so the session list stays readable.
const maxTitleGraphemes = 40

// TitlePrompt returns the instruction used to summarize text into a title.
func TitlePrompt(text string) string {
	return fmt.Sprintf("Generate a very short, archaic 4-character Chinese idiom or title style "+
		"(in English or Pinyin/Hanzi mix) that summarizes this query for an imperial archive: %q. "+
		"Return ONLY the title.", text)
}

// NormalizeTitle reduces raw model output to a single display line: the
// first non-empty line, stripped of surrounding quotes and markdown emphasis,
// clipped to a fixed number of grapheme clusters. It returns "" when nothing
// usable remains.
func NormalizeTitle(raw string) string {
	var line string
	for l := range strings.SplitSeq(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.Trim(line, "\"'“”*_# ")
	if line == "" {
		return ""
	}
	if uniseg.GraphemeClusterCount(line) <= maxTitleGraphemes {
		return line
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(line)
	for n := 0; n < maxTitleGraphemes && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return strings.TrimSpace(b.String()) + "…"
}

// Interface compliance check.
var _ Titler = (*StreamTitler)(nil)

// StreamTitler implements Titler on top of any Provider by streaming the
// title prompt and collecting the reply.
type StreamTitler struct {
	Provider Provider
	Model    string
}

// Title returns a normalized title for text. A failed request yields
// DefaultTitle and an empty reply yields EmptyTitle.
func (t *StreamTitler) Title(ctx context.Context, text string) string {
	s, err := t.Provider.Stream(ctx, Request{Model: t.Model, Text: TitlePrompt(text)})
	if err != nil {
		return DefaultTitle
	}
	defer s.Close()

	var b strings.Builder
	for {
		f, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return DefaultTitle
		}
		b.WriteString(f.Text)
	}
	if title := NormalizeTitle(b.String()); title != "" {
		return title
	}
	return EmptyTitle
}
