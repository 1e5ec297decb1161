package generate

import (
	"context"
	"strings"
	"unicode"
)

const maxTitleLen = 72

// Heuristic derives issue content without any external call. It backs the
// service when no model API key is configured and is the fallback when a
// model call fails on the title path.
type Heuristic struct{}

var _ Generator = Heuristic{}

// Title takes the first sentence or line of the prompt, trims it to a
// headline length, and capitalizes the first rune. The result is never empty
// for a non-blank prompt.
func (Heuristic) Title(_ context.Context, prompt string) (string, error) {
	title := strings.TrimSpace(prompt)

	if i := strings.IndexAny(title, "\n.!?"); i > 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	if len(title) > maxTitleLen {
		cut := title[:maxTitleLen]
		if i := strings.LastIndexByte(cut, ' '); i > maxTitleLen/2 {
			cut = cut[:i]
		}
		title = cut
	}

	if title == "" {
		title = "Untitled issue"
	}

	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

func (Heuristic) Body(_ context.Context, prompt, _ string) (string, error) {
	var b strings.Builder
	b.WriteString("## Description\n\n")
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n")
	return b.String(), nil
}
