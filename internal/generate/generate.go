// Package generate produces issue titles and bodies from a free-form prompt,
// either through the language model or a deterministic heuristic fallback.
package generate

import "context"

// Generator turns a user prompt into issue content. Implementations must
// never return an empty title alongside a nil error.
type Generator interface {
	Title(ctx context.Context, prompt string) (string, error)
	Body(ctx context.Context, prompt, title string) (string, error)
}
