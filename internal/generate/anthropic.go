package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-5"

const titleSystem = "You write concise issue titles. Reply with a single " +
	"line of at most 72 characters summarizing the request. No quotes, no " +
	"trailing punctuation."

const bodySystem = "You write well-structured issue descriptions in " +
	"markdown. Given a request, produce a body with a short summary and, " +
	"where it helps, acceptance criteria. Reply with the markdown only."

// Anthropic generates issue content through the Messages API. Title failures
// fall back to the heuristic so a job never stalls on the model being down;
// body failures are returned to the caller, which keeps its own fallback.
type Anthropic struct {
	client   anthropic.Client
	model    anthropic.Model
	fallback Heuristic
}

var _ Generator = (*Anthropic)(nil)

func NewAnthropic(apiKey string) *Anthropic {
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(defaultModel),
	}
}

func (a *Anthropic) Title(ctx context.Context, prompt string) (string, error) {
	text, err := a.complete(ctx, titleSystem, prompt, 64)
	if err != nil {
		return a.fallback.Title(ctx, prompt)
	}

	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if title == "" {
		return a.fallback.Title(ctx, prompt)
	}
	if len(title) > maxTitleLen {
		title = strings.TrimSpace(title[:maxTitleLen])
	}
	return title, nil
}

func (a *Anthropic) Body(ctx context.Context, prompt, title string) (string, error) {
	input := prompt
	if title != "" {
		input = fmt.Sprintf("Title: %s\n\nRequest: %s", title, prompt)
	}

	text, err := a.complete(ctx, bodySystem, input, 1024)
	if err != nil {
		return "", fmt.Errorf("generate body: %w", err)
	}
	return strings.TrimSpace(text) + "\n", nil
}

func (a *Anthropic) complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
