package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const defaultMaxTokens = 8192

// Runner provides text-in/text-out Claude calls.
type Runner struct {
	client    *Client
	maxTokens int64
}

// NewRunner creates a Runner on client.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client, maxTokens: defaultMaxTokens}
}

// Complete sends userPrompt with an optional system prompt and returns the
// concatenated text blocks of the reply.
func (r *Runner) Complete(ctx context.Context, systemPrompt, userPrompt string) (Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: r.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := r.client.inner.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("API call failed: %w", err)
	}

	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	return Completion{
		Text:         text.String(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
