package chat

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/flowternity/facility-assistant/pkg/anthropic"
)

// Generator produces text grounded on a system context. The chat service
// treats it as unreliable: any error or empty output triggers the
// deterministic fallback path.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicGenerator implements Generator over the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicGenerator creates a Generator for the given model.
func NewAnthropicGenerator(client anthropic.Client, model string, maxTokens int64) *AnthropicGenerator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGenerator{client: client, model: model, maxTokens: maxTokens}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", eris.New("generate: empty response")
	}
	return text, nil
}
