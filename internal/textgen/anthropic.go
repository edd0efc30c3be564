package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/kayz/muse/internal/museum"
)

// AnthropicGenerator talks to the Anthropic Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  anthropic.Model
}

// AnthropicConfig holds provider configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// NewAnthropicGenerator creates the provider.
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaude3Dot5HaikuLatest
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (g *AnthropicGenerator) Name() string { return "anthropic" }

func (g *AnthropicGenerator) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: g.model,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	return strings.TrimSpace(resp.GetFirstContentText()), nil
}

// BaseText writes the main caption. The image is not attached; the prompt
// alone carries the artwork metadata.
func (g *AnthropicGenerator) BaseText(ctx context.Context, art museum.Artwork, _ string) (string, error) {
	return g.complete(ctx, basePrompt(art), 200)
}

// DetailZoomText writes the caption for a detail-zoom post.
func (g *AnthropicGenerator) DetailZoomText(ctx context.Context, art museum.Artwork) (string, error) {
	return g.complete(ctx, detailZoomPrompt(art), 120)
}
