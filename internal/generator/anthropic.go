package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicConfig configures the Anthropic messages backend.
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// AnthropicBackend generates responses through the Anthropic messages API.
type AnthropicBackend struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewAnthropicBackend creates an Anthropic backend
func NewAnthropicBackend(cfg AnthropicConfig) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}

	return &AnthropicBackend{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

// Complete implements Backend
func (b *AnthropicBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temperature := b.temperature
	resp, err := b.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(b.model),
		System:      systemPrompt,
		MaxTokens:   b.maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &userPrompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}
