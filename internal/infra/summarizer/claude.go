package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ai-news-digest/internal/resilience/circuitbreaker"
)

// DefaultClaudeModel is used when no model is configured.
var DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements Summarizer using Anthropic's Claude API.
type Claude struct {
	engine
	client anthropic.Client
}

// NewClaude creates a Claude summarizer. Extra request options (for example
// option.WithBaseURL) are appended after the API key.
func NewClaude(apiKey string, config Config, opts ...option.RequestOption) (*Claude, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is empty")
	}
	if config.Model == "" {
		config.Model = DefaultClaudeModel
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claude configuration: %w", err)
	}

	slog.Info("Initialized Claude summarizer with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("model", config.Model))

	// Retries are handled by the engine.
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Claude{
		engine: newEngine("claude", circuitbreaker.ClaudeAPIConfig(), config),
		client: anthropic.NewClient(clientOpts...),
	}, nil
}

// Summarize returns a Japanese summary of text.
func (c *Claude) Summarize(ctx context.Context, text string) (string, error) {
	return c.summarize(ctx, text, c.generate)
}

func (c *Claude) generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		status := 0
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", statusError("claude", status, err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
