package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"ai-news-digest/internal/resilience/circuitbreaker"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI implements Summarizer using OpenAI's chat completion API.
type OpenAI struct {
	engine
	client *openai.Client
}

// NewOpenAI creates an OpenAI summarizer. baseURL overrides the API endpoint
// when non-empty.
func NewOpenAI(apiKey string, config Config, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OpenAI configuration: %w", err)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	slog.Info("Initialized OpenAI summarizer with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("model", config.Model))

	return &OpenAI{
		engine: newEngine("openai", circuitbreaker.OpenAIAPIConfig(), config),
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Summarize returns a Japanese summary of text.
func (o *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	return o.summarize(ctx, text, o.generate)
}

func (o *OpenAI) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", statusError("openai", openAIStatus(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
