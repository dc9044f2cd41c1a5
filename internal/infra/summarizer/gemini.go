package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"ai-news-digest/internal/resilience/circuitbreaker"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// ErrIncompleteSummary is returned when the model stopped before finishing
// its answer, for example on the output token limit or a safety block.
var ErrIncompleteSummary = errors.New("summary generation did not finish")

// geminiModels is the subset of *genai.Models used by Gemini.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Summarizer using Google's Gemini API.
type Gemini struct {
	engine
	models geminiModels
}

// NewGemini creates a Gemini summarizer for the Gemini Developer API.
func NewGemini(ctx context.Context, apiKey string, config Config) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gemini configuration: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	slog.Info("Initialized Gemini summarizer with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("model", config.Model))

	return newGemini(client.Models, config), nil
}

func newGemini(models geminiModels, config Config) *Gemini {
	return &Gemini{
		engine: newEngine("gemini", circuitbreaker.GeminiAPIConfig(), config),
		models: models,
	}
}

// Summarize returns a Japanese summary of text.
// Blank text returns ErrEmptyInput without calling the API.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	return g.summarize(ctx, text, g.generate)
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.config.MaxTokens),
		// Thinking tokens count against MaxOutputTokens; a summary needs none.
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", statusError("gemini", geminiStatus(err), err)
	}
	if resp == nil {
		return "", nil
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		switch reason := resp.Candidates[0].FinishReason; reason {
		case "", genai.FinishReasonStop, genai.FinishReasonUnspecified:
		default:
			return "", fmt.Errorf("%w: finish reason %s", ErrIncompleteSummary, reason)
		}
	}
	return resp.Text(), nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
