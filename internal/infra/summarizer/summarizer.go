// Package summarizer turns article text into short Japanese summaries.
// It includes adapters for Gemini, Claude (Anthropic) and OpenAI with retry,
// circuit breaker and Prometheus metrics shared across providers.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"ai-news-digest/internal/resilience/circuitbreaker"
	"ai-news-digest/internal/resilience/retry"
	"ai-news-digest/internal/utils/text"
)

// Summarizer produces a summary for one article's text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// generateFunc performs a single provider API call for prompt.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// engine holds what every provider shares: prompt building, input limits,
// retry, circuit breaker, logging and metrics.
type engine struct {
	provider        string
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder SummaryMetricsRecorder
}

func newEngine(provider string, cbConfig circuitbreaker.Config, config Config) engine {
	return engine{
		provider:        provider,
		circuitBreaker:  circuitbreaker.New(cbConfig),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// summarize validates and truncates the input, then runs generate through
// retry and the circuit breaker.
func (e *engine) summarize(ctx context.Context, articleText string, generate generateFunc) (string, error) {
	input, truncated, err := prepareInput(articleText)
	if err != nil {
		return "", err
	}

	requestID := uuid.New().String()
	if truncated {
		slog.DebugContext(ctx, "text truncated before summarization",
			slog.String("provider", e.provider),
			slog.String("request_id", requestID),
			slog.Int("original_length", text.CountRunes(articleText)),
			slog.Int("truncated_length", text.CountRunes(input)))
	}

	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildPrompt(input, e.config.CharacterLimit)
	var result string

	retryErr := retry.WithBackoff(ctx, e.retryConfig, func() error {
		cbResult, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			return e.doSummarize(ctx, requestID, prompt, generate)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				slog.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
					slog.String("service", e.circuitBreaker.Name()),
					slog.String("state", e.circuitBreaker.State().String()))
				return fmt.Errorf("%s api unavailable: %w", e.provider, err)
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s summarize failed: %w", e.provider, retryErr)
	}

	return result, nil
}

// doSummarize performs one API call without retry or circuit breaker and
// records the summary metrics.
func (e *engine) doSummarize(ctx context.Context, requestID, prompt string, generate generateFunc) (string, error) {
	start := time.Now()
	summary, err := generate(ctx, prompt)
	duration := time.Since(start)

	if err != nil {
		slog.DebugContext(ctx, "summarization call failed",
			slog.String("provider", e.provider),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", err
	}
	if summary == "" {
		return "", fmt.Errorf("%s api returned empty response", e.provider)
	}

	summaryLength := text.CountRunes(summary)
	withinLimit := summaryLength <= e.config.CharacterLimit

	slog.DebugContext(ctx, "summarization completed",
		slog.String("provider", e.provider),
		slog.String("request_id", requestID),
		slog.Int("summary_length", summaryLength),
		slog.Int("character_limit", e.config.CharacterLimit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	e.metricsRecorder.RecordLength(summaryLength)
	e.metricsRecorder.RecordDuration(duration)
	e.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		e.metricsRecorder.RecordLimitExceeded()
	}

	return summary, nil
}

// statusError attaches an HTTP status to a provider error so that
// retry.IsRetryable can classify it. err stays reachable through errors.As.
func statusError(provider string, status int, err error) error {
	if status == 0 {
		return fmt.Errorf("%s api error: %w", provider, err)
	}
	return fmt.Errorf("%s api error: %w: %w", provider, &retry.HTTPError{StatusCode: status, Message: err.Error()}, err)
}
