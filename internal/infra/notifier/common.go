package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ai-news-digest/internal/utils/text"
)

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// isRetryableError reports 5xx and transport errors. 4xx is final and 429 is
// handled separately.
func isRetryableError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	var rateLimitErr *RateLimitError
	return !errors.As(err, &rateLimitErr)
}

// truncate shortens s to maxRunes including the suffix.
func truncate(s string, maxRunes int, suffix string) string {
	if text.CountRunes(s) <= maxRunes {
		return s
	}
	limit := maxRunes - text.CountRunes(suffix)
	if limit < 0 {
		limit = 0
	}
	return text.TruncateRunes(s, limit, suffix)
}

// webhook posts JSON payloads to one URL with rate limiting and a short
// retry loop.
type webhook struct {
	name        string
	url         string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	maxAttempts int
	baseDelay   time.Duration
}

func newWebhook(name, url string, timeout time.Duration, limiter *RateLimiter) *webhook {
	return &webhook{
		name:        name,
		url:         url,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
		maxAttempts: 2,
		baseDelay:   5 * time.Second,
	}
}

// post sends payload once and classifies the response.
func (w *webhook) post(ctx context.Context, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.name + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s webhook client error %d: %s", w.name, resp.StatusCode, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s webhook server error %d: %s", w.name, resp.StatusCode, string(body)),
		}
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}
}

// send waits for the rate limiter, then posts with retry. 429 waits for the
// advertised retry_after; 5xx and transport errors back off linearly.
func (w *webhook) send(ctx context.Context, runID string, payload any) error {
	if err := w.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.post(ctx, payload)
		if err == nil {
			slog.Debug("alert delivered",
				slog.String("channel", w.name),
				slog.String("run_id", runID),
				slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		var delay time.Duration
		var rateLimitErr *RateLimitError
		switch {
		case errors.As(err, &rateLimitErr):
			delay = rateLimitErr.RetryAfter
		case isRetryableError(err):
			delay = w.baseDelay * time.Duration(attempt)
		default:
			return err
		}
		if attempt == w.maxAttempts {
			break
		}

		slog.Warn("alert webhook failed, retrying",
			slog.String("channel", w.name),
			slog.String("run_id", runID),
			slog.Any("error", err),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("%s alert failed after %d attempts: %w", w.name, w.maxAttempts, lastErr)
}

// extractRetryAfter reads retry_after (seconds) from a JSON body, then the
// Retry-After header, defaulting to 5s.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}
