package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() Alert {
	return Alert{
		RunID:    "run-1",
		Kind:     "network",
		Message:  "newsapi search (HTTP 401) [apiKeyInvalid]: bad key",
		Occurred: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

type recordingServer struct {
	srv      *httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
}

func newRecordingServer(t *testing.T, statuses ...int) *recordingServer {
	t.Helper()
	r := &recordingServer{}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n := int(r.calls.Add(1))
		body, _ := io.ReadAll(req.Body)
		r.lastBody.Store(string(body))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			_, _ = io.WriteString(w, `{"retry_after":0.001}`)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(r.srv.Close)
	return r
}

func fastHook(h *webhook) {
	h.baseDelay = time.Millisecond
}

func TestSlackNotifier_NotifyFailure(t *testing.T) {
	srv := newRecordingServer(t)
	n := NewSlackNotifier(SlackConfig{WebhookURL: srv.srv.URL, Timeout: time.Second})

	err := n.NotifyFailure(context.Background(), testAlert())

	require.NoError(t, err)
	var payload SlackWebhookPayload
	require.NoError(t, json.Unmarshal([]byte(srv.lastBody.Load().(string)), &payload))
	assert.Equal(t, "AI news digest failed (network)", payload.Text)
	require.Len(t, payload.Blocks, 2)
	assert.Contains(t, payload.Blocks[0].Text.Text, "apiKeyInvalid")
	assert.Equal(t, "run run-1 • 2024-05-01T08:00:00Z", payload.Blocks[1].Elements[0].Text)
}

func TestDiscordNotifier_NotifyFailure(t *testing.T) {
	srv := newRecordingServer(t)
	n := NewDiscordNotifier(DiscordConfig{WebhookURL: srv.srv.URL, Timeout: time.Second})

	err := n.NotifyFailure(context.Background(), testAlert())

	require.NoError(t, err)
	var payload DiscordWebhookPayload
	require.NoError(t, json.Unmarshal([]byte(srv.lastBody.Load().(string)), &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "AI news digest run failed (network)", payload.Embeds[0].Title)
	assert.Equal(t, discordRedColor, payload.Embeds[0].Color)
	assert.Equal(t, "run run-1", payload.Embeds[0].Footer.Text)
}

func TestWebhook_RetryBehaviour(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantErr   bool
		wantCalls int32
	}{
		{"success", nil, false, 1},
		{"server error then success", []int{http.StatusBadGateway}, false, 2},
		{"rate limited then success", []int{http.StatusTooManyRequests}, false, 2},
		{"client error not retried", []int{http.StatusNotFound}, true, 1},
		{"server error exhausts attempts", []int{500, 500}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecordingServer(t, tt.statuses...)
			n := NewSlackNotifier(SlackConfig{WebhookURL: srv.srv.URL, Timeout: time.Second})
			fastHook(n.hook)

			err := n.NotifyFailure(context.Background(), testAlert())

			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
			assert.Equal(t, tt.wantCalls, srv.calls.Load())
		})
	}
}

func TestWebhook_ClientErrorType(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden)
	n := NewDiscordNotifier(DiscordConfig{WebhookURL: srv.srv.URL, Timeout: time.Second})

	err := n.NotifyFailure(context.Background(), testAlert())

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusForbidden, clientErr.StatusCode)
}

func TestExtractRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, 1500*time.Millisecond, extractRetryAfter(resp, []byte(`{"retry_after":1.5}`)))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, extractRetryAfter(resp, []byte("rate limited")))

	assert.Equal(t, 5*time.Second, extractRetryAfter(&http.Response{Header: http.Header{}}, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10, "..."))
	assert.Equal(t, "あいう...", truncate("あいうえおかきくけこ", 6, "..."))
	assert.Equal(t, 6, len([]rune(truncate(strings.Repeat("x", 20), 6, "..."))))
}

type stubAlerter struct {
	calls int
	err   error
}

func (s *stubAlerter) NotifyFailure(context.Context, Alert) error {
	s.calls++
	return s.err
}

func TestMultiAlerter(t *testing.T) {
	a := &stubAlerter{err: errors.New("slack down")}
	b := &stubAlerter{}

	err := MultiAlerter{a, b}.NotifyFailure(context.Background(), testAlert())

	assert.ErrorContains(t, err, "slack down")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls, "later channels are still tried")
}

func TestNew(t *testing.T) {
	assert.IsType(t, &NoOpAlerter{}, New(Config{}))
	assert.IsType(t, &SlackNotifier{}, New(Config{SlackWebhookURL: "https://hooks.slack.com/x"}))
	assert.IsType(t, &DiscordNotifier{}, New(Config{DiscordWebhookURL: "https://discord.com/api/webhooks/x"}))
	assert.IsType(t, MultiAlerter{}, New(Config{
		SlackWebhookURL:   "https://hooks.slack.com/x",
		DiscordWebhookURL: "https://discord.com/api/webhooks/x",
	}))
	assert.NoError(t, NewNoOpAlerter().NotifyFailure(context.Background(), testAlert()))
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(1.0, 1)
	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Allow(ctx), "second token is not available within 50ms")
}
