package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/resilience/retry"
)

var fastRetry = retry.Config{
	MaxAttempts:    3,
	InitialDelay:   time.Millisecond,
	MaxDelay:       5 * time.Millisecond,
	Multiplier:     2,
	JitterFraction: 0,
}

func newTestNewsAPIFetcher(t *testing.T, srv *httptest.Server, pageSize int) *NewsAPIFetcher {
	t.Helper()
	f, err := NewNewsAPIFetcher(Options{
		APIKey:   "test-key",
		Query:    `"AI" OR "人工知能"`,
		PageSize: pageSize,
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	f.retryConfig = fastRetry
	return f
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewsAPIFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, `"AI" OR "人工知能"`, r.URL.Query().Get("q"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		assert.False(t, r.URL.Query().Has("language"))
		writeJSON(w, http.StatusOK, `{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{"source": {"id": null, "name": "Tech Daily"}, "title": "A", "url": "https://example.com/a", "publishedAt": "2024-03-01T10:00:00Z"},
				{"source": {"name": "ML Weekly"}, "title": " B ", "url": "https://example.com/b", "description": "desc"}
			]
		}`)
	}))
	defer srv.Close()

	f := newTestNewsAPIFetcher(t, srv, 5)
	got, err := f.Fetch(context.Background())
	require.NoError(t, err)

	want := []entity.Article{
		{Title: "A", URL: "https://example.com/a", Source: "Tech Daily", PublishedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Title: "B", URL: "https://example.com/b", Source: "ML Weekly", Description: "desc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, SourceNewsAPI, f.Name())
}

func TestNewsAPIFetcher_LanguageParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		writeJSON(w, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`)
	}))
	defer srv.Close()

	f, err := NewNewsAPIFetcher(Options{APIKey: "k", Query: "AI", Language: "en", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
}

func TestNewsAPIFetcher_EmptyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`)
	}))
	defer srv.Close()

	got, err := newTestNewsAPIFetcher(t, srv, 5).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewsAPIFetcher_TruncatesToPageSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok","articles":[
			{"title":"1","url":"u1"},{"title":"2","url":"u2"},{"title":"3","url":"u3"}]}`)
	}))
	defer srv.Close()

	got, err := newTestNewsAPIFetcher(t, srv, 2).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Title)
	assert.Equal(t, "2", got[1].Title)
}

func TestNewsAPIFetcher_APIErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`)
	}))
	defer srv.Close()

	_, err := newTestNewsAPIFetcher(t, srv, 5).Fetch(context.Background())

	var netErr *entity.NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)
	assert.Equal(t, "apiKeyInvalid", netErr.Code)
	assert.Contains(t, err.Error(), "Your API key is invalid.")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewsAPIFetcher_RetriesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{"status":"error","code":"unexpectedError","message":"try later"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"status":"ok","articles":[{"title":"A","url":"u1"}]}`)
	}))
	defer srv.Close()

	got, err := newTestNewsAPIFetcher(t, srv, 5).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewsAPIFetcher_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f, err := NewNewsAPIFetcher(Options{APIKey: "k", Query: "AI", BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	f.retryConfig = fastRetry

	_, err = f.Fetch(context.Background())
	var netErr *entity.NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, 0, netErr.StatusCode)
}

func TestNewNewsAPIFetcher_MissingKey(t *testing.T) {
	_, err := NewNewsAPIFetcher(Options{Query: "AI"})

	var cfgErr *entity.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "NEWS_API_KEY", cfgErr.Key)
}

func TestNew_SelectsSource(t *testing.T) {
	f, err := New(SourceGoogleNews, Options{Query: "AI"})
	require.NoError(t, err)
	assert.Equal(t, SourceGoogleNews, f.Name())

	f, err = New(SourceNewsAPI, Options{APIKey: "k", Query: "AI"})
	require.NoError(t, err)
	assert.Equal(t, SourceNewsAPI, f.Name())

	_, err = New("bing", Options{})
	var cfgErr *entity.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
