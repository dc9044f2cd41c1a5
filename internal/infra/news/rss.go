package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/resilience/circuitbreaker"
	"ai-news-digest/internal/resilience/retry"
)

// DefaultGoogleNewsBaseURL is the Google News search RSS endpoint.
const DefaultGoogleNewsBaseURL = "https://news.google.com/rss/search"

// RSSFetcher reads Google News search results as RSS using the gofeed library.
// It needs no API key.
type RSSFetcher struct {
	client         *http.Client
	opts           Options
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates a Google News RSS fetcher.
func NewRSSFetcher(opts Options) *RSSFetcher {
	opts = opts.withDefaults()
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleNewsBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &RSSFetcher{
		client:         client,
		opts:           opts,
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
		retryConfig:    retry.NewsAPIConfig(),
	}
}

// Name returns the source name.
func (f *RSSFetcher) Name() string { return SourceGoogleNews }

// Fetch retrieves the search feed and returns at most PageSize items.
func (f *RSSFetcher) Fetch(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("google news circuit breaker open, request rejected",
					slog.String("service", "google-news"),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		articles = cbResult.([]entity.Article)
		return nil
	})

	if retryErr != nil {
		return nil, toNetworkError("google news rss", retryErr)
	}
	return articles, nil
}

// FeedURL returns the search feed URL for the configured query and language.
func (f *RSSFetcher) FeedURL() string {
	lang := f.opts.Language
	if lang == "" {
		lang = "ja"
	}
	region := "JP"
	if lang != "ja" {
		region = strings.ToUpper(lang)
		if lang == "en" {
			region = "US"
		}
	}
	q := url.Values{}
	q.Set("q", f.opts.Query)
	q.Set("hl", lang)
	q.Set("gl", region)
	q.Set("ceid", region+":"+lang)
	return f.opts.BaseURL + "?" + q.Encode()
}

func (f *RSSFetcher) doFetch(ctx context.Context) ([]entity.Article, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "ai-news-digest/1.0"
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(f.FeedURL(), ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		return nil, fmt.Errorf("parse google news feed: %w", err)
	}

	items := feed.Items
	if len(items) > f.opts.PageSize {
		items = items[:f.opts.PageSize]
	}

	articles := make([]entity.Article, 0, len(items))
	for _, it := range items {
		title, source := splitTitleSource(it.Title)
		a := entity.Article{
			Title:       title,
			URL:         strings.TrimSpace(it.Link),
			Source:      source,
			Description: it.Description,
		}
		if it.PublishedParsed != nil {
			a.PublishedAt = *it.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// splitTitleSource separates the " - Publisher" suffix Google News appends to titles.
func splitTitleSource(raw string) (title, source string) {
	raw = strings.TrimSpace(raw)
	i := strings.LastIndex(raw, " - ")
	if i <= 0 {
		return raw, ""
	}
	return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+3:])
}
