package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/resilience/circuitbreaker"
	"ai-news-digest/internal/resilience/retry"
)

// DefaultNewsAPIBaseURL is the NewsAPI v2 endpoint root.
const DefaultNewsAPIBaseURL = "https://newsapi.org"

const newsAPIEverythingPath = "/v2/everything"

// NewsAPIFetcher queries the NewsAPI "everything" endpoint.
// It includes circuit breaker and retry logic for improved reliability.
type NewsAPIFetcher struct {
	client         *resty.Client
	opts           Options
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// newsAPIStatusError carries the NewsAPI error body next to the HTTP status.
type newsAPIStatusError struct {
	retry.HTTPError
	Code string
}

func (e *newsAPIStatusError) Unwrap() error { return &e.HTTPError }

// NewNewsAPIFetcher creates a fetcher. A missing API key is a configuration error.
func NewNewsAPIFetcher(opts Options) (*NewsAPIFetcher, error) {
	opts = opts.withDefaults()
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, configError("NEWS_API_KEY", "NEWS_API_KEY is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNewsAPIBaseURL
	}

	client := resty.New()
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	}
	client.
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ai-news-digest/1.0")

	return &NewsAPIFetcher{
		client:         client,
		opts:           opts,
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
		retryConfig:    retry.NewsAPIConfig(),
	}, nil
}

// Name returns the source name.
func (f *NewsAPIFetcher) Name() string { return SourceNewsAPI }

// Fetch runs the configured query once. An empty result is a success.
// Any failure is returned as *entity.NetworkError.
func (f *NewsAPIFetcher) Fetch(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("news api circuit breaker open, request rejected",
					slog.String("service", "news-api"),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		articles = cbResult.([]entity.Article)
		return nil
	})

	if retryErr != nil {
		return nil, toNetworkError("newsapi search", retryErr)
	}
	return articles, nil
}

func (f *NewsAPIFetcher) doFetch(ctx context.Context) ([]entity.Article, error) {
	params := map[string]string{
		"q":        f.opts.Query,
		"sortBy":   "publishedAt",
		"pageSize": strconv.Itoa(f.opts.PageSize),
	}
	if f.opts.Language != "" {
		params["language"] = f.opts.Language
	}

	var body newsAPIResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", f.opts.APIKey).
		SetQueryParams(params).
		SetResult(&body).
		SetError(&body).
		Get(newsAPIEverythingPath)
	if err != nil {
		return nil, fmt.Errorf("request news api: %w", err)
	}

	if resp.IsError() || body.Status == "error" {
		status := resp.StatusCode()
		if status < http.StatusBadRequest {
			// NewsAPI reported an error inside a 2xx body.
			status = http.StatusBadGateway
		}
		msg := body.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return nil, &newsAPIStatusError{
			HTTPError: retry.HTTPError{StatusCode: status, Message: msg},
			Code:      body.Code,
		}
	}

	return f.toArticles(body.Articles), nil
}

func (f *NewsAPIFetcher) toArticles(in []newsAPIArticle) []entity.Article {
	if len(in) > f.opts.PageSize {
		in = in[:f.opts.PageSize]
	}
	out := make([]entity.Article, 0, len(in))
	for _, a := range in {
		var published time.Time
		if a.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				published = t
			}
		}
		out = append(out, entity.Article{
			Title:       strings.TrimSpace(a.Title),
			URL:         strings.TrimSpace(a.URL),
			Source:      a.Source.Name,
			Description: a.Description,
			PublishedAt: published,
		})
	}
	return out
}

func toNetworkError(op string, err error) error {
	netErr := &entity.NetworkError{Op: op, Err: err}
	var statusErr *newsAPIStatusError
	if errors.As(err, &statusErr) {
		netErr.StatusCode = statusErr.StatusCode
		netErr.Code = statusErr.Code
		return netErr
	}
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		netErr.StatusCode = httpErr.StatusCode
	}
	return netErr
}
