package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"ai-news-digest/internal/observability/metrics"
	"ai-news-digest/internal/resilience/circuitbreaker"
)

// page is a downloaded HTML document decoded to UTF-8.
type page struct {
	body     []byte
	finalURL *url.URL
}

// pageClient performs the HTTP side of content fetching.
// It is safe for concurrent use.
type pageClient struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ContentFetchConfig
}

func newPageClient(config ContentFetchConfig) *pageClient {
	if config.UserAgent == "" {
		config.UserAgent = BrowserUserAgent
	}

	pc := &pageClient{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
		config:         config,
	}

	pc.client = &http.Client{
		// Per-request deadlines come from the context in download.
		Timeout: config.Timeout + 5*time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= pc.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			// Each hop is validated for SSRF, not only the first URL.
			if err := validateURL(req.URL.String(), pc.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return pc
}

// fetch downloads urlStr through the circuit breaker and hands the page to
// extract. Content fetch metrics are recorded for every outcome.
func (pc *pageClient) fetch(ctx context.Context, urlStr string, extract func(*page) (string, error)) (string, error) {
	start := time.Now()

	if err := validateURL(urlStr, pc.config.DenyPrivateIPs); err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}

	result, err := pc.circuitBreaker.Execute(func() (interface{}, error) {
		return pc.download(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}

	text, err := extract(result.(*page))
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}
	if text == "" {
		metrics.RecordContentFetchEmpty(time.Since(start))
		slog.Debug("no text extracted", slog.String("url", urlStr))
		return "", nil
	}

	metrics.RecordContentFetchSuccess(time.Since(start), len([]rune(text)))
	return text, nil
}

func (pc *pageClient) download(ctx context.Context, urlStr string) (*page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, pc.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", pc.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := pc.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, pc.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, pc.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > pc.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size exceeds limit %d bytes", ErrBodyTooLarge, pc.config.MaxBodySize)
	}

	body, err := decodeUTF8(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrExtractionFailed, err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return &page{body: body, finalURL: finalURL}, nil
}

// decodeUTF8 converts the body to UTF-8 using the Content-Type charset or,
// failing that, the document's <meta charset>.
func decodeUTF8(raw []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
