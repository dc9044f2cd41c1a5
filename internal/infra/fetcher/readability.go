package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ReadabilityFetcher extracts the main article body with Mozilla's
// Readability algorithm (go-shiori/go-readability).
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	pages *pageClient
}

// NewReadabilityFetcher creates a ReadabilityFetcher.
//
// Example:
//
//	f := NewReadabilityFetcher(DefaultConfig())
//	text, err := f.FetchContent(ctx, "https://example.com/article")
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	return &ReadabilityFetcher{pages: newPageClient(config)}
}

// FetchContent downloads url and returns the readable article text.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	return f.pages.fetch(ctx, url, extractReadable)
}

func extractReadable(p *page) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(p.body), p.finalURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" && strings.TrimSpace(article.Content) != "" {
		slog.Debug("readability returned markup only",
			slog.String("url", p.finalURL.String()),
			slog.Int("content_length", len(article.Content)))
	}
	return text, nil
}
