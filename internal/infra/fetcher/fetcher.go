// Package fetcher downloads article pages and extracts their plain text.
//
// Two extraction modes are provided: ParagraphFetcher joins the text of every
// <p> element, ReadabilityFetcher runs Mozilla's Readability algorithm. Both
// share the same hardened HTTP client (SSRF checks, redirect and size limits)
// and the "article-fetch" circuit breaker.
package fetcher

import (
	"context"
	"fmt"
	"strings"
)

// Extraction modes accepted by New.
const (
	ModeParagraphs  = "paragraphs"
	ModeReadability = "readability"
)

// ContentFetcher fetches a page and returns its extracted text.
// A nil error with an empty string means the page had no extractable text.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// New returns the ContentFetcher for the given mode.
func New(mode string, config ContentFetchConfig) (ContentFetcher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("content fetch config: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeParagraphs:
		return NewParagraphFetcher(config), nil
	case ModeReadability:
		return NewReadabilityFetcher(config), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}
