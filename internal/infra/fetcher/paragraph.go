package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParagraphFetcher extracts article text by joining the text of every <p>
// element in document order, one paragraph per line.
type ParagraphFetcher struct {
	pages *pageClient
}

// NewParagraphFetcher creates a ParagraphFetcher.
func NewParagraphFetcher(config ContentFetchConfig) *ParagraphFetcher {
	return &ParagraphFetcher{pages: newPageClient(config)}
}

// FetchContent downloads url and returns its paragraph text.
// An empty string with a nil error means the page had no <p> text.
func (f *ParagraphFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	return f.pages.fetch(ctx, url, extractParagraphs)
}

func extractParagraphs(p *page) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", ErrExtractionFailed, err)
	}
	return ParagraphText(doc), nil
}

// ParagraphText returns the text of every <p> in doc, as is, joined with "\n".
func ParagraphText(doc *goquery.Document) string {
	paragraphs := doc.Find("p").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return strings.Join(paragraphs, "\n")
}
