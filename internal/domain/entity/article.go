// Package entity defines the core domain entities of the digest job: the
// articles returned by the news source, the digest entries built from them,
// and the error taxonomy shared by every stage.
package entity

import (
	"strings"
	"time"
)

// Article is one item returned by the news source. It lives for a single run.
type Article struct {
	Title       string
	URL         string
	Source      string
	Description string
	PublishedAt time.Time
}

// Placeholders substituted for fields that are missing or failed.
const (
	PlaceholderTitle   = "（タイトル不明）"
	PlaceholderURL     = "（URL不明）"
	PlaceholderSummary = "（要約の生成に失敗しました）"
)

// DigestEntry is the per-article record that ends up in the email body.
type DigestEntry struct {
	Title   string
	Summary string
	URL     string
}

// NewDigestEntry builds an entry from an article and its summary.
// Blank title, URL or summary are replaced by the corresponding placeholder.
func NewDigestEntry(a Article, summary string) DigestEntry {
	return DigestEntry{
		Title:   orPlaceholder(a.Title, PlaceholderTitle),
		Summary: orPlaceholder(summary, PlaceholderSummary),
		URL:     orPlaceholder(a.URL, PlaceholderURL),
	}
}

// SummaryFailed reports whether the entry carries the summary placeholder.
func (e DigestEntry) SummaryFailed() bool {
	return e.Summary == PlaceholderSummary
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
