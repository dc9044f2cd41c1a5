package digest

import (
	"context"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/infra/notifier"
)

// NewsFetcher returns the articles of one news query.
type NewsFetcher interface {
	Fetch(ctx context.Context) ([]entity.Article, error)
	Name() string
}

// ContentFetcher extracts the readable text of an article page.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Summarizer produces a short Japanese summary of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Mailer delivers one message and returns the provider's message ID.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// Alerter is notified when a run fails.
type Alerter interface {
	NotifyFailure(ctx context.Context, alert notifier.Alert) error
}
