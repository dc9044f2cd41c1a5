package news

import (
	"context"
	"fmt"

	"ai-news-digest/internal/domain/entity"
)

// Fetcher is implemented by every news source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]entity.Article, error)
	Name() string
}

// New returns the fetcher for source.
func New(source string, opts Options) (Fetcher, error) {
	switch source {
	case SourceNewsAPI, "":
		return NewNewsAPIFetcher(opts)
	case SourceGoogleNews:
		return NewRSSFetcher(opts), nil
	default:
		return nil, configError("NEWS_SOURCE", fmt.Sprintf("unknown news source %q", source))
	}
}
