// Package news implements the news sources queried at the start of a digest
// run: the NewsAPI "everything" endpoint and Google News search RSS.
// Both return at most PageSize articles in the order the source ranks them.
package news

import (
	"fmt"
	"net/http"
	"time"

	"ai-news-digest/internal/domain/entity"
)

// Source names, also used as metric labels.
const (
	SourceNewsAPI    = "newsapi"
	SourceGoogleNews = "googlenews"
)

// Options configure a news source.
type Options struct {
	// APIKey is required by NewsAPI and ignored by RSS.
	APIKey string
	// Query is the search expression.
	Query string
	// PageSize caps the number of articles returned.
	PageSize int
	// Language is passed to the source when non-empty.
	Language string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// BaseURL overrides the source endpoint (tests).
	BaseURL string
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

func configError(key, msg string) error {
	return &entity.ConfigError{Key: key, Err: fmt.Errorf("%s", msg)}
}
