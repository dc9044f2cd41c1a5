package summarizer

import (
	"context"

	"ai-news-digest/internal/utils/text"
)

// NoOp is a summarizer that returns the leading part of the text unchanged.
// It is useful for dry runs and development without an API key.
type NoOp struct {
	limit int
}

// NewNoOp creates a NoOp summarizer that keeps at most charLimit runes.
func NewNoOp(charLimit int) *NoOp {
	if charLimit <= 0 {
		charLimit = DefaultCharLimit
	}
	return &NoOp{limit: charLimit}
}

// Summarize returns text truncated to the character limit.
func (n *NoOp) Summarize(_ context.Context, articleText string) (string, error) {
	input, _, err := prepareInput(articleText)
	if err != nil {
		return "", err
	}
	return text.TruncateRunes(input, n.limit, "..."), nil
}
