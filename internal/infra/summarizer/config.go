package summarizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-news-digest/internal/utils/text"
)

const (
	// minCharLimit is the minimum allowed character limit for summaries.
	minCharLimit = 100

	// maxCharLimit is the maximum allowed character limit for summaries.
	maxCharLimit = 5000

	// DefaultCharLimit is the target summary length in characters.
	DefaultCharLimit = 200

	// MaxInputRunes bounds the article text sent to a model.
	MaxInputRunes = 10000

	truncationSuffix = "...\n(内容が長いため切り詰めました)"
)

// ErrEmptyInput is returned for blank text. No API call is made.
var ErrEmptyInput = errors.New("summarizer: empty input text")

// Config holds the parameters shared by every summarizer backend.
type Config struct {
	// CharacterLimit is the approximate summary length requested from the model.
	// Valid range: 100-5000 characters. Default: 200.
	CharacterLimit int

	// Model is the provider-specific model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout bounds a single Summarize call including retries.
	Timeout time.Duration
}

// DefaultConfig returns a Config for the given model with default limits.
func DefaultConfig(model string) Config {
	return Config{
		CharacterLimit: DefaultCharLimit,
		Model:          model,
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// ValidateCharacterLimit validates that the character limit is within the valid range (100-5000).
//
// Example:
//
//	err := ValidateCharacterLimit(200)  // nil (valid)
//	err := ValidateCharacterLimit(50)   // error: "character limit 50 is below minimum 100"
//	err := ValidateCharacterLimit(6000) // error: "character limit 6000 exceeds maximum 5000"
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}

// BuildPrompt returns the Japanese summarization prompt for text.
//
// Example output for limit 200:
//
//	以下のニュース記事を日本語で200字程度に要約してください。
//
//	---
//	{text}
//	---
func BuildPrompt(articleText string, charLimit int) string {
	return fmt.Sprintf("以下のニュース記事を日本語で%d字程度に要約してください。\n\n---\n%s\n---", charLimit, articleText)
}

// prepareInput rejects blank text and truncates long text to MaxInputRunes.
// The second result reports whether truncation happened.
func prepareInput(articleText string) (string, bool, error) {
	if strings.TrimSpace(articleText) == "" {
		return "", false, ErrEmptyInput
	}
	if text.CountRunes(articleText) <= MaxInputRunes {
		return articleText, false, nil
	}
	return text.TruncateRunes(articleText, MaxInputRunes, truncationSuffix), true, nil
}
