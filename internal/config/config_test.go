package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-news-digest/internal/domain/entity"
)

var digestEnvKeys = []string{
	"TO_EMAIL", "NEWS_SOURCE", "NEWS_API_KEY", "NEWS_QUERY", "NEWS_PAGE_SIZE",
	"NEWS_LANGUAGE", "NEWS_FETCH_TIMEOUT", "SUMMARIZER_TYPE", "GEMINI_API_KEY",
	"GEMINI_MODEL", "ANTHROPIC_API_KEY", "CLAUDE_MODEL", "OPENAI_API_KEY",
	"OPENAI_MODEL", "SUMMARIZER_CHAR_LIMIT", "SUMMARIZER_TIMEOUT",
	"EXTRACTOR_MODE", "CONTENT_FETCH_TIMEOUT", "GMAIL_TOKEN_FILE",
	"GMAIL_CLIENT_SECRET_FILE", "GMAIL_INTERACTIVE_AUTH", "GMAIL_SEND_TIMEOUT",
	"SLACK_ALERT_WEBHOOK_URL", "DISCORD_ALERT_WEBHOOK_URL", "DIGEST_PARALLELISM",
	"DIGEST_TIMEZONE", "RUN_TIMEOUT", "METRICS_TEXTFILE",
}

func clearDigestEnv(t *testing.T) {
	t.Helper()
	for _, k := range digestEnvKeys {
		t.Setenv(k, "")
	}
}

func validEnv(t *testing.T) {
	t.Helper()
	clearDigestEnv(t)
	t.Setenv("TO_EMAIL", "reader@example.com")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "reader@example.com", cfg.Recipient)
	assert.Equal(t, NewsSourceNewsAPI, cfg.News.Source)
	assert.Equal(t, DefaultNewsQuery, cfg.News.Query)
	assert.Equal(t, 5, cfg.News.PageSize)
	assert.Equal(t, "", cfg.News.Language)
	assert.Equal(t, SummarizerGemini, cfg.Summarizer.Type)
	assert.Equal(t, "gemini-2.5-flash", cfg.Summarizer.GeminiModel)
	assert.Equal(t, 200, cfg.Summarizer.CharLimit)
	assert.Equal(t, ExtractorParagraphs, cfg.Extractor.Mode)
	assert.Equal(t, 10*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, "token.json", cfg.Gmail.TokenFile)
	assert.Equal(t, "client_secret.json", cfg.Gmail.ClientSecretFile)
	assert.True(t, cfg.Gmail.Interactive)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
}

func TestLoad_CustomValues(t *testing.T) {
	validEnv(t)
	t.Setenv("NEWS_SOURCE", "GoogleNews")
	t.Setenv("NEWS_PAGE_SIZE", "10")
	t.Setenv("SUMMARIZER_TYPE", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("EXTRACTOR_MODE", "readability")
	t.Setenv("GMAIL_INTERACTIVE_AUTH", "false")
	t.Setenv("DIGEST_PARALLELISM", "1")
	t.Setenv("RUN_TIMEOUT", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, NewsSourceGoogleNews, cfg.News.Source)
	assert.Equal(t, 10, cfg.News.PageSize)
	assert.Equal(t, SummarizerClaude, cfg.Summarizer.Type)
	assert.Equal(t, ExtractorReadability, cfg.Extractor.Mode)
	assert.False(t, cfg.Gmail.Interactive)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
}

func TestLoad_MalformedValue(t *testing.T) {
	validEnv(t)
	t.Setenv("NEWS_PAGE_SIZE", "five")

	_, err := Load()

	var cfgErr *entity.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "NEWS_PAGE_SIZE", cfgErr.Key)
}

func TestValidate_MissingRecipient(t *testing.T) {
	validEnv(t)
	t.Setenv("TO_EMAIL", "")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	var cfgErr *entity.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "TO_EMAIL", cfgErr.Key)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"news api key missing", func(c *Config) { c.News.APIKey = "" }, "NEWS_API_KEY"},
		{"google news needs no key", func(c *Config) { c.News.Source = NewsSourceGoogleNews; c.News.APIKey = "" }, ""},
		{"unknown news source", func(c *Config) { c.News.Source = "bing" }, "NEWS_SOURCE"},
		{"page size too large", func(c *Config) { c.News.PageSize = 101 }, "NEWS_PAGE_SIZE"},
		{"gemini key missing", func(c *Config) { c.Summarizer.GeminiAPIKey = "" }, "GEMINI_API_KEY"},
		{"openai key missing", func(c *Config) { c.Summarizer.Type = SummarizerOpenAI }, "OPENAI_API_KEY"},
		{"noop needs no key", func(c *Config) { c.Summarizer.Type = SummarizerNoOp; c.Summarizer.GeminiAPIKey = "" }, ""},
		{"unknown summarizer", func(c *Config) { c.Summarizer.Type = "bard" }, "SUMMARIZER_TYPE"},
		{"char limit too small", func(c *Config) { c.Summarizer.CharLimit = 50 }, "SUMMARIZER_CHAR_LIMIT"},
		{"unknown extractor", func(c *Config) { c.Extractor.Mode = "headless" }, "EXTRACTOR_MODE"},
		{"parallelism zero", func(c *Config) { c.Parallelism = 0 }, "DIGEST_PARALLELISM"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "DIGEST_TIMEZONE"},
		{"no client secret for interactive", func(c *Config) { c.Gmail.ClientSecretFile = "" }, "GMAIL_CLIENT_SECRET_FILE"},
		{"headless needs no client secret", func(c *Config) { c.Gmail.Interactive = false; c.Gmail.ClientSecretFile = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Recipient = "reader@example.com"
			cfg.News.APIKey = "k"
			cfg.Summarizer.GeminiAPIKey = "k"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *entity.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.News.APIKey = ""
	cfg.Summarizer.GeminiAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient is required")
	assert.Contains(t, err.Error(), "NEWS_API_KEY is required")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is required")
}

func TestValidateForAuthorize_IgnoresRecipient(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ValidateForAuthorize())

	cfg.Gmail.TokenFile = ""
	assert.Error(t, cfg.ValidateForAuthorize())
}

func TestLocation(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "UTC"
	assert.Equal(t, time.UTC.String(), cfg.Location().String())

	cfg.Timezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, cfg.Location())
}
