// Package config loads the digest job configuration from the environment.
// Unlike the scheduler settings, every value here fails closed: a missing
// required key or a malformed value is reported as *entity.ConfigError and
// the run does not start.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-news-digest/internal/domain/entity"
	pkgconfig "ai-news-digest/internal/pkg/config"
	envconfig "ai-news-digest/pkg/config"
)

// News sources.
const (
	NewsSourceNewsAPI    = "newsapi"
	NewsSourceGoogleNews = "googlenews"
)

// Summarizer types.
const (
	SummarizerGemini = "gemini"
	SummarizerClaude = "claude"
	SummarizerOpenAI = "openai"
	SummarizerNoOp   = "noop"
)

// Extractor modes.
const (
	ExtractorParagraphs  = "paragraphs"
	ExtractorReadability = "readability"
)

// DefaultNewsQuery matches English and Japanese AI coverage.
const DefaultNewsQuery = `"AI" OR "人工知能" OR "機械学習"`

// Config is the complete configuration of one digest run.
type Config struct {
	// Recipient is the single address the digest is sent to (TO_EMAIL).
	Recipient string

	News       NewsConfig
	Summarizer SummarizerConfig
	Extractor  ExtractorConfig
	Gmail      GmailConfig
	Alerts     AlertConfig

	// Parallelism bounds concurrent per-article work. Range 1-10.
	Parallelism int
	// Timezone is the IANA zone used for the date in the subject line.
	Timezone string
	// RunTimeout bounds one whole run.
	RunTimeout time.Duration
	// MetricsTextfile, when set, receives the Prometheus metrics after a one-shot run.
	MetricsTextfile string
}

// NewsConfig configures the news source.
type NewsConfig struct {
	Source   string
	APIKey   string
	Query    string
	PageSize int
	Language string
	Timeout  time.Duration
}

// SummarizerConfig configures the summarization backend.
type SummarizerConfig struct {
	Type            string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	ClaudeModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	CharLimit       int
	Timeout         time.Duration
}

// ExtractorConfig configures article text extraction.
type ExtractorConfig struct {
	Mode    string
	Timeout time.Duration
}

// GmailConfig configures mail delivery and its OAuth credential.
type GmailConfig struct {
	TokenFile        string
	ClientSecretFile string
	Interactive      bool
	Timeout          time.Duration
}

// AlertConfig configures optional failure alerts.
type AlertConfig struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		News: NewsConfig{
			Source:   NewsSourceNewsAPI,
			Query:    DefaultNewsQuery,
			PageSize: 5,
			Timeout:  30 * time.Second,
		},
		Summarizer: SummarizerConfig{
			Type:        SummarizerGemini,
			GeminiModel: "gemini-2.5-flash",
			CharLimit:   200,
			Timeout:     60 * time.Second,
		},
		Extractor: ExtractorConfig{
			Mode:    ExtractorParagraphs,
			Timeout: 10 * time.Second,
		},
		Gmail: GmailConfig{
			TokenFile:        "token.json",
			ClientSecretFile: "client_secret.json",
			Interactive:      true,
			Timeout:          30 * time.Second,
		},
		Parallelism: 3,
		Timezone:    "Asia/Tokyo",
		RunTimeout:  10 * time.Minute,
	}
}

// Load reads the configuration from the environment. It only reports values
// that cannot be parsed; call Validate before starting a run.
func Load() (*Config, error) {
	cfg := Default()
	var errs []error
	keyOf := ""

	note := func(key string, err error) {
		if err != nil {
			if keyOf == "" {
				keyOf = key
			}
			errs = append(errs, err)
		}
	}

	cfg.Recipient = envconfig.GetEnvString("TO_EMAIL", "")

	cfg.News.Source = strings.ToLower(envconfig.GetEnvString("NEWS_SOURCE", cfg.News.Source))
	cfg.News.APIKey = envconfig.GetEnvString("NEWS_API_KEY", "")
	cfg.News.Query = envconfig.GetEnvString("NEWS_QUERY", cfg.News.Query)
	cfg.News.Language = envconfig.GetEnvString("NEWS_LANGUAGE", "")
	var err error
	cfg.News.PageSize, err = envconfig.GetEnvInt("NEWS_PAGE_SIZE", cfg.News.PageSize)
	note("NEWS_PAGE_SIZE", err)
	cfg.News.Timeout, err = envconfig.GetEnvDuration("NEWS_FETCH_TIMEOUT", cfg.News.Timeout)
	note("NEWS_FETCH_TIMEOUT", err)

	cfg.Summarizer.Type = strings.ToLower(envconfig.GetEnvString("SUMMARIZER_TYPE", cfg.Summarizer.Type))
	cfg.Summarizer.GeminiAPIKey = envconfig.GetEnvString("GEMINI_API_KEY", "")
	cfg.Summarizer.GeminiModel = envconfig.GetEnvString("GEMINI_MODEL", cfg.Summarizer.GeminiModel)
	cfg.Summarizer.AnthropicAPIKey = envconfig.GetEnvString("ANTHROPIC_API_KEY", "")
	cfg.Summarizer.ClaudeModel = envconfig.GetEnvString("CLAUDE_MODEL", "")
	cfg.Summarizer.OpenAIAPIKey = envconfig.GetEnvString("OPENAI_API_KEY", "")
	cfg.Summarizer.OpenAIModel = envconfig.GetEnvString("OPENAI_MODEL", "")
	cfg.Summarizer.CharLimit, err = envconfig.GetEnvInt("SUMMARIZER_CHAR_LIMIT", cfg.Summarizer.CharLimit)
	note("SUMMARIZER_CHAR_LIMIT", err)
	cfg.Summarizer.Timeout, err = envconfig.GetEnvDuration("SUMMARIZER_TIMEOUT", cfg.Summarizer.Timeout)
	note("SUMMARIZER_TIMEOUT", err)

	cfg.Extractor.Mode = strings.ToLower(envconfig.GetEnvString("EXTRACTOR_MODE", cfg.Extractor.Mode))
	cfg.Extractor.Timeout, err = envconfig.GetEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Extractor.Timeout)
	note("CONTENT_FETCH_TIMEOUT", err)

	cfg.Gmail.TokenFile = envconfig.GetEnvString("GMAIL_TOKEN_FILE", cfg.Gmail.TokenFile)
	cfg.Gmail.ClientSecretFile = envconfig.GetEnvString("GMAIL_CLIENT_SECRET_FILE", cfg.Gmail.ClientSecretFile)
	cfg.Gmail.Interactive, err = envconfig.GetEnvBool("GMAIL_INTERACTIVE_AUTH", cfg.Gmail.Interactive)
	note("GMAIL_INTERACTIVE_AUTH", err)
	cfg.Gmail.Timeout, err = envconfig.GetEnvDuration("GMAIL_SEND_TIMEOUT", cfg.Gmail.Timeout)
	note("GMAIL_SEND_TIMEOUT", err)

	cfg.Alerts.SlackWebhookURL = envconfig.GetEnvString("SLACK_ALERT_WEBHOOK_URL", "")
	cfg.Alerts.DiscordWebhookURL = envconfig.GetEnvString("DISCORD_ALERT_WEBHOOK_URL", "")

	cfg.Parallelism, err = envconfig.GetEnvInt("DIGEST_PARALLELISM", cfg.Parallelism)
	note("DIGEST_PARALLELISM", err)
	cfg.Timezone = envconfig.GetEnvString("DIGEST_TIMEZONE", cfg.Timezone)
	cfg.RunTimeout, err = envconfig.GetEnvDuration("RUN_TIMEOUT", cfg.RunTimeout)
	note("RUN_TIMEOUT", err)
	cfg.MetricsTextfile = envconfig.GetEnvString("METRICS_TEXTFILE", "")

	if len(errs) > 0 {
		return &cfg, &entity.ConfigError{Key: keyOf, Err: errors.Join(errs...)}
	}
	return &cfg, nil
}

// Validate checks everything a digest run needs, recipient included.
// All problems are reported together; Key names the first one.
func (c *Config) Validate() error {
	v := &validation{}

	if err := entity.ValidateRecipient(c.Recipient); err != nil {
		v.add("TO_EMAIL", err)
	}

	switch c.News.Source {
	case NewsSourceNewsAPI:
		if c.News.APIKey == "" {
			v.add("NEWS_API_KEY", errors.New("NEWS_API_KEY is required when NEWS_SOURCE=newsapi"))
		}
	case NewsSourceGoogleNews:
	default:
		v.add("NEWS_SOURCE", pkgconfig.ValidateOneOf(c.News.Source, NewsSourceNewsAPI, NewsSourceGoogleNews))
	}
	if strings.TrimSpace(c.News.Query) == "" {
		v.add("NEWS_QUERY", errors.New("NEWS_QUERY cannot be empty"))
	}
	v.add("NEWS_PAGE_SIZE", wrap("NEWS_PAGE_SIZE", pkgconfig.ValidateIntRange(c.News.PageSize, 1, 100)))
	v.add("NEWS_FETCH_TIMEOUT", wrap("NEWS_FETCH_TIMEOUT", pkgconfig.ValidatePositiveDuration(c.News.Timeout)))

	v.merge(c.validateSummarizer())

	v.add("EXTRACTOR_MODE", wrap("EXTRACTOR_MODE", pkgconfig.ValidateOneOf(c.Extractor.Mode, ExtractorParagraphs, ExtractorReadability)))
	v.add("CONTENT_FETCH_TIMEOUT", wrap("CONTENT_FETCH_TIMEOUT", pkgconfig.ValidateDuration(c.Extractor.Timeout, time.Second, 2*time.Minute)))

	v.merge(c.validateGmail())

	v.add("DIGEST_PARALLELISM", wrap("DIGEST_PARALLELISM", pkgconfig.ValidateIntRange(c.Parallelism, 1, 10)))
	v.add("DIGEST_TIMEZONE", wrap("DIGEST_TIMEZONE", pkgconfig.ValidateTimezone(c.Timezone)))
	v.add("RUN_TIMEOUT", wrap("RUN_TIMEOUT", pkgconfig.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour)))

	return v.err()
}

// ValidateForAuthorize checks only what the -authorize mode needs.
func (c *Config) ValidateForAuthorize() error {
	v := c.validateGmail()
	return v.err()
}

func (c *Config) validateSummarizer() *validation {
	v := &validation{}
	s := c.Summarizer
	switch s.Type {
	case SummarizerGemini:
		if s.GeminiAPIKey == "" {
			v.add("GEMINI_API_KEY", errors.New("GEMINI_API_KEY is required when SUMMARIZER_TYPE=gemini"))
		}
		if s.GeminiModel == "" {
			v.add("GEMINI_MODEL", errors.New("GEMINI_MODEL cannot be empty"))
		}
	case SummarizerClaude:
		if s.AnthropicAPIKey == "" {
			v.add("ANTHROPIC_API_KEY", errors.New("ANTHROPIC_API_KEY is required when SUMMARIZER_TYPE=claude"))
		}
	case SummarizerOpenAI:
		if s.OpenAIAPIKey == "" {
			v.add("OPENAI_API_KEY", errors.New("OPENAI_API_KEY is required when SUMMARIZER_TYPE=openai"))
		}
	case SummarizerNoOp:
	default:
		v.add("SUMMARIZER_TYPE", wrap("SUMMARIZER_TYPE", pkgconfig.ValidateOneOf(s.Type, SummarizerGemini, SummarizerClaude, SummarizerOpenAI, SummarizerNoOp)))
	}
	v.add("SUMMARIZER_CHAR_LIMIT", wrap("SUMMARIZER_CHAR_LIMIT", pkgconfig.ValidateIntRange(s.CharLimit, 100, 5000)))
	v.add("SUMMARIZER_TIMEOUT", wrap("SUMMARIZER_TIMEOUT", pkgconfig.ValidatePositiveDuration(s.Timeout)))
	return v
}

func (c *Config) validateGmail() *validation {
	v := &validation{}
	if c.Gmail.TokenFile == "" {
		v.add("GMAIL_TOKEN_FILE", errors.New("GMAIL_TOKEN_FILE cannot be empty"))
	}
	if c.Gmail.Interactive && c.Gmail.ClientSecretFile == "" {
		v.add("GMAIL_CLIENT_SECRET_FILE", errors.New("GMAIL_CLIENT_SECRET_FILE is required for interactive authorization"))
	}
	v.add("GMAIL_SEND_TIMEOUT", wrap("GMAIL_SEND_TIMEOUT", pkgconfig.ValidatePositiveDuration(c.Gmail.Timeout)))
	return v
}

// Location loads the digest time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type validation struct {
	firstKey string
	errs     []error
}

func (v *validation) add(key string, err error) {
	if err == nil {
		return
	}
	if v.firstKey == "" {
		v.firstKey = key
	}
	v.errs = append(v.errs, err)
}

func (v *validation) merge(other *validation) {
	if other.firstKey != "" && v.firstKey == "" {
		v.firstKey = other.firstKey
	}
	v.errs = append(v.errs, other.errs...)
}

func (v *validation) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &entity.ConfigError{Key: v.firstKey, Err: errors.Join(v.errs...)}
}

func wrap(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}
