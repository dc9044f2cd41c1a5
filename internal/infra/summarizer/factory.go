package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	TypeGemini = "gemini"
	TypeClaude = "claude"
	TypeOpenAI = "openai"
	TypeNoOp   = "noop"
)

// Options selects and configures a summarizer backend.
type Options struct {
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

// New returns the Summarizer named by opts.Type. An empty type selects Gemini.
func New(ctx context.Context, opts Options) (Summarizer, error) {
	cfg := DefaultConfig("")
	if opts.CharLimit > 0 {
		cfg.CharacterLimit = opts.CharLimit
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	var (
		s   Summarizer
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Type)) {
	case "", TypeGemini:
		cfg.Model = opts.GeminiModel
		s, err = NewGemini(ctx, opts.GeminiAPIKey, cfg)
	case TypeClaude:
		cfg.Model = opts.ClaudeModel
		s, err = NewClaude(opts.AnthropicAPIKey, cfg)
	case TypeOpenAI:
		cfg.Model = opts.OpenAIModel
		s, err = NewOpenAI(opts.OpenAIAPIKey, cfg, "")
	case TypeNoOp:
		s = NewNoOp(cfg.CharacterLimit)
	default:
		err = fmt.Errorf("unknown summarizer type %q", opts.Type)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
