package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-news-digest/internal/config"
	"ai-news-digest/internal/domain/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"config", &entity.ConfigError{Key: "TO_EMAIL", Err: errors.New("missing")}, exitConfig},
		{"network", fmt.Errorf("run: %w", &entity.NetworkError{Op: "newsapi", Err: errors.New("503")}), exitNetwork},
		{"delivery", &entity.DeliveryError{Stage: entity.DeliveryStageSend, Err: errors.New("403")}, exitDelivery},
		{"timeout", context.DeadlineExceeded, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Recipient = "reader@example.com"
	cfg.News.Source = config.NewsSourceGoogleNews
	cfg.Summarizer.Type = config.SummarizerNoOp
	cfg.Gmail.TokenFile = filepath.Join(t.TempDir(), "token.json")
	cfg.Gmail.ClientSecretFile = filepath.Join(t.TempDir(), "missing_client_secret.json")
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestBuildService_DryRun(t *testing.T) {
	cfg := testConfig(t)

	svc, err := buildService(context.Background(), discardLogger(), cfg, true)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildService_InvalidExtractorMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extractor.Mode = "headless-browser"

	_, err := buildService(context.Background(), discardLogger(), cfg, true)
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestBuildGmailMailer_ClientSecret(t *testing.T) {
	t.Run("interactive requires client secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Gmail.Interactive = true

		_, err := buildGmailMailer(discardLogger(), cfg)
		var cfgErr *entity.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "GMAIL_CLIENT_SECRET_FILE", cfgErr.Key)
	})

	t.Run("headless tolerates missing client secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Gmail.Interactive = false

		m, err := buildGmailMailer(discardLogger(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("valid client secret", func(t *testing.T) {
		cfg := testConfig(t)
		secret := `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
		require.NoError(t, os.WriteFile(cfg.Gmail.ClientSecretFile, []byte(secret), 0o600))

		m, err := buildGmailMailer(discardLogger(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestUnavailableRefresher(t *testing.T) {
	cause := errors.New("open client_secret.json: no such file")
	_, err := unavailableRefresher{err: cause}.Refresh(context.Background(), nil)
	assert.ErrorIs(t, err, cause)
}
