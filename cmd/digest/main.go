// Command digest fetches recent AI news, summarizes every article in Japanese
// and mails the digest through Gmail.
//
// Usage:
//
//	digest                 run once and exit
//	digest -dry-run        run once, print the message instead of sending it
//	digest -authorize      obtain and store the Gmail credential, then exit
//	digest -schedule       run on CRON_SCHEDULE until interrupted
//	digest -config f.yaml  read settings from f.yaml under the environment
//
// Exit codes: 0 success or no articles, 2 configuration error, 3 news source
// failure, 4 delivery failure, 1 anything else.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"ai-news-digest/internal/config"
	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/infra/fetcher"
	"ai-news-digest/internal/infra/mailer"
	"ai-news-digest/internal/infra/news"
	"ai-news-digest/internal/infra/notifier"
	"ai-news-digest/internal/infra/summarizer"
	workerPkg "ai-news-digest/internal/infra/worker"
	"ai-news-digest/internal/observability/logging"
	"ai-news-digest/internal/observability/metrics"
	"ai-news-digest/internal/usecase/digest"
	pkgconfig "ai-news-digest/pkg/config"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitConfig   = 2
	exitNetwork  = 3
	exitDelivery = 4

	authorizeTimeout = 5 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		schedule   bool
		dryRun     bool
		authorize  bool
		configFile string
	)
	flag.BoolVar(&schedule, "schedule", false, "Run on CRON_SCHEDULE until interrupted")
	flag.BoolVar(&dryRun, "dry-run", false, "Print the digest to stdout instead of sending it")
	flag.BoolVar(&authorize, "authorize", false, "Obtain and store the Gmail credential, then exit")
	flag.StringVar(&configFile, "config", "", "Optional YAML file of settings; the environment wins")
	flag.Parse()

	// The dry-run message goes to stdout, so logs move to stderr.
	logOpts := logging.OptionsFromEnv()
	if dryRun {
		logOpts.Writer = os.Stderr
	}

	if err := pkgconfig.LoadDotEnv(); err != nil {
		logging.New(logOpts).Error("failed to load .env", slog.Any("error", err))
		return exitConfig
	}
	var applied []string
	if configFile != "" {
		var err error
		applied, err = pkgconfig.ApplyYAMLOverlay(configFile)
		if err != nil {
			logging.New(logOpts).Error("failed to apply config file", slog.String("file", configFile), slog.Any("error", err))
			return exitConfig
		}
	}

	// LOG_LEVEL and LOG_FORMAT may come from the files loaded above.
	envOpts := logging.OptionsFromEnv()
	logOpts.Level, logOpts.Format = envOpts.Level, envOpts.Format
	logger := logging.New(logOpts)
	slog.SetDefault(logger)
	if len(applied) > 0 {
		logger.Info("config file applied", slog.String("file", configFile), slog.Int("keys", len(applied)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		return fail(logger, "invalid configuration", err)
	}

	if authorize {
		return runAuthorize(ctx, logger, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fail(logger, "invalid configuration", err)
	}

	svc, err := buildService(ctx, logger, cfg, dryRun)
	if err != nil {
		return fail(logger, "failed to initialize", err)
	}

	if schedule {
		return runScheduled(ctx, logger, cfg, svc)
	}
	return runOnce(ctx, logger, cfg, svc)
}

// runOnce executes one digest run and maps its error to an exit code.
func runOnce(ctx context.Context, logger *slog.Logger, cfg *config.Config, svc *digest.Service) int {
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	_, runErr := svc.Run(runCtx)

	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Warn("failed to write metrics textfile", slog.String("path", cfg.MetricsTextfile), slog.Any("error", err))
	}
	// Run has already logged the failure with its run ID.
	return exitCode(runErr)
}

// runScheduled runs the digest on the cron schedule with a health and metrics
// server. A failed run is logged and counted; the process keeps running.
func runScheduled(ctx context.Context, logger *slog.Logger, cfg *config.Config, svc *digest.Service) int {
	schedulerMetrics := workerPkg.NewSchedulerMetrics()
	schedulerConfig := workerPkg.LoadConfigFromEnv(logger, schedulerMetrics)
	logger.Info("scheduler configuration loaded",
		slog.String("cron_schedule", schedulerConfig.CronSchedule),
		slog.String("timezone", schedulerConfig.Timezone),
		slog.Int("health_port", schedulerConfig.HealthPort))

	healthAddr := fmt.Sprintf(":%d", schedulerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := func(jobCtx context.Context) error {
		runCtx, cancel := context.WithTimeout(jobCtx, cfg.RunTimeout)
		defer cancel()
		_, err := svc.Run(runCtx)
		return err
	}

	scheduler, err := workerPkg.NewScheduler(schedulerConfig, job, schedulerMetrics, healthServer, logger)
	if err != nil {
		return fail(logger, "failed to start scheduler", err)
	}
	if err := scheduler.Run(ctx); err != nil {
		return fail(logger, "scheduler stopped", err)
	}
	return exitOK
}

// runAuthorize obtains a Gmail credential, interactively when needed, and
// stores it in the token file.
func runAuthorize(ctx context.Context, logger *slog.Logger, cfg *config.Config) int {
	if err := cfg.ValidateForAuthorize(); err != nil {
		return fail(logger, "invalid configuration", err)
	}

	oauthConfig, err := mailer.LoadOAuthConfig(cfg.Gmail.ClientSecretFile)
	if err != nil {
		return fail(logger, "failed to load client secret",
			&entity.ConfigError{Key: "GMAIL_CLIENT_SECRET_FILE", Err: err})
	}

	store := mailer.NewFileCredentialStore(cfg.Gmail.TokenFile)
	credentials := mailer.NewCredentialManager(store,
		mailer.NewOAuthRefresher(oauthConfig),
		mailer.NewLocalServerAuthorizer(oauthConfig, os.Stderr, authorizeTimeout))

	tok, err := credentials.Obtain(ctx)
	if err != nil {
		return fail(logger, "authorization failed",
			&entity.DeliveryError{Stage: entity.DeliveryStageCredential, Err: err})
	}
	logger.Info("gmail credential stored",
		slog.String("token_file", store.Path()),
		slog.Time("expiry", tok.Expiry),
		slog.Bool("refreshable", tok.RefreshToken != ""))
	return exitOK
}

// buildService wires the pipeline stages from cfg.
func buildService(ctx context.Context, logger *slog.Logger, cfg *config.Config, dryRun bool) (*digest.Service, error) {
	newsFetcher, err := news.New(cfg.News.Source, news.Options{
		APIKey:   cfg.News.APIKey,
		Query:    cfg.News.Query,
		PageSize: cfg.News.PageSize,
		Language: cfg.News.Language,
		Timeout:  cfg.News.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("news source: %w", err)
	}

	fetchConfig := fetcher.DefaultConfig()
	fetchConfig.Timeout = cfg.Extractor.Timeout
	contentFetcher, err := fetcher.New(cfg.Extractor.Mode, fetchConfig)
	if err != nil {
		return nil, &entity.ConfigError{Key: "EXTRACTOR_MODE", Err: err}
	}

	sum, err := summarizer.New(ctx, summarizer.Options{
		Type:            cfg.Summarizer.Type,
		GeminiAPIKey:    cfg.Summarizer.GeminiAPIKey,
		GeminiModel:     cfg.Summarizer.GeminiModel,
		AnthropicAPIKey: cfg.Summarizer.AnthropicAPIKey,
		ClaudeModel:     cfg.Summarizer.ClaudeModel,
		OpenAIAPIKey:    cfg.Summarizer.OpenAIAPIKey,
		OpenAIModel:     cfg.Summarizer.OpenAIModel,
		CharLimit:       cfg.Summarizer.CharLimit,
		Timeout:         cfg.Summarizer.Timeout,
	})
	if err != nil {
		return nil, &entity.ConfigError{Key: "SUMMARIZER_TYPE", Err: err}
	}

	var m digest.Mailer
	if dryRun {
		m = mailer.NewWriterMailer(mailer.NewWriterSender(os.Stdout))
		logger.Info("dry run: the digest is printed instead of sent")
	} else {
		m, err = buildGmailMailer(logger, cfg)
		if err != nil {
			return nil, err
		}
	}

	alerter := notifier.New(notifier.Config{
		SlackWebhookURL:   cfg.Alerts.SlackWebhookURL,
		DiscordWebhookURL: cfg.Alerts.DiscordWebhookURL,
	})

	logger.Info("digest service initialized",
		slog.String("news_source", newsFetcher.Name()),
		slog.String("extractor", cfg.Extractor.Mode),
		slog.String("summarizer", cfg.Summarizer.Type),
		slog.Int("parallelism", cfg.Parallelism),
		slog.Bool("dry_run", dryRun))

	return digest.NewService(newsFetcher, contentFetcher, sum, m, alerter, digest.Config{
		Recipient:   cfg.Recipient,
		Parallelism: cfg.Parallelism,
		Location:    cfg.Location(),
	}), nil
}

// buildGmailMailer wires the credential state machine to the Gmail sender.
// Without interactive authorization the client secret is still needed to
// refresh; when it cannot be read, a refresh fails with that error.
func buildGmailMailer(logger *slog.Logger, cfg *config.Config) (*mailer.GmailMailer, error) {
	store := mailer.NewFileCredentialStore(cfg.Gmail.TokenFile)

	var (
		refresher  mailer.TokenRefresher
		authorizer mailer.AuthorizationProvider = mailer.HeadlessAuthorizer{}
	)
	oauthConfig, err := mailer.LoadOAuthConfig(cfg.Gmail.ClientSecretFile)
	switch {
	case err == nil:
		refresher = mailer.NewOAuthRefresher(oauthConfig)
		if cfg.Gmail.Interactive {
			authorizer = mailer.NewLocalServerAuthorizer(oauthConfig, os.Stderr, authorizeTimeout)
		}
	case cfg.Gmail.Interactive:
		return nil, &entity.ConfigError{Key: "GMAIL_CLIENT_SECRET_FILE", Err: err}
	default:
		logger.Warn("client secret unavailable, expired credentials cannot be refreshed",
			slog.String("file", cfg.Gmail.ClientSecretFile), slog.Any("error", err))
		refresher = unavailableRefresher{err: err}
	}

	credentials := mailer.NewCredentialManager(store, refresher, authorizer)
	return mailer.NewGmailMailer(credentials, mailer.GmailSenderFactory(cfg.Gmail.Timeout), ""), nil
}

type unavailableRefresher struct{ err error }

func (r unavailableRefresher) Refresh(context.Context, *oauth2.Token) (*oauth2.Token, error) {
	return nil, fmt.Errorf("refresh credential: %w", r.err)
}

// exitCode maps a run error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch digest.Kind(err) {
	case digest.KindConfig:
		return exitConfig
	case digest.KindNetwork:
		return exitNetwork
	case digest.KindDelivery:
		return exitDelivery
	default:
		return exitFailure
	}
}

func fail(logger *slog.Logger, msg string, err error) int {
	logger.Error(msg, slog.String("kind", digest.Kind(err)), slog.String("error", logging.SanitizeError(err)))
	return exitCode(err)
}
