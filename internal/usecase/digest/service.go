package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/infra/notifier"
	"ai-news-digest/internal/observability/logging"
	"ai-news-digest/internal/observability/metrics"
	"ai-news-digest/internal/observability/tracing"
)

const (
	// DefaultParallelism bounds the per-article fan-out when Config leaves it unset.
	DefaultParallelism = 3

	alertTimeout = 15 * time.Second
)

// Config holds the per-run settings of the Service.
type Config struct {
	// Recipient is the single address the digest is sent to.
	Recipient string
	// Parallelism bounds concurrent extract+summarize work. Zero means DefaultParallelism.
	Parallelism int
	// Location is the time zone of the date in the subject. Nil means UTC.
	Location *time.Location
}

// RunStats describes one finished run. Articles is zero when the news source
// returned nothing and no mail was sent.
type RunStats struct {
	Articles        int
	Extracted       int64
	ExtractFailed   int64
	Summarized      int64
	SummarizeFailed int64
	MessageID       string
	Duration        time.Duration
}

// Service runs the digest pipeline.
type Service struct {
	news       NewsFetcher
	extractor  ContentFetcher
	summarizer Summarizer
	mailer     Mailer
	alerter    Alerter
	config     Config
	now        func() time.Time
}

// NewService creates a digest Service. alerter may be nil.
func NewService(
	news NewsFetcher,
	extractor ContentFetcher,
	summarizer Summarizer,
	mailer Mailer,
	alerter Alerter,
	config Config,
) *Service {
	if config.Parallelism <= 0 {
		config.Parallelism = DefaultParallelism
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Service{
		news:       news,
		extractor:  extractor,
		summarizer: summarizer,
		mailer:     mailer,
		alerter:    alerter,
		config:     config,
		now:        time.Now,
	}
}

// Run executes one digest run.
//
// Order of work:
//  1. Recipient check. A bad recipient is a *entity.ConfigError and nothing
//     else is called.
//  2. News query. Failure is a *entity.NetworkError.
//  3. Zero articles ends the run successfully without extraction,
//     summarization or mail.
//  4. Every article is extracted and summarized with bounded parallelism.
//     Failures become placeholders; entries keep the news source order.
//  5. The digest is composed and sent once. Failure is a *entity.DeliveryError.
//
// A failed run is reported to the Alerter, except for configuration errors.
// Alert failures are only logged.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()

	runID := logging.RunIDFromContext(ctx)
	var logger *slog.Logger
	if runID == "" {
		runID = logging.NewRunID()
		ctx, logger = logging.WithRunID(ctx, logging.FromContext(ctx), runID)
	} else {
		logger = logging.FromContext(ctx)
	}

	ctx, span := tracing.StartSpan(ctx, tracing.SpanRun, attribute.String("run_id", runID))
	stats := &RunStats{}
	err := s.run(ctx, logger, stats)
	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("articles", stats.Articles),
		attribute.Int64("summarize_failed", stats.SummarizeFailed),
	)
	tracing.EndSpan(span, err)

	if err != nil {
		metrics.RecordRun(metrics.RunStatusFailure, stats.Duration)
		logger.Error("digest run failed",
			slog.String("kind", Kind(err)),
			slog.String("error", logging.SanitizeError(err)),
			slog.Duration("duration", stats.Duration))
		s.alert(ctx, logger, runID, err)
		return stats, err
	}

	status := metrics.RunStatusSuccess
	if stats.Articles == 0 {
		status = metrics.RunStatusEmpty
	}
	metrics.RecordRun(status, stats.Duration)
	logger.Info("digest run completed",
		slog.Int("articles", stats.Articles),
		slog.Int64("extracted", stats.Extracted),
		slog.Int64("extract_failed", stats.ExtractFailed),
		slog.Int64("summarized", stats.Summarized),
		slog.Int64("summarize_failed", stats.SummarizeFailed),
		slog.String("message_id", stats.MessageID),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func (s *Service) run(ctx context.Context, logger *slog.Logger, stats *RunStats) error {
	if err := entity.ValidateRecipient(s.config.Recipient); err != nil {
		return &entity.ConfigError{Key: "TO_EMAIL", Err: err}
	}

	articles, err := s.fetchNews(ctx)
	if err != nil {
		return err
	}
	stats.Articles = len(articles)
	if len(articles) == 0 {
		logger.Info("news source returned no articles, nothing to send",
			slog.String("source", s.news.Name()))
		return nil
	}

	entries, err := s.processArticles(ctx, logger, articles, stats)
	if err != nil {
		return err
	}

	digest := entity.Digest{Entries: entries}
	metrics.RecordDigestComposed(digest.Len())
	subject := entity.Subject(s.now(), s.config.Location)

	messageID, err := s.deliver(ctx, subject, digest.Body())
	if err != nil {
		return err
	}
	stats.MessageID = messageID
	return nil
}

func (s *Service) fetchNews(ctx context.Context) ([]entity.Article, error) {
	source := s.news.Name()
	ctx, span := tracing.StartSpan(ctx, tracing.SpanNewsFetch, attribute.String("source", source))
	start := time.Now()

	articles, err := s.news.Fetch(ctx)
	if err != nil {
		metrics.RecordNewsFetchError(source, time.Since(start))
		var netErr *entity.NetworkError
		if !errors.As(err, &netErr) {
			err = &entity.NetworkError{Op: "fetch news from " + source, Err: err}
		}
		tracing.EndSpan(span, err)
		return nil, err
	}

	metrics.RecordArticlesFetched(source, len(articles), time.Since(start))
	span.SetAttributes(attribute.Int("articles", len(articles)))
	tracing.EndSpan(span, nil)
	return articles, nil
}

// processArticles builds one entry per article. Each goroutine writes only
// its own index, so entries keep the fetcher order.
func (s *Service) processArticles(ctx context.Context, logger *slog.Logger, articles []entity.Article, stats *RunStats) ([]entity.DigestEntry, error) {
	entries := make([]entity.DigestEntry, len(articles))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallelism)
	for i, article := range articles {
		eg.Go(func() error {
			entries[i] = s.processArticle(egCtx, logger, article, stats)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process articles: %w", err)
	}
	return entries, nil
}

func (s *Service) processArticle(ctx context.Context, logger *slog.Logger, article entity.Article, stats *RunStats) entity.DigestEntry {
	logger = logger.With(slog.String("url", article.URL))

	text, err := s.extract(ctx, article.URL)
	if err != nil {
		atomic.AddInt64(&stats.ExtractFailed, 1)
		logger.Warn("article extraction failed, summary skipped", slog.Any("error", err))
		metrics.RecordSummarizationSkipped()
		return entity.NewDigestEntry(article, "")
	}
	if strings.TrimSpace(text) == "" {
		atomic.AddInt64(&stats.ExtractFailed, 1)
		logger.Warn("article has no paragraph text, summary skipped")
		metrics.RecordSummarizationSkipped()
		return entity.NewDigestEntry(article, "")
	}
	atomic.AddInt64(&stats.Extracted, 1)

	summary, err := s.summarize(ctx, article.URL, text)
	if err != nil {
		atomic.AddInt64(&stats.SummarizeFailed, 1)
		metrics.RecordArticleSummarized(false)
		logger.Warn("summarization failed, using placeholder", slog.Any("error", err))
		return entity.NewDigestEntry(article, "")
	}

	atomic.AddInt64(&stats.Summarized, 1)
	metrics.RecordArticleSummarized(true)
	return entity.NewDigestEntry(article, summary)
}

func (s *Service) extract(ctx context.Context, url string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanExtract, attribute.String("url", url))

	if err := entity.ValidateArticleURL(url); err != nil {
		tracing.EndSpan(span, err)
		return "", err
	}

	text, err := s.extractor.FetchContent(ctx, url)
	if err == nil {
		span.SetAttributes(attribute.Int("text_runes", len([]rune(text))))
	}
	tracing.EndSpan(span, err)
	return text, err
}

func (s *Service) summarize(ctx context.Context, url, text string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanSummarize, attribute.String("url", url))

	summary, err := s.summarizer.Summarize(ctx, text)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		err = &entity.SummarizationError{URL: url, Err: err}
	}
	tracing.EndSpan(span, err)
	return summary, err
}

func (s *Service) deliver(ctx context.Context, subject, body string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanDeliver)

	messageID, err := s.mailer.Send(ctx, s.config.Recipient, subject, body)
	if err != nil {
		var deliveryErr *entity.DeliveryError
		if !errors.As(err, &deliveryErr) {
			err = &entity.DeliveryError{Stage: entity.DeliveryStageSend, Err: err}
		}
		tracing.EndSpan(span, err)
		return "", err
	}

	span.SetAttributes(attribute.String("message_id", messageID))
	tracing.EndSpan(span, nil)
	return messageID, nil
}

// alert reports a failed run. Configuration errors happen before any network
// work and are not alerted.
func (s *Service) alert(ctx context.Context, logger *slog.Logger, runID string, runErr error) {
	kind := Kind(runErr)
	if s.alerter == nil || kind == KindConfig {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	alert := notifier.Alert{
		RunID:    runID,
		Kind:     kind,
		Message:  logging.SanitizeError(runErr),
		Occurred: s.now(),
	}
	if err := s.alerter.NotifyFailure(ctx, alert); err != nil {
		logger.Warn("failure alert not delivered", slog.Any("error", err))
	}
}
