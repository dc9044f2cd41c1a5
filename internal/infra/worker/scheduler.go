package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"ai-news-digest/internal/observability/logging"
)

// Job is one scheduled unit of work. A returned error is logged and counted;
// it never stops the scheduler.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule. Overlapping runs are skipped and
// a panicking job is recovered.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	metrics *SchedulerMetrics
	health  *HealthServer
	logger  *slog.Logger
	baseCtx context.Context
}

// NewScheduler installs job at cfg.CronSchedule in cfg.Timezone.
// health may be nil.
func NewScheduler(cfg *SchedulerConfig, job Job, metrics *SchedulerMetrics, health *HealthServer, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:     job,
		metrics: metrics,
		health:  health,
		logger:  logger,
		baseCtx: context.Background(),
	}

	if _, err := s.cron.AddFunc(cfg.CronSchedule, func() { s.RunOnce(s.baseCtx) }); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Next returns the next activation time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// a running job to finish. Jobs receive a context derived from ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.cron.Start()
	if s.health != nil {
		s.health.SetReady(true)
	}
	s.logger.Info("scheduler started", slog.Time("next_run", s.Next()))

	<-ctx.Done()

	if s.health != nil {
		s.health.SetReady(false)
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// RunOnce executes the job immediately with metrics and logging.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	s.metrics.RecordJobRun("started")
	s.logger.Info("scheduled run started")

	err := s.job(ctx)
	s.metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordJobRun("failure")
		s.logger.Error("scheduled run failed",
			slog.String("error", logging.SanitizeError(err)),
			slog.Duration("duration", time.Since(start)))
		return
	}

	s.metrics.RecordJobRun("success")
	s.metrics.RecordLastSuccess()
	s.logger.Info("scheduled run completed",
		slog.Duration("duration", time.Since(start)),
		slog.Time("next_run", s.Next()))
}
