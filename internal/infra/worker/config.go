package worker

import (
	"fmt"
	"log/slog"

	"ai-news-digest/internal/pkg/config"
)

// SchedulerConfig holds the settings of scheduled mode.
//
// Environment variables:
//   - CRON_SCHEDULE: five-field cron expression (default: "0 8 * * *")
//   - TIMEZONE: IANA timezone name the schedule is evaluated in (default: "Asia/Tokyo")
//   - HEALTH_PORT: port of the health and metrics server, 1024-65535 (default: 9091)
type SchedulerConfig struct {
	CronSchedule string
	Timezone     string
	HealthPort   int
}

// DefaultConfig returns the scheduled-mode defaults: every day at 08:00 JST.
func DefaultConfig() SchedulerConfig {
	return SchedulerConfig{
		CronSchedule: "0 8 * * *",
		Timezone:     "Asia/Tokyo",
		HealthPort:   9091,
	}
}

// Validate checks every field and reports all failures together.
func (c *SchedulerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the scheduler configuration with the fail-open
// strategy: an invalid value is replaced by its default, logged and counted.
// The returned configuration is always valid.
func LoadConfigFromEnv(logger *slog.Logger, metrics *SchedulerMetrics) *SchedulerConfig {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, warning string) {
		fallbackApplied = true
		metrics.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadEnv("CRON_SCHEDULE", cfg.CronSchedule, config.ParseString, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	if schedule.FallbackApplied {
		warn("cron_schedule", schedule.Warning)
	}

	timezone := config.LoadEnv("TIMEZONE", cfg.Timezone, config.ParseString, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	if timezone.FallbackApplied {
		warn("timezone", timezone.Warning)
	}

	port := config.LoadEnv("HEALTH_PORT", cfg.HealthPort, config.ParseInt, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = port.Value
	if port.FallbackApplied {
		warn("health_port", port.Warning)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg
}
