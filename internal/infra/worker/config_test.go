package worker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0 8 * * *", cfg.CronSchedule)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.NoError(t, cfg.Validate())
}

func TestSchedulerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SchedulerConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*SchedulerConfig) {}},
		{name: "bad cron", mutate: func(c *SchedulerConfig) { c.CronSchedule = "every morning" }, wantErr: "cron schedule"},
		{name: "bad timezone", mutate: func(c *SchedulerConfig) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "privileged port", mutate: func(c *SchedulerConfig) { c.HealthPort = 80 }, wantErr: "health port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "30 6 * * 1-5")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("HEALTH_PORT", "9200")

	metrics := NewSchedulerMetricsWith(prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(discardLogger(), metrics)

	assert.Equal(t, "30 6 * * 1-5", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 9200, cfg.HealthPort)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), 0.0)
}

func TestLoadConfigFromEnv_FallsBackPerField(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "not a cron")
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("HEALTH_PORT", "eighty")

	metrics := NewSchedulerMetricsWith(prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(discardLogger(), metrics)

	assert.Equal(t, DefaultConfig(), *cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("health_port")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone")))
}
