package worker

import (
	"ai-news-digest/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics embeds the scheduler's ConfigMetrics and adds cron job metrics:
//   - scheduler_job_runs_total{status}: job runs by status (started, success, failure)
//   - scheduler_job_duration_seconds: job duration histogram
//   - scheduler_job_last_success_timestamp: Unix time of the last successful run
//
// Per-run pipeline counters live in internal/observability/metrics.
type SchedulerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      prometheus.Histogram
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewSchedulerMetrics creates the metrics on the default registry.
// Calling it twice in one process panics.
func NewSchedulerMetrics() *SchedulerMetrics {
	return NewSchedulerMetricsWith(prometheus.DefaultRegisterer)
}

// NewSchedulerMetricsWith registers the metrics on reg.
func NewSchedulerMetricsWith(reg prometheus.Registerer) *SchedulerMetrics {
	factory := promauto.With(reg)
	return &SchedulerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "scheduler"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Total number of scheduled digest job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduled digest jobs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 600, 1800},
		}),

		JobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled job",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *SchedulerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job duration in seconds.
func (m *SchedulerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordLastSuccess stamps the current time as the last success.
func (m *SchedulerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
