// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics track whole digest runs
var (
	// RunsTotal counts digest runs by outcome
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total number of digest runs",
		},
		[]string{"status"}, // status: success, empty, failure
	)

	// RunDuration measures wall time of a digest run
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Time taken by a complete digest run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// LastRunTimestamp records when the last run finished
	LastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_last_run_timestamp_seconds",
			Help: "Unix time of the last finished digest run",
		},
		[]string{"status"},
	)

	// DigestEntries tracks the number of entries in the last composed digest
	DigestEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_entries",
			Help: "Number of entries in the last composed digest",
		},
	)
)

// Stage metrics track the individual pipeline stages
var (
	// ArticlesFetchedTotal counts articles returned by the news source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles returned by the news source",
		},
		[]string{"source"},
	)

	// NewsFetchErrors counts failed news source queries
	NewsFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetch_errors_total",
			Help: "Total number of failed news source queries",
		},
		[]string{"source"},
	)

	// NewsFetchDuration measures time to query the news source
	NewsFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_fetch_duration_seconds",
			Help:    "Time taken to query the news source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// ArticlesSummarizedTotal counts articles summarized by status
	ArticlesSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_summarized_total",
			Help: "Total number of articles summarized",
		},
		[]string{"status"}, // status: success, failure, skipped
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, empty
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures extracted text size in runes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_size_runes",
			Help:    "Extracted article text size in runes",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		},
	)
)

// Delivery metrics track the mail stage
var (
	// MailDeliveriesTotal counts mail send attempts by outcome
	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Total number of digest mail deliveries",
		},
		[]string{"status"},
	)

	// CredentialTransitionsTotal counts how the mail credential was obtained
	CredentialTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_credential_transitions_total",
			Help: "Credential states observed before sending, and how they were resolved",
		},
		[]string{"from", "action"}, // action: reuse, refresh, authorize
	)
)
