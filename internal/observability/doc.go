// Package observability provides the observability infrastructure of the
// digest job: structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog and per-run IDs
//   - metrics: Prometheus metrics registry, recorders and textfile export
//   - tracing: OpenTelemetry spans for each pipeline stage
//
// Example usage:
//
//	import (
//	    "ai-news-digest/internal/observability/logging"
//	    "ai-news-digest/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.New(logging.OptionsFromEnv())
//	    logger.Info("digest job started")
//
//	    metrics.RecordRun(metrics.RunStatusSuccess, elapsed)
//	}
package observability
