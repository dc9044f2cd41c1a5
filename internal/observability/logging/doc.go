// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats (LOG_FORMAT)
//   - Configurable log levels (LOG_LEVEL)
//   - Run ID propagation so every line of one digest run can be grouped
//   - Context-aware logging
//
// Example usage:
//
//	import "ai-news-digest/internal/observability/logging"
//
//	func main() {
//	    logger := logging.New(logging.OptionsFromEnv())
//	    ctx, runLogger := logging.WithRunID(ctx, logger, logging.NewRunID())
//	    runLogger.Info("digest run started")
//	}
package logging
