// Package tracing provides OpenTelemetry tracing integration.
//
// Spans use the global tracer provider, so nothing is exported unless the
// binary installs one. Each pipeline stage opens its own span below a
// digest.run root span.
//
// Example usage:
//
//	ctx, span := tracing.StartSpan(ctx, tracing.SpanExtract,
//	    attribute.String("article.url", url))
//	text, err := fetcher.FetchContent(ctx, url)
//	tracing.EndSpan(span, err)
package tracing
