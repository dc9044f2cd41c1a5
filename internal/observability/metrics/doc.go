// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the digest job metrics:
//   - Run metrics (outcome, duration, last run time)
//   - Stage metrics (news fetch, content fetch, summarization)
//   - Delivery metrics (mail send, credential transitions)
//
// All metrics are registered with the Prometheus default registry. In
// scheduled mode they are exposed via the /metrics endpoint of the health
// server; a one-shot run can dump them with WriteTextfile.
//
// Example usage:
//
//	import "ai-news-digest/internal/observability/metrics"
//
//	start := time.Now()
//	articles, err := fetcher.Fetch(ctx)
//	if err != nil {
//	    metrics.RecordNewsFetchError("newsapi", time.Since(start))
//	}
//	metrics.RecordArticlesFetched("newsapi", len(articles), time.Since(start))
package metrics
