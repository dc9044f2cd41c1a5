package metrics

import (
	"time"
)

// Run outcome labels.
const (
	RunStatusSuccess = "success"
	RunStatusEmpty   = "empty"
	RunStatusFailure = "failure"
)

// RecordRun records the outcome and duration of one digest run.
func RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
	LastRunTimestamp.WithLabelValues(status).SetToCurrentTime()
}

// RecordArticlesFetched records the number of articles returned by a news source.
func RecordArticlesFetched(source string, count int, duration time.Duration) {
	ArticlesFetchedTotal.WithLabelValues(source).Add(float64(count))
	NewsFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordNewsFetchError records a failed news source query.
func RecordNewsFetchError(source string, duration time.Duration) {
	NewsFetchErrors.WithLabelValues(source).Inc()
	NewsFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordContentFetchSuccess records a successful content fetch operation.
// size is the extracted text length in runes.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), text.CountRunes(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchEmpty records a fetch that succeeded but yielded no text.
func RecordContentFetchEmpty(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("empty").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordArticleSummarized records the result of an article summarization operation.
func RecordArticleSummarized(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArticlesSummarizedTotal.WithLabelValues(status).Inc()
}

// RecordSummarizationSkipped records an article that had no text to summarize.
func RecordSummarizationSkipped() {
	ArticlesSummarizedTotal.WithLabelValues("skipped").Inc()
}

// RecordDigestComposed records the number of entries in a composed digest.
func RecordDigestComposed(entries int) {
	DigestEntries.Set(float64(entries))
}

// RecordMailDelivery records the outcome of a digest send.
func RecordMailDelivery(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	MailDeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordCredentialTransition records how a mail credential in state from was resolved.
func RecordCredentialTransition(from, action string) {
	CredentialTransitionsTotal.WithLabelValues(from, action).Inc()
}
