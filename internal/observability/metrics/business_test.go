package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues(RunStatusSuccess))

	RecordRun(RunStatusSuccess, 3*time.Second)

	after := testutil.ToFloat64(RunsTotal.WithLabelValues(RunStatusSuccess))
	assert.Equal(t, before+1, after)
	assert.Greater(t, testutil.ToFloat64(LastRunTimestamp.WithLabelValues(RunStatusSuccess)), float64(0))
}

func TestRecordArticlesFetched(t *testing.T) {
	before := testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues("newsapi"))

	RecordArticlesFetched("newsapi", 5, 200*time.Millisecond)

	assert.Equal(t, before+5, testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues("newsapi")))
}

func TestRecordNewsFetchError(t *testing.T) {
	before := testutil.ToFloat64(NewsFetchErrors.WithLabelValues("googlenews"))

	RecordNewsFetchError("googlenews", time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(NewsFetchErrors.WithLabelValues("googlenews")))
}

func TestRecordContentFetch(t *testing.T) {
	tests := []struct {
		name   string
		record func()
		label  string
	}{
		{"success", func() { RecordContentFetchSuccess(time.Second, 1200) }, "success"},
		{"failure", func() { RecordContentFetchFailed(time.Second) }, "failure"},
		{"empty", func() { RecordContentFetchEmpty(time.Second) }, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ContentFetchAttemptsTotal.WithLabelValues(tt.label))
			tt.record()
			assert.Equal(t, before+1, testutil.ToFloat64(ContentFetchAttemptsTotal.WithLabelValues(tt.label)))
		})
	}
}

func TestRecordContentFetchSuccess_ObservesSize(t *testing.T) {
	m := &dto.Metric{}
	require.NoError(t, ContentFetchSize.Write(m))
	before := m.GetHistogram().GetSampleCount()

	RecordContentFetchSuccess(100*time.Millisecond, 4000)

	m = &dto.Metric{}
	require.NoError(t, ContentFetchSize.Write(m))
	assert.Equal(t, before+1, m.GetHistogram().GetSampleCount())
}

func TestRecordArticleSummarized(t *testing.T) {
	beforeOK := testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("success"))
	beforeFail := testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("failure"))
	beforeSkip := testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("skipped"))

	RecordArticleSummarized(true)
	RecordArticleSummarized(false)
	RecordSummarizationSkipped()

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("success")))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("failure")))
	assert.Equal(t, beforeSkip+1, testutil.ToFloat64(ArticlesSummarizedTotal.WithLabelValues("skipped")))
}

func TestRecordDigestComposed(t *testing.T) {
	RecordDigestComposed(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(DigestEntries))
}

func TestRecordMailDeliveryAndCredential(t *testing.T) {
	before := testutil.ToFloat64(MailDeliveriesTotal.WithLabelValues("failure"))
	RecordMailDelivery(false)
	assert.Equal(t, before+1, testutil.ToFloat64(MailDeliveriesTotal.WithLabelValues("failure")))

	beforeRefresh := testutil.ToFloat64(CredentialTransitionsTotal.WithLabelValues("expired_refreshable", "refresh"))
	RecordCredentialTransition("expired_refreshable", "refresh")
	assert.Equal(t, beforeRefresh+1, testutil.ToFloat64(CredentialTransitionsTotal.WithLabelValues("expired_refreshable", "refresh")))
}

func TestWriteTextfileFrom(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_digest_counter", Help: "test"})
	reg.MustRegister(c)
	c.Add(2)

	path := filepath.Join(t.TempDir(), "digest.prom")
	require.NoError(t, WriteTextfileFrom(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "test_digest_counter 2"), "got %s", data)
}

func TestWriteTextfileFrom_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, WriteTextfileFrom(prometheus.NewRegistry(), ""))
}

func TestWriteTextfile_DefaultRegistry(t *testing.T) {
	RecordRun(RunStatusEmpty, time.Second)
	path := filepath.Join(t.TempDir(), "default.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digest_runs_total")
}
