package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthServer_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSchedulerMetricsWith(reg).RecordJobRun("success")

	h := NewHealthServerWith(":0", discardLogger(), reg)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	code, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "ok", resp.Status)

	code, body = get(t, srv.URL+"/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "not ready")

	h.SetReady(true)
	code, _ = get(t, srv.URL+"/health/ready")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `scheduler_job_runs_total{status="success"} 1`)
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	h := NewHealthServerWith(addr, discardLogger(), prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(6 * time.Second):
		t.Fatal("health server did not stop")
	}
}
