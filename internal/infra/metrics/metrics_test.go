package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveStep("approve", "settle_stock", "ok")
	m.ObserveStep("approve", "settle_stock", "ok")
	m.ObserveStep("approve", "credit_points", "failed")
	m.ObserveOrder("approved")
	m.ObserveGenealogyJob("ok")
	m.SetGenealogyQueueDepth(3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.workflowSteps.WithLabelValues("approve", "settle_stock", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.workflowSteps.WithLabelValues("approve", "credit_points", "failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ordersTotal.WithLabelValues("approved")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.genealogyJobs.WithLabelValues("ok")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.genealogyQueueDepth), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/api/v1/orders", "201", 25*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `mlm_http_requests_total{method="POST",path="/api/v1/orders",status="201"} 1`), body)
	assert.Contains(t, body, "mlm_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	first := New()
	second := New()

	first.ObserveOrder("rejected")

	assert.InDelta(t, 1, testutil.ToFloat64(first.ordersTotal.WithLabelValues("rejected")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(second.ordersTotal.WithLabelValues("rejected")), 0)
}
