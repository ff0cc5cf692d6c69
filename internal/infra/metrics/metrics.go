// Package metrics exposes prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"time"

	"mlm/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "mlm"

// Module provides the collectors and the workflow metrics view of them.
var Module = fx.Module("metrics",
	fx.Provide(
		New,
		func(m *Metrics) service.WorkflowMetrics { return m },
	),
)

// Metrics owns every collector of the process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	workflowSteps       *prometheus.CounterVec
	ordersTotal         *prometheus.CounterVec
	genealogyJobs       *prometheus.CounterVec
	genealogyQueueDepth prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		workflowSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_workflow_steps_total",
				Help:      "Order workflow steps by action, step and outcome",
			},
			[]string{"action", "step", "outcome"},
		),
		ordersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_total",
				Help:      "Orders reaching a payment status",
			},
			[]string{"status"},
		),
		genealogyJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "genealogy_jobs_total",
				Help:      "Genealogy index jobs by result",
			},
			[]string{"result"},
		),
		genealogyQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "genealogy_queue_depth",
				Help:      "Pending genealogy index jobs",
			},
		),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (m *Metrics) ObserveStep(action, step, outcome string) {
	m.workflowSteps.WithLabelValues(action, step, outcome).Inc()
}

func (m *Metrics) ObserveOrder(status string) {
	m.ordersTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveGenealogyJob(result string) {
	m.genealogyJobs.WithLabelValues(result).Inc()
}

func (m *Metrics) SetGenealogyQueueDepth(depth int) {
	m.genealogyQueueDepth.Set(float64(depth))
}
