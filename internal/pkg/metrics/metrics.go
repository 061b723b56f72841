package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the back office.
type Collector struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	loanOps       *prometheus.CounterVec
	overdueLoans  prometheus.Gauge
	quoteCacheHit *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		httpRequests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		loanOps: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "loan_operations_total",
			Help: "Total number of loan engine operations by outcome",
		}, []string{"operation", "outcome"}),
		overdueLoans: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "loans_overdue",
			Help: "Number of loans currently past their due date",
		}),
		quoteCacheHit: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "quote_cache_requests_total",
			Help: "Quote cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveHTTP records one handled HTTP request
func (c *Collector) ObserveHTTP(method, path, status string, seconds float64) {
	c.httpRequests.WithLabelValues(method, path, status).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// LoanOperation records a loan engine operation and its outcome
func (c *Collector) LoanOperation(operation, outcome string) {
	c.loanOps.WithLabelValues(operation, outcome).Inc()
}

// SetOverdueLoans records the current overdue loan count
func (c *Collector) SetOverdueLoans(n int) {
	c.overdueLoans.Set(float64(n))
}

// QuoteCacheResult records a quote cache lookup ("hit" or "miss")
func (c *Collector) QuoteCacheResult(result string) {
	c.quoteCacheHit.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler exposing the registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
