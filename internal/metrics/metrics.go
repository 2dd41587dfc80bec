// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	subscriptions *prometheus.GaugeVec
	requests      *prometheus.HistogramVec
	rateLimited   prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "larder",
			Name:      "mutations_total",
			Help:      "Document mutations by collection, operation and result.",
		}, []string{"collection", "operation", "result"}),
		subscriptions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "larder",
			Name:      "active_subscriptions",
			Help:      "Open realtime subscriptions by stream.",
		}, []string{"stream"}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "larder",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "larder",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the mutation rate limiter.",
		}),
	}
}

func (m *Metrics) Mutation(collection, operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(collection, operation, result).Inc()
}

// SubscriptionOpened increments the stream gauge and returns the matching
// decrement.
func (m *Metrics) SubscriptionOpened(stream string) (closed func()) {
	if m == nil {
		return func() {}
	}
	g := m.subscriptions.WithLabelValues(stream)
	g.Inc()
	return g.Dec
}

func (m *Metrics) Request(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
