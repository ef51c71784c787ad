// Package metrics exports per-operation Prometheus metrics. Collector
// implements mbt.Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mybustracker"

// Collector counts calls and records their latency by function and outcome.
type Collector struct {
	registry  *prometheus.Registry
	calls     *prometheus.CounterVec
	durations *prometheus.HistogramVec
	published *prometheus.CounterVec
}

// New creates a collector on its own registry, so several clients in one
// process do not clash on registration.
func New() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Calls to the My Bus Tracker web service.",
		}, []string{"function", "outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of calls to the My Bus Tracker web service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_messages_total",
			Help:      "Messages published to NATS.",
		}, []string{"subject"}),
	}
}

// Observe implements mbt.Metrics.
func (c *Collector) Observe(function, outcome string, duration time.Duration) {
	c.calls.WithLabelValues(function, outcome).Inc()
	c.durations.WithLabelValues(function).Observe(duration.Seconds())
}

// Published counts one message published on subject.
func (c *Collector) Published(subject string) {
	c.published.WithLabelValues(subject).Inc()
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
