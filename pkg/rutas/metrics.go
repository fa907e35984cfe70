package rutas

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsOption adjusts NewMetrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace string
	registry  prometheus.Registerer
}

// WithNamespace prefixes the metric names; "rutas" when unset.
func WithNamespace(namespace string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = namespace }
}

// WithRegistry registers the collectors on registry instead of the
// process-wide default.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) { c.registry = registry }
}

// Metrics counts dispatches by method and outcome.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewMetrics registers the dispatch metrics. Registering twice on the same
// registry panics, like any promauto collector.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := metricsConfig{namespace: "rutas", registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.namespace,
			Name:      "requests_total",
			Help:      "Requests handled by the dispatcher, by method and outcome.",
		}, []string{"method", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time from dispatch to the last response byte, by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(method string, outcome Outcome, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, string(outcome)).Inc()
	m.dispatchDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}
