// Package metrics holds the Prometheus collectors for the padctl daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "padctl").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures metric registration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the dispatch duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "padctl",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the daemon's collectors.
type Metrics struct {
	ActivePeers      prometheus.Gauge
	MessagesTotal    *prometheus.CounterVec
	ProtocolErrors   *prometheus.CounterVec
	AuthFailures     prometheus.Counter
	InjectedEvents   *prometheus.CounterVec
	DroppedInput     prometheus.Counter
	DispatchDuration *prometheus.HistogramVec
}

// New registers and returns the daemon collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		ActivePeers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_peers",
			Help:        "Number of connected controlling peers",
			ConstLabels: config.ConstLabels,
		}),

		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_total",
			Help:        "Total messages received by message type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		ProtocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Total protocol errors by wire error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "auth_failures_total",
			Help:        "Total refused authentication attempts",
			ConstLabels: config.ConstLabels,
		}),

		InjectedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "injected_events_total",
			Help:        "Total synthetic input events by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		DroppedInput: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dropped_input_total",
			Help:        "Input commands dropped because the injection queue was full",
			ConstLabels: config.ConstLabels,
		}),

		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Per-message dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),
	}
}

// Nop returns collectors backed by a private registry, for tests and
// callers that do not export metrics.
func Nop() *Metrics {
	return New(WithRegistry(prometheus.NewRegistry()))
}
