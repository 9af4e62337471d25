package metrics

import (
	"maps"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option adjusts a Manager before its collectors are registered.
type Option func(*Manager)

// Settings mirrors the metrics block of the service configuration.
type Settings struct {
	Enabled         bool
	Namespace       string
	Subsystem       string
	Prefix          string
	Labels          map[string]string
	LatencyBuckets  []float64
	RefreshInterval time.Duration
}

// Options expands s into manager options. Zero fields keep the defaults.
func (s Settings) Options() []Option {
	return []Option{
		WithMetricsEnabled(s.Enabled),
		WithNamespace(s.Namespace),
		WithSubsystem(s.Subsystem),
		WithMetricPrefix(s.Prefix),
		WithCustomLabels(s.Labels),
		WithLatencyBuckets(s.LatencyBuckets),
		WithRefreshInterval(s.RefreshInterval),
	}
}

// Configure replaces the process-wide manager and registry. It must run
// before handlers capture GetRegistry and before any recorder is called
// concurrently.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	customRegistry = reg
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	return globalManager
}

// WithNamespace overrides the "careeratlas" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "trends" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the buckets of the store, HTTP and error latency
// histograms. Unsorted input is sorted.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.histogramBuckets = slices.Compact(b)
	}
}

// WithMetricsEnabled switches the recorders on or off. Collectors are
// registered either way so scrapes keep a stable shape.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often gauges are expected to be refreshed.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels to every collector.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithMetricPrefix prepends prefix_ to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of
// the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
