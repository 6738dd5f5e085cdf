// Package metrics records sync run counters in a Prometheus registry and can
// write them out in the node_exporter textfile format after a run.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the sync metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "nugetsync").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for per-package duration.
	Buckets []float64

	// Registry receives the metrics. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures Metrics.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "nugetsync",
		Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
	}
}

// Failure reasons used as the "reason" label.
const (
	ReasonList      = "list"
	ReasonDownload  = "download"
	ReasonPush      = "push"
	ReasonTimeout   = "timeout"
	ReasonEnumerate = "enumerate"
)

// Metrics holds the counters for one process.
type Metrics struct {
	registry *prometheus.Registry

	packagesProcessed   prometheus.Counter
	versionsMissing     prometheus.Counter
	versionsPushed      prometheus.Counter
	versionsSkipped     prometheus.Counter
	versionsUnavailable prometheus.Counter
	pushAttempts        prometheus.Counter
	failures            *prometheus.CounterVec
	packageDuration     prometheus.Histogram
	lastSuccess         prometheus.Gauge
}

// New creates and registers the sync metrics.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		registry:            config.Registry,
		packagesProcessed:   counter("packages_processed_total", "Packages compared between source and target"),
		versionsMissing:     counter("versions_missing_total", "Versions found in the source but not in the target"),
		versionsPushed:      counter("versions_pushed_total", "Versions published to the target"),
		versionsSkipped:     counter("versions_skipped_total", "Versions dropped because the target already held them"),
		versionsUnavailable: counter("versions_unavailable_total", "Versions the source listed but could not serve"),
		pushAttempts:        counter("push_attempts_total", "Batch push attempts, retries included"),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "failures_total",
			Help:        "Sync failures by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		packageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "package_sync_duration_seconds",
			Help:        "Time spent syncing one package",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last run that finished without error",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) PackageProcessed(d time.Duration) {
	if m == nil {
		return
	}
	m.packagesProcessed.Inc()
	m.packageDuration.Observe(d.Seconds())
}

func (m *Metrics) VersionsMissing(n int) {
	if m == nil {
		return
	}
	m.versionsMissing.Add(float64(n))
}

func (m *Metrics) VersionsPushed(n int) {
	if m == nil {
		return
	}
	m.versionsPushed.Add(float64(n))
}

func (m *Metrics) VersionSkipped() {
	if m == nil {
		return
	}
	m.versionsSkipped.Inc()
}

func (m *Metrics) VersionUnavailable() {
	if m == nil {
		return
	}
	m.versionsUnavailable.Inc()
}

func (m *Metrics) PushAttempt() {
	if m == nil {
		return
	}
	m.pushAttempts.Inc()
}

// Failure counts a failed run or package under reason.
func (m *Metrics) Failure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

// Succeeded stamps the last-success gauge.
func (m *Metrics) Succeeded(t time.Time) {
	if m == nil {
		return
	}
	m.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes every registered metric to path in the textfile
// collector format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
