package syncer

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/metrics"
)

// Defaults for Config.
const (
	DefaultPushTimeout        = 5 * time.Minute
	DefaultRetryBudget        = 5 * time.Minute
	DefaultPageSize           = 100
	DefaultEnumerationTimeout = 2 * time.Minute
)

// Config holds the tunables of a sync run.
type Config struct {
	// ScratchDir receives staged downloads. Default: os.TempDir().
	ScratchDir string

	// PushTimeout bounds one batch push attempt.
	PushTimeout time.Duration

	// RetryBudget bounds the whole conflict-retry loop, measured from the
	// start of the pipeline.
	RetryBudget time.Duration

	// PageSize is the catalog search page size.
	PageSize int

	// EnumerationTimeout bounds catalog paging.
	EnumerationTimeout time.Duration

	// DryRun reports missing versions without downloading or pushing.
	DryRun bool
}

func (c Config) withDefaults() Config {
	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = DefaultPushTimeout
	}
	if c.RetryBudget <= 0 {
		c.RetryBudget = DefaultRetryBudget
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.EnumerationTimeout <= 0 {
		c.EnumerationTimeout = DefaultEnumerationTimeout
	}
	return c
}

// Option configures the sync components.
type Option func(*options)

type options struct {
	log     iostreams.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// WithLogger sets the diagnostic logger.
func WithLogger(l iostreams.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithMetrics records run counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces time.Now for the wall-clock bounds.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	nop := zerolog.Nop()
	o := options{log: &nop, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
