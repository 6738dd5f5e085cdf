package factory

import (
	"os"
	"sync"

	"github.com/muesli/termenv"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/keyring"
	"github.com/schmitthub/nugetsync/internal/logger"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/nugetsync/cmd.go).
// Tests should NOT import this package; construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.NewIOStreams()
	ios.Logger = logger.Nop()

	// NO_COLOR and CLICOLOR=0 turn styling off.
	if !ios.IsOutputTTY() || termenv.EnvNoColor() {
		ios.SetColorEnabled(false)
	}

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	f := &cmdutil.Factory{
		WorkDir:   workDir,
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}

	// --- Lazy dependency closures ---

	// Config. The loader is created on first use so persistent flags
	// (--config) are already parsed.
	var (
		loaderOnce sync.Once
		loader     *config.Loader
		configOnce sync.Once
		configData *config.Config
		configErr  error
	)
	f.ConfigLoader = func() *config.Loader {
		loaderOnce.Do(func() {
			loader = config.NewLoader(f.WorkDir, f.ConfigFile)
		})
		return loader
	}
	f.Config = func() (*config.Config, error) {
		configOnce.Do(func() {
			configData, configErr = f.ConfigLoader().Load()
		})
		return configData, configErr
	}

	// Logger
	var current *logger.Logger
	f.InitLogger = func() {
		if current != nil {
			return
		}
		current = initLogger(f)
		f.IOStreams.Logger = current
	}
	f.CloseLogger = func() {
		if current != nil {
			_ = current.Close()
		}
	}

	// Registry clients share the configured HTTP timeout.
	f.RegistryClient = func(endpoint registry.Endpoint) registry.Client {
		opts := []registry.Option{
			registry.WithLogger(f.IOStreams.Logger),
			registry.WithUserAgent("nugetsync/" + version),
		}
		if cfg, err := f.Config(); err == nil && cfg.HTTPTimeout > 0 {
			opts = append(opts, registry.WithTimeout(cfg.HTTPTimeout))
		}
		return registry.NewNuGetClient(endpoint, opts...)
	}

	// Metrics
	var (
		metricsOnce sync.Once
		m           *metrics.Metrics
	)
	f.Metrics = func() *metrics.Metrics {
		metricsOnce.Do(func() {
			m = metrics.New()
		})
		return m
	}

	f.TokenLookup = keyring.LookupToken

	return f
}

// initLogger builds the process logger. File logging is best effort: any
// problem falls back to console-only output with a warning.
func initLogger(f *cmdutil.Factory) *logger.Logger {
	opts := logger.Options{
		Debug:   f.Debug,
		Console: f.IOStreams.ErrOut,
		NoColor: !f.IOStreams.ColorEnabled(),
	}

	consoleOnly := func(reason string, err error) *logger.Logger {
		l, _ := logger.New(opts)
		l.Warn().Err(err).Msg("file logging unavailable: " + reason)
		return l
	}

	cfg, err := f.Config()
	if err != nil {
		// The command reports the config error itself.
		l, _ := logger.New(opts)
		return l
	}

	logCfg := cfg.Logs.LoggingConfig()
	if !logCfg.IsFileEnabled() {
		l, _ := logger.New(opts)
		return l
	}

	dir, err := cfg.Logs.ResolveDir()
	if err != nil {
		return consoleOnly("failed to get logs directory", err)
	}
	opts.LogsDir = dir
	opts.File = logCfg

	l, err := logger.New(opts)
	if err != nil {
		opts.LogsDir, opts.File = "", nil
		return consoleOnly("failed to initialize file writer", err)
	}
	return l
}
