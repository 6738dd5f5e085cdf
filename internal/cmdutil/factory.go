// Package cmdutil holds the shared plumbing of the nugetsync commands.
package cmdutil

import (
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist (the contract), while internal/cmd/factory
// wires the real implementations.
//
// Closure fields are set by the factory constructor and use lazy
// initialization internally. Commands extract only the fields they
// need into per-command Options structs.
type Factory struct {
	// Configuration from persistent flags (set before command execution)
	WorkDir    string
	ConfigFile string
	Debug      bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams

	ConfigLoader func() *config.Loader
	Config       func() (*config.Config, error)

	// InitLogger replaces IOStreams.Logger with one built from Debug and
	// the logs section of Config. CloseLogger flushes its file.
	InitLogger  func()
	CloseLogger func()

	RegistryClient func(registry.Endpoint) registry.Client
	Metrics        func() *metrics.Metrics

	// TokenLookup returns the keychain token stored for a registry URL,
	// or "" when none is stored.
	TokenLookup func(registryURL string) (string, error)
}
