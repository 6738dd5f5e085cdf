// Package sync implements the nugetsync root command, which copies missing
// package versions from one NuGet registry to another.
package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/syncer"
)

// SyncOptions holds options for the sync command.
//
// Registry URLs, tokens, timeouts and the other tunables are also bound to
// the config loader, so run reads them from Config. The copies kept here
// are the raw flag values.
type SyncOptions struct {
	IOStreams      *iostreams.IOStreams
	Config         func() (*config.Config, error)
	RegistryClient func(registry.Endpoint) registry.Client
	Metrics        func() *metrics.Metrics
	TokenLookup    func(registryURL string) (string, error)

	PackageName string
	AllPackages bool
	DryRun      bool
	JSON        bool

	PackageSource      string
	PackageTarget      string
	PackageSourceToken string
	PackageTargetToken string
	IncludePrerelease  bool
	ScratchDir         string
	PushTimeout        time.Duration
	EnumerationTimeout time.Duration
	MetricsFile        string
}

// NewCmdSync creates the sync command. The CLI uses it as its root command.
func NewCmdSync(f *cmdutil.Factory, runF func(context.Context, *SyncOptions) error) *cobra.Command {
	opts := &SyncOptions{
		IOStreams:      f.IOStreams,
		Config:         f.Config,
		RegistryClient: f.RegistryClient,
		Metrics:        f.Metrics,
		TokenLookup:    f.TokenLookup,
	}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "nugetsync",
		Short: "Copy missing NuGet package versions between registries",
		Long: `Copies every version of a package that exists in a source NuGet v3 feed but
is missing from a target feed.

Versions already present in the target are left alone. A version the source
lists but cannot serve is skipped with a warning. When a push is rejected
because the target already holds a version, that version is dropped from the
batch and the push is retried.

Tokens are read from flags, then NUGETSYNC_PACKAGE_SOURCE_TOKEN and
NUGETSYNC_PACKAGE_TARGET_TOKEN, then the OS keychain (see 'nugetsync auth login').`,
		Example: `  # Copy the missing stable versions of one package
  nugetsync --package-name Contoso.Core \
    --package-source https://pkgs.example.com/source/v3/index.json \
    --package-target https://pkgs.example.com/target/v3/index.json \
    --package-target-token "$TARGET_TOKEN"

  # Include prerelease versions and report only
  nugetsync --package-name Contoso.Core --include-prerelease --dry-run

  # Copy every package of the source feed
  nugetsync --all-packages --metrics-file /var/lib/node_exporter/nugetsync.prom`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.MutuallyExclusive(
				"specify only one of --package-name or --all-packages",
				opts.PackageName != "",
				opts.AllPackages,
			); err != nil {
				return err
			}
			if !opts.AllPackages && opts.PackageName == "" {
				return cmdutil.FlagErrorf("--package-name is required unless --all-packages is set")
			}

			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return syncRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.PackageName, "package-name", "", "Package to sync")
	cmd.Flags().BoolVar(&opts.AllPackages, "all-packages", false, "Sync every package listed by the source feed")
	cmd.Flags().StringVar(&opts.PackageSource, "package-source", "", "Service index URL of the source feed")
	cmd.Flags().StringVar(&opts.PackageTarget, "package-target", "", "Service index URL of the target feed")
	cmd.Flags().StringVar(&opts.PackageSourceToken, "package-source-token", "", "Token for the source feed")
	cmd.Flags().StringVar(&opts.PackageTargetToken, "package-target-token", "", "Token for the target feed")
	cmd.Flags().BoolVar(&opts.IncludePrerelease, "include-prerelease", false, "Also sync prerelease versions")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report missing versions without pushing")
	cmd.Flags().StringVar(&opts.ScratchDir, "scratch-dir", "", "Directory for staged downloads (default: OS temp dir)")
	cmd.Flags().DurationVar(&opts.PushTimeout, "push-timeout", defaults.PushTimeout, "Time allowed for one push attempt")
	cmd.Flags().DurationVar(&opts.EnumerationTimeout, "enumeration-timeout", defaults.EnumerationTimeout, "Time allowed for listing the source catalog")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the run report as JSON")

	return cmd
}

func syncRun(ctx context.Context, opts *SyncOptions) error {
	ios := opts.IOStreams

	cfg, err := opts.Config()
	if err != nil {
		if config.IsConfigNotFound(err) {
			return cmdutil.FlagErrorWrap(err)
		}
		return err
	}
	if err := cmdutil.RequireFlag("package-source", cfg.PackageSource); err != nil {
		return err
	}
	if err := cmdutil.RequireFlag("package-target", cfg.PackageTarget); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return cmdutil.FlagErrorWrap(err)
	}

	source := registry.Endpoint{URL: cfg.PackageSource, Token: resolveToken(opts, cfg.PackageSourceToken, cfg.PackageSource)}
	target := registry.Endpoint{URL: cfg.PackageTarget, Token: resolveToken(opts, cfg.PackageTargetToken, cfg.PackageTarget)}
	if !target.HasToken() {
		return cmdutil.FlagErrorf("--package-target-token is required (or run 'nugetsync auth login --registry %s')", cfg.PackageTarget)
	}

	var m *metrics.Metrics
	if opts.Metrics != nil {
		m = opts.Metrics()
	}

	ios.Logger.Debug().
		Stringer("source", source).
		Stringer("target", target).
		Bool("dry_run", opts.DryRun).
		Msg("starting sync")

	s := syncer.New(
		opts.RegistryClient(source),
		opts.RegistryClient(target),
		syncer.Config{
			ScratchDir:         cfg.ScratchDir,
			PushTimeout:        cfg.PushTimeout,
			RetryBudget:        cfg.RetryBudget,
			PageSize:           cfg.PageSize,
			EnumerationTimeout: cfg.EnumerationTimeout,
			DryRun:             opts.DryRun,
		},
		syncer.WithLogger(ios.Logger),
		syncer.WithMetrics(m),
	)

	packageName := opts.PackageName
	if opts.AllPackages {
		packageName = ""
	}

	report, syncErr := s.Sync(ctx, packageName, cfg.IncludePrerelease)
	if syncErr == nil {
		m.Succeeded(time.Now())
	}

	if report != nil && (syncErr == nil || len(report.Results) > 0) {
		if err := printReport(ios, report, opts.JSON); err != nil {
			return err
		}
	}

	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		if syncErr != nil {
			ios.Logger.Warn().Err(err).Msg("failed to write metrics file")
			return syncErr
		}
		return err
	}

	return syncErr
}

// resolveToken returns the configured token, falling back to the keychain.
// An unreachable keychain is logged and treated as no token.
func resolveToken(opts *SyncOptions, configured, registryURL string) string {
	if configured != "" || opts.TokenLookup == nil {
		return configured
	}
	token, err := opts.TokenLookup(registryURL)
	if err != nil {
		opts.IOStreams.Logger.Warn().Err(err).Str("registry", registryURL).Msg("keychain lookup failed")
		return ""
	}
	return token
}

type jsonReport struct {
	DryRun   bool                    `json:"dryRun"`
	Totals   syncer.Totals           `json:"totals"`
	Packages []syncer.PackageSummary `json:"packages"`
}

func printReport(ios *iostreams.IOStreams, report *syncer.Report, asJSON bool) error {
	if asJSON {
		return cmdutil.WriteJSON(ios.Out, jsonReport{
			DryRun:   report.DryRun,
			Totals:   report.Totals(),
			Packages: report.Summaries(),
		})
	}

	cs := ios.ColorScheme()
	tp := ios.NewTablePrinter("PACKAGE", "MISSING", "PUSHED", "SKIPPED", "UNAVAILABLE")
	for _, res := range report.Results {
		tp.AddRow(
			res.Package,
			strconv.Itoa(len(res.Missing)),
			strconv.Itoa(len(res.Pushed)),
			strconv.Itoa(len(res.Skipped)),
			strconv.Itoa(len(res.Unavailable)),
		)
	}
	if err := tp.Render(); err != nil {
		return err
	}

	t := report.Totals()
	switch {
	case report.DryRun:
		fmt.Fprintf(ios.ErrOut, "%s Dry run: %d %s missing across %d %s\n",
			cs.WarningIcon(), t.Missing, plural(t.Missing, "version"), t.Packages, plural(t.Packages, "package"))
	case t.Unavailable > 0:
		fmt.Fprintf(ios.ErrOut, "%s Pushed %d %s, %d unavailable from source\n",
			cs.WarningIcon(), t.Pushed, plural(t.Pushed, "version"), t.Unavailable)
	default:
		fmt.Fprintf(ios.ErrOut, "%s Pushed %d %s across %d %s\n",
			cs.SuccessIcon(), t.Pushed, plural(t.Pushed, "version"), t.Packages, plural(t.Packages, "package"))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
