package check

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams"
)

// CheckOptions holds options for the config check command.
type CheckOptions struct {
	IOStreams    *iostreams.IOStreams
	ConfigLoader func() *config.Loader
	Config       func() (*config.Config, error)
}

// NewCmdCheck creates the config check command.
func NewCmdCheck(f *cmdutil.Factory, runF func(context.Context, *CheckOptions) error) *cobra.Command {
	opts := &CheckOptions{
		IOStreams:    f.IOStreams,
		ConfigLoader: f.ConfigLoader,
		Config:       f.Config,
	}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate and print the resolved configuration",
		Long: `Loads nugetsync.yaml together with NUGETSYNC_* environment variables and
reports the settings a sync run would use. Tokens are shown as set or unset,
never printed.`,
		Example: `  # Validate configuration in current directory
  nugetsync config check

  # Validate a specific file
  nugetsync --config ci/nugetsync.yaml config check`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return checkRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func checkRun(_ context.Context, opts *CheckOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		fmt.Fprintf(ios.ErrOut, "%s Failed to load configuration\n  %s\n", cs.FailureIcon(), err)
		return cmdutil.SilentError
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(ios.ErrOut, "%s Configuration is invalid\n", cs.FailureIcon())
		for _, e := range errorsOf(err) {
			fmt.Fprintf(ios.ErrOut, "  - %s\n", e)
		}
		return cmdutil.SilentError
	}

	source := "(none)"
	if opts.ConfigLoader != nil {
		if p := opts.ConfigLoader().ConfigPath(); p != "" {
			source = p
		}
	}

	tp := ios.NewTablePrinter("SETTING", "VALUE")
	tp.AddRow("config file", source)
	tp.AddRow("package_source", orUnset(cfg.PackageSource))
	tp.AddRow("package_target", orUnset(cfg.PackageTarget))
	tp.AddRow("package_source_token", tokenState(cfg.PackageSourceToken))
	tp.AddRow("package_target_token", tokenState(cfg.PackageTargetToken))
	tp.AddRow("include_prerelease", fmt.Sprint(cfg.IncludePrerelease))
	tp.AddRow("scratch_dir", orUnset(cfg.ScratchDir))
	tp.AddRow("push_timeout", cfg.PushTimeout.String())
	tp.AddRow("retry_budget", cfg.RetryBudget.String())
	tp.AddRow("enumeration_timeout", cfg.EnumerationTimeout.String())
	tp.AddRow("page_size", fmt.Sprint(cfg.PageSize))
	tp.AddRow("http_timeout", cfg.HTTPTimeout.String())
	tp.AddRow("metrics_file", orUnset(cfg.MetricsFile))
	tp.AddRow("logs.file_enabled", fmt.Sprint(cfg.Logs.FileEnabled))
	if err := tp.Render(); err != nil {
		return err
	}

	var missing []string
	if cfg.PackageSource == "" {
		missing = append(missing, "package_source")
	}
	if cfg.PackageTarget == "" {
		missing = append(missing, "package_target")
	}
	if len(missing) > 0 {
		fmt.Fprintf(ios.ErrOut, "%s Configuration is valid; a sync run still needs %s\n",
			cs.WarningIcon(), strings.Join(missing, " and "))
		return nil
	}

	fmt.Fprintf(ios.ErrOut, "%s Configuration is valid\n", cs.SuccessIcon())
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func tokenState(token string) string {
	if token == "" {
		return "unset"
	}
	return "set"
}

// errorsOf flattens a joined error into its parts.
func errorsOf(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
