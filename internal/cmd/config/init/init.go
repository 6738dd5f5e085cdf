package init

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams"
)

// InitOptions holds options for the config init command.
type InitOptions struct {
	IOStreams *iostreams.IOStreams
	WorkDir   string

	File          string
	Force         bool
	PackageSource string
	PackageTarget string
}

// NewCmdInit creates the config init command.
func NewCmdInit(f *cmdutil.Factory, runF func(context.Context, *InitOptions) error) *cobra.Command {
	opts := &InitOptions{
		IOStreams: f.IOStreams,
		WorkDir:   f.WorkDir,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter nugetsync.yaml",
		Long: `Writes nugetsync.yaml with every setting at its default value.

Tokens are never written to the file. Supply them through the environment
or store them with 'nugetsync auth login'.`,
		Example: `  # Create nugetsync.yaml in the current directory
  nugetsync config init

  # Pre-fill the registries
  nugetsync config init --package-source https://a.example/v3/index.json --package-target https://b.example/v3/index.json

  # Replace an existing file
  nugetsync config init --force`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return initRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to write (default: ./nugetsync.yaml)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&opts.PackageSource, "package-source", "", "Source feed service index URL")
	cmd.Flags().StringVar(&opts.PackageTarget, "package-target", "", "Target feed service index URL")

	return cmd
}

func initRun(_ context.Context, opts *InitOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	path := opts.File
	if path == "" {
		path = filepath.Join(opts.WorkDir, config.FileName)
	}

	cfg := config.Default()
	cfg.PackageSource = opts.PackageSource
	cfg.PackageTarget = opts.PackageTarget
	if err := cfg.Validate(); err != nil {
		return cmdutil.FlagErrorWrap(err)
	}

	if err := config.WriteStarter(path, cfg, opts.Force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return cmdutil.FlagErrorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}

	fmt.Fprintf(ios.ErrOut, "%s Wrote %s\n", cs.SuccessIcon(), path)
	return nil
}
