package config

import (
	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmd/config/check"
	initcmd "github.com/schmitthub/nugetsync/internal/cmd/config/init"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
)

// NewCmdConfig creates the config command.
func NewCmdConfig(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the nugetsync configuration file",
		Long: `Commands for creating and validating nugetsync.yaml.

Settings are resolved from the file, then NUGETSYNC_* environment variables,
then command-line flags.`,
		Args: cmdutil.NoArgs,
	}

	cmd.AddCommand(initcmd.NewCmdInit(f, nil))
	cmd.AddCommand(check.NewCmdCheck(f, nil))

	return cmd
}
