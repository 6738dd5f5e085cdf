package root

import (
	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmd/auth"
	"github.com/schmitthub/nugetsync/internal/cmd/config"
	synccmd "github.com/schmitthub/nugetsync/internal/cmd/sync"
	versioncmd "github.com/schmitthub/nugetsync/internal/cmd/version"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
)

// NewCmdRoot creates the root command for the nugetsync CLI. Run without a
// subcommand it syncs packages.
func NewCmdRoot(f *cmdutil.Factory) *cobra.Command {
	cmd := synccmd.NewCmdSync(f, nil)

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.Version = f.Version
	cmd.SetVersionTemplate(versioncmd.Format(f.Version, f.Commit))

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// Changed flags of the running command override file and env values.
		if err := f.ConfigLoader().BindFlags(c.Flags()); err != nil {
			return err
		}
		f.InitLogger()

		f.IOStreams.Logger.Debug().
			Str("version", f.Version).
			Str("command", c.CommandPath()).
			Bool("debug", f.Debug).
			Msg("nugetsync starting")
		return nil
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.FlagErrorWrap(err)
	})

	// Global flags
	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&f.ConfigFile, "config", "", "Path to nugetsync.yaml (default: ./nugetsync.yaml)")

	registerAliases(cmd, f)

	cmd.AddCommand(config.NewCmdConfig(f))
	cmd.AddCommand(auth.NewCmdAuth(f))
	cmd.AddCommand(versioncmd.NewCmdVersion(f))

	return cmd
}
