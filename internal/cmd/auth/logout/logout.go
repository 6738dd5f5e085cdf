package logout

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/keyring"
)

// LogoutOptions holds options for the auth logout command.
type LogoutOptions struct {
	IOStreams   *iostreams.IOStreams
	DeleteToken func(registryURL string) error

	Registry string
}

// NewCmdLogout creates the auth logout command.
func NewCmdLogout(f *cmdutil.Factory, runF func(context.Context, *LogoutOptions) error) *cobra.Command {
	opts := &LogoutOptions{
		IOStreams:   f.IOStreams,
		DeleteToken: keyring.DeleteToken,
	}

	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Remove a registry token from the OS keychain",
		Example: `  nugetsync auth logout --registry https://pkgs.example.com/v3/index.json`,
		Args:    cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlag("registry", opts.Registry); err != nil {
				return err
			}
			if _, err := keyring.TokenUser(opts.Registry); err != nil {
				return cmdutil.FlagErrorWrap(err)
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return logoutRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Registry, "registry", "", "Service index URL of the registry")

	return cmd
}

func logoutRun(_ context.Context, opts *LogoutOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()
	host, _ := keyring.TokenUser(opts.Registry)

	err := opts.DeleteToken(opts.Registry)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Fprintf(ios.ErrOut, "%s No token stored for %s\n", cs.WarningIcon(), host)
		return nil
	case err != nil:
		return fmt.Errorf("removing token: %w", err)
	}

	fmt.Fprintf(ios.ErrOut, "%s Removed token for %s\n", cs.SuccessIcon(), host)
	return nil
}
