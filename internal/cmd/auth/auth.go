// Package auth groups the commands that manage registry tokens in the OS
// keychain.
package auth

import (
	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmd/auth/login"
	"github.com/schmitthub/nugetsync/internal/cmd/auth/logout"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
)

// NewCmdAuth creates the auth command.
func NewCmdAuth(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store or remove registry tokens",
		Long: `Manages registry tokens kept in the OS keychain.

Tokens are stored per registry host, so every feed on a host shares one
token. A sync run uses a stored token when neither a flag nor an environment
variable provides one.`,
		Args: cmdutil.NoArgs,
	}

	cmd.AddCommand(login.NewCmdLogin(f, nil))
	cmd.AddCommand(logout.NewCmdLogout(f, nil))

	return cmd
}
