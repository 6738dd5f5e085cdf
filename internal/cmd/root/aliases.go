package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmd/auth/login"
	"github.com/schmitthub/nugetsync/internal/cmd/auth/logout"
	synccmd "github.com/schmitthub/nugetsync/internal/cmd/sync"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
)

// Alias defines a top-level shortcut to a command that lives elsewhere in
// the tree. Each alias gets a fresh command instance, so flags and RunE
// come along; only Use and optionally Example are replaced.
type Alias struct {
	Use     string
	Example string
	Command func(*cmdutil.Factory) *cobra.Command
}

var topLevelAliases = []Alias{
	{
		Use: "sync",
		Example: `  # Same as running nugetsync without a subcommand
  nugetsync sync --package-name Contoso.Core --dry-run`,
		Command: func(f *cmdutil.Factory) *cobra.Command { return synccmd.NewCmdSync(f, nil) },
	},
	{
		Use: "login",
		Example: `  # Shortcut for 'nugetsync auth login'
  echo "$TOKEN" | nugetsync login --registry https://pkgs.example.com/v3/index.json`,
		Command: func(f *cmdutil.Factory) *cobra.Command { return login.NewCmdLogin(f, nil) },
	},
	{
		Use: "logout",
		Example: `  # Shortcut for 'nugetsync auth logout'
  nugetsync logout --registry https://pkgs.example.com/v3/index.json`,
		Command: func(f *cmdutil.Factory) *cobra.Command { return logout.NewCmdLogout(f, nil) },
	},
}

// registerAliases adds every top-level alias to root.
func registerAliases(root *cobra.Command, f *cmdutil.Factory) {
	for _, alias := range topLevelAliases {
		if alias.Use == "" {
			panic("alias has empty Use field")
		}
		if alias.Command == nil {
			panic(fmt.Sprintf("alias %q has nil Command factory", alias.Use))
		}
		cmd := alias.Command(f)
		cmd.Use = alias.Use
		if alias.Example != "" {
			cmd.Example = alias.Example
		}
		root.AddCommand(cmd)
	}
}
