package version

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
)

// NewCmdVersion creates the "version" subcommand.
func NewCmdVersion(f *cmdutil.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of nugetsync",
		Args:  cmdutil.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(f.IOStreams.Out, Format(f.Version, f.Commit))
		},
	}
}

// Format returns the version line. The commit is shortened to seven
// characters and omitted when unknown.
func Format(version, commit string) string {
	version = strings.TrimPrefix(version, "v")
	if version == "" {
		version = "dev"
	}

	switch commit {
	case "", "none", "unknown":
		return fmt.Sprintf("nugetsync version %s\n", version)
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("nugetsync version %s (%s)\n", version, commit)
}
