package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NoArgs rejects positional arguments.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	if cmd.HasSubCommands() {
		return FlagErrorf(
			"%[1]s: unknown command: %[2]s %[3]s\n\nRun '%[2]s --help' for more information",
			binName(cmd),
			cmd.CommandPath(),
			args[0],
		)
	}

	return FlagErrorf(
		"%[1]s: '%[2]s' accepts no arguments\n\nUsage:  %[3]s",
		binName(cmd),
		cmd.CommandPath(),
		cmd.UseLine(),
	)
}

// MutuallyExclusive returns a FlagError carrying message when more than one
// of conditions holds.
func MutuallyExclusive(message string, conditions ...bool) error {
	n := 0
	for _, c := range conditions {
		if c {
			n++
		}
	}
	if n > 1 {
		return FlagErrorf("%s", message)
	}
	return nil
}

// RequireFlag returns a FlagError naming flag when value is empty.
func RequireFlag(flag, value string) error {
	if value == "" {
		return FlagErrorf("--%s is required", flag)
	}
	return nil
}

func binName(cmd *cobra.Command) string {
	return cmd.Root().Name()
}
