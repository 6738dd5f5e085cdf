// Package nugetsync is the entry point of the nugetsync CLI.
package nugetsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/nugetsync/internal/cmd/factory"
	"github.com/schmitthub/nugetsync/internal/cmd/root"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/signals"
)

// Build-time variables injected via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

// Every failure, usage errors included, exits with exitError.
const (
	exitOk    = 0
	exitError = 1
)

// Main is the entry point for the nugetsync CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	f := factory.New(Version, Commit)
	// Ensure logs are flushed on exit
	defer f.CloseLogger()

	ctx, cancel := signals.SetupSignalContext(context.Background())
	defer cancel()

	rootCmd := root.NewCmdRoot(f)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		return handleError(ctx, f.IOStreams, cmd, err)
	}
	return exitOk
}

// handleError prints err and maps it to an exit code.
func handleError(ctx context.Context, ios *iostreams.IOStreams, cmd *cobra.Command, err error) int {
	cs := ios.ColorScheme()

	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	if cmdutil.IsFlagError(err) {
		fmt.Fprintln(ios.ErrOut, err)
		if !strings.Contains(err.Error(), "--help") {
			printHelpHint(ios, cmd)
		}
		return exitError
	}

	var interrupted *signals.InterruptedError
	if errors.As(context.Cause(ctx), &interrupted) {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), interrupted)
		return exitError
	}

	fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)
	return exitError
}

func printHelpHint(ios *iostreams.IOStreams, cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	fmt.Fprintf(ios.ErrOut, "\nRun '%s --help' for usage.\n", cmd.CommandPath())
}
