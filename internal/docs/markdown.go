package docs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// MarkdownFilename is the page name of cmd, e.g. "nugetsync_auth_login.md".
func MarkdownFilename(cmd *cobra.Command) string {
	return joinPath(cmd, "_") + ".md"
}

// Markdown renders the reference page of a single command.
func Markdown(cmd *cobra.Command, w io.Writer) error {
	cmd.InitDefaultHelpCmd()
	cmd.InitDefaultHelpFlag()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "## %s\n\n", cmd.CommandPath())
	if cmd.Short != "" {
		fmt.Fprintf(&buf, "%s\n\n", cmd.Short)
	}

	if cmd.Runnable() {
		buf.WriteString("### Synopsis\n\n")
		if cmd.Long != "" {
			fmt.Fprintf(&buf, "%s\n\n", cmd.Long)
		}
		fmt.Fprintf(&buf, "```\n%s\n```\n\n", cmd.UseLine())
	}

	if cmd.Example != "" {
		fmt.Fprintf(&buf, "### Examples\n\n```\n%s\n```\n\n", cmd.Example)
	}

	if subs := visibleCommands(cmd); len(subs) > 0 {
		buf.WriteString("### Commands\n\n")
		for _, c := range subs {
			fmt.Fprintf(&buf, "* [%s](%s) - %s\n", c.CommandPath(), MarkdownFilename(c), c.Short)
		}
		buf.WriteString("\n")
	}

	if flags := cmd.NonInheritedFlags(); flags.HasAvailableFlags() {
		fmt.Fprintf(&buf, "### Options\n\n```\n%s```\n\n", flags.FlagUsages())
	}
	if flags := cmd.InheritedFlags(); flags.HasAvailableFlags() {
		fmt.Fprintf(&buf, "### Global options\n\n```\n%s```\n\n", flags.FlagUsages())
	}

	if cmd.HasParent() {
		parent := cmd.Parent()
		fmt.Fprintf(&buf, "### See also\n\n* [%s](%s) - %s\n", parent.CommandPath(), MarkdownFilename(parent), parent.Short)
	}

	_, err := buf.WriteTo(w)
	return err
}
