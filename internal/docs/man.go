package docs

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ManHeader is the metadata of the .TH line.
type ManHeader struct {
	Section string
	Date    *time.Time
	Source  string
	Manual  string
}

func (h ManHeader) section() string {
	if h.Section == "" {
		return "1"
	}
	return h.Section
}

// ManFilename is the page name of cmd, e.g. "nugetsync-auth-login.1".
func ManFilename(cmd *cobra.Command, section string) string {
	return joinPath(cmd, "-") + "." + section
}

// Man renders the man page of a single command.
func Man(cmd *cobra.Command, header ManHeader, w io.Writer) error {
	_, err := w.Write(md2man.Render(manMarkdown(cmd, header)))
	return err
}

// manMarkdown builds the md2man source of a page.
func manMarkdown(cmd *cobra.Command, header ManHeader) []byte {
	cmd.InitDefaultHelpCmd()
	cmd.InitDefaultHelpFlag()

	var buf bytes.Buffer
	name := cmd.CommandPath()
	section := header.section()

	date := ""
	if header.Date != nil {
		date = header.Date.Format("Jan 2006")
	}
	fmt.Fprintf(&buf, "%% %s(%s) %s | %s\n\n", strings.ToUpper(joinPath(cmd, "-")), section, date, header.Manual)

	short := cmd.Short
	if short == "" {
		short = "manual page for " + name
	}
	fmt.Fprintf(&buf, "# NAME\n%s \\- %s\n\n", name, short)

	fmt.Fprintf(&buf, "# SYNOPSIS\n**%s**", name)
	if cmd.NonInheritedFlags().HasAvailableFlags() {
		buf.WriteString(" [OPTIONS]")
	}
	if cmd.HasAvailableSubCommands() {
		buf.WriteString(" [COMMAND]")
	}
	buf.WriteString("\n\n")

	if cmd.Long != "" {
		fmt.Fprintf(&buf, "# DESCRIPTION\n%s\n\n", cmd.Long)
	}

	subs := visibleCommands(cmd)
	if len(subs) > 0 {
		buf.WriteString("# COMMANDS\n")
		for _, c := range subs {
			fmt.Fprintf(&buf, "**%s**\n: %s\n\n", c.Name(), c.Short)
		}
	}

	local, inherited := cmd.NonInheritedFlags(), cmd.InheritedFlags()
	if local.HasAvailableFlags() || inherited.HasAvailableFlags() {
		buf.WriteString("# OPTIONS\n")
		manFlags(&buf, local)
		manFlags(&buf, inherited)
	}

	if cmd.Example != "" {
		fmt.Fprintf(&buf, "# EXAMPLES\n```\n%s\n```\n\n", cmd.Example)
	}

	var related []*cobra.Command
	if cmd.HasParent() {
		related = append(related, cmd.Parent())
	}
	related = append(related, subs...)
	if len(related) > 0 {
		refs := make([]string, len(related))
		for i, c := range related {
			refs[i] = fmt.Sprintf("**%s(%s)**", joinPath(c, "-"), section)
		}
		fmt.Fprintf(&buf, "# SEE ALSO\n%s\n", strings.Join(refs, ", "))
	}

	return buf.Bytes()
}

func manFlags(buf *bytes.Buffer, flags *pflag.FlagSet) {
	var list []*pflag.Flag
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			list = append(list, f)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	for _, f := range list {
		term := "**--" + f.Name + "**"
		if f.Shorthand != "" {
			term = "**-" + f.Shorthand + "**, " + term
		}
		if typ := f.Value.Type(); typ != "bool" {
			term += " <" + typ + ">"
		}
		fmt.Fprintf(buf, "%s\n: %s", term, f.Usage)
		switch f.DefValue {
		case "", "false", "0", "0s", "[]":
		default:
			fmt.Fprintf(buf, " (default: %s)", f.DefValue)
		}
		buf.WriteString("\n\n")
	}
}
