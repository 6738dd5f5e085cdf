// Package docs renders reference documentation for a cobra command tree as
// Markdown pages and man pages.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// visibleCommands returns the non-hidden subcommands of cmd sorted by name,
// without the generated help command.
func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "help" {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// walk calls fn for cmd and every visible command below it, children first.
func walk(cmd *cobra.Command, fn func(*cobra.Command) error) error {
	for _, c := range visibleCommands(cmd) {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return fn(cmd)
}

// writeFile creates path and hands it to render.
func writeFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// joinPath joins the words of a command path with sep.
func joinPath(cmd *cobra.Command, sep string) string {
	return strings.ReplaceAll(cmd.CommandPath(), " ", sep)
}

// MarkdownTree writes one Markdown page per command into dir.
func MarkdownTree(root *cobra.Command, dir string) error {
	return walk(root, func(c *cobra.Command) error {
		return writeFile(filepath.Join(dir, MarkdownFilename(c)), func(f *os.File) error {
			return Markdown(c, f)
		})
	})
}

// ManTree writes one man page per command into dir.
func ManTree(root *cobra.Command, dir string, header ManHeader) error {
	return walk(root, func(c *cobra.Command) error {
		return writeFile(filepath.Join(dir, ManFilename(c, header.section())), func(f *os.File) error {
			return Man(c, header, f)
		})
	})
}
