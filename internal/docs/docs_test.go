package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nugetsync",
		Short: "Copy missing NuGet package versions between registries",
		Long:  "Copies every version of a package that the source feed has and the target lacks.",
		RunE:  func(*cobra.Command, []string) error { return nil },
	}
	root.Flags().String("package-name", "", "Package to sync")
	root.Flags().Duration("push-timeout", 0, "Time allowed for one push attempt")
	root.PersistentFlags().BoolP("debug", "D", false, "Enable debug logging")

	auth := &cobra.Command{Use: "auth", Short: "Manage registry tokens"}
	login := &cobra.Command{
		Use:     "login",
		Short:   "Store a registry token",
		Example: "  nugetsync auth login --registry https://a.example/v3/index.json",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	login.Flags().String("registry", "", "Registry service index URL")
	auth.AddCommand(login)

	root.AddCommand(auth, &cobra.Command{
		Use:    "internal",
		Short:  "Hidden helper",
		Hidden: true,
		RunE:   func(*cobra.Command, []string) error { return nil },
	})
	return root
}

func TestFilenames(t *testing.T) {
	root := newTestRootCmd()
	login, _, err := root.Find([]string{"auth", "login"})
	require.NoError(t, err)

	assert.Equal(t, "nugetsync_auth_login.md", MarkdownFilename(login))
	assert.Equal(t, "nugetsync-auth-login.1", ManFilename(login, "1"))
	assert.Equal(t, "nugetsync.md", MarkdownFilename(root))
}

func TestMarkdown(t *testing.T) {
	root := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, Markdown(root, &buf))
	out := buf.String()

	assert.Contains(t, out, "## nugetsync\n")
	assert.Contains(t, out, "### Synopsis")
	assert.Contains(t, out, "nugetsync [flags]")
	assert.Contains(t, out, "* [nugetsync auth](nugetsync_auth.md) - Manage registry tokens")
	assert.Contains(t, out, "--package-name string")
	assert.NotContains(t, out, "internal")
	assert.NotContains(t, out, "### See also")
}

func TestMarkdown_Subcommand(t *testing.T) {
	root := newTestRootCmd()
	login, _, err := root.Find([]string{"auth", "login"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Markdown(login, &buf))
	out := buf.String()

	assert.Contains(t, out, "## nugetsync auth login\n")
	assert.Contains(t, out, "### Examples")
	assert.Contains(t, out, "### Global options")
	assert.Contains(t, out, "--debug")
	assert.Contains(t, out, "* [nugetsync auth](nugetsync_auth.md) - Manage registry tokens")
}

func TestManMarkdown(t *testing.T) {
	root := newTestRootCmd()

	out := string(manMarkdown(root, ManHeader{Manual: "nugetsync Manual"}))

	assert.Contains(t, out, "% NUGETSYNC(1)  | nugetsync Manual")
	assert.Contains(t, out, "# NAME\nnugetsync \\- Copy missing NuGet package versions between registries")
	assert.Contains(t, out, "**nugetsync** [OPTIONS] [COMMAND]")
	assert.Contains(t, out, "**-D**, **--debug**\n: Enable debug logging\n")
	assert.Contains(t, out, "**--push-timeout** <duration>\n: Time allowed for one push attempt\n")
	assert.Contains(t, out, "# SEE ALSO\n**nugetsync-auth(1)**")
	assert.NotContains(t, out, "internal")
}

func TestTrees(t *testing.T) {
	root := newTestRootCmd()
	mdDir := t.TempDir()
	manDir := t.TempDir()

	require.NoError(t, MarkdownTree(root, mdDir))
	require.NoError(t, ManTree(root, manDir, ManHeader{Source: "nugetsync", Manual: "nugetsync Manual"}))

	for _, name := range []string{"nugetsync.md", "nugetsync_auth.md", "nugetsync_auth_login.md"} {
		assert.FileExists(t, filepath.Join(mdDir, name))
	}
	assert.NoFileExists(t, filepath.Join(mdDir, "nugetsync_internal.md"))

	page, err := os.ReadFile(filepath.Join(manDir, "nugetsync-auth-login.1"))
	require.NoError(t, err)
	assert.Contains(t, string(page), ".TH")
	assert.Contains(t, string(page), "NUGETSYNC-AUTH-LOGIN")
	assert.Contains(t, string(page), `\fBnugetsync auth login`)
}
