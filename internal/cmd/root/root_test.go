package root

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/nugetsync/internal/cmd/factory"
	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/iostreams/iostreamstest"
)

func newTestFactory(t *testing.T) (*cmdutil.Factory, *iostreamstest.TestIOStreams) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	tio := iostreamstest.New()
	f := factory.New("1.0.0", "abc1234")
	f.WorkDir = t.TempDir()
	f.IOStreams = tio.IOStreams
	t.Cleanup(f.CloseLogger)
	return f, tio
}

func TestNewCmdRoot(t *testing.T) {
	f, _ := newTestFactory(t)
	cmd := NewCmdRoot(f)

	assert.Equal(t, "nugetsync", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)

	found := map[string]bool{}
	for _, sub := range cmd.Commands() {
		found[sub.Name()] = true
	}
	for _, name := range []string{"sync", "login", "logout", "config", "auth", "version"} {
		assert.True(t, found[name], "expected subcommand %q", name)
	}
}

func TestNewCmdRoot_GlobalFlags(t *testing.T) {
	f, _ := newTestFactory(t)
	cmd := NewCmdRoot(f)

	require.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	require.NotNil(t, cmd.PersistentFlags().ShorthandLookup("D"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	// Sync flags stay on the root command only.
	versionCmd, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.Nil(t, versionCmd.Flags().Lookup("package-name"))
}

func TestNewCmdRoot_PersistentFlagsReachFactory(t *testing.T) {
	f, tio := newTestFactory(t)
	path := filepath.Join(f.WorkDir, "ci.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 25\n"), 0o600))

	cmd := NewCmdRoot(f)
	cmd.SetArgs([]string{"-D", "--config", path, "version"})
	require.NoError(t, cmd.Execute())

	assert.True(t, f.Debug)
	assert.Equal(t, path, f.ConfigFile)
	assert.Equal(t, "nugetsync version 1.0.0 (abc1234)\n", tio.OutBuf.String())

	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestNewCmdRoot_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "bad duration", args: []string{"--package-name", "X", "--push-timeout", "soon"}},
		{name: "unknown command", args: []string{"bogus"}},
		{name: "missing package", args: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t)
			cmd := NewCmdRoot(f)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.True(t, cmdutil.IsFlagError(err), "got %T: %v", err, err)
		})
	}
}
