package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader(t.TempDir(), "").Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
package_source: https://source.example.com/v3/index.json
package_target: " https://target.example.com/v3/index.json "
include_prerelease: true
push_timeout: 90s
page_size: 50
logs:
  file_enabled: true
  max_backups: 9
`)

	cfg, err := NewLoader(dir, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "https://source.example.com/v3/index.json", cfg.PackageSource)
	assert.Equal(t, "https://target.example.com/v3/index.json", cfg.PackageTarget)
	assert.True(t, cfg.IncludePrerelease)
	assert.Equal(t, 90*time.Second, cfg.PushTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RetryBudget)
	assert.Equal(t, 50, cfg.PageSize)
	assert.True(t, cfg.Logs.FileEnabled)
	assert.Equal(t, 9, cfg.Logs.MaxBackups)
	assert.Equal(t, 50, cfg.Logs.MaxSizeMB)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "package_source: https://file.example.com/index.json\n")

	t.Setenv("NUGETSYNC_PACKAGE_SOURCE", "https://env.example.com/index.json")
	t.Setenv("NUGETSYNC_PACKAGE_TARGET_TOKEN", "env-token")
	t.Setenv("NUGETSYNC_ENUMERATION_TIMEOUT", "45s")
	t.Setenv("NUGETSYNC_LOGS_MAX_AGE_DAYS", "2")

	cfg, err := NewLoader(dir, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/index.json", cfg.PackageSource)
	assert.Equal(t, "env-token", cfg.PackageTargetToken)
	assert.Equal(t, 45*time.Second, cfg.EnumerationTimeout)
	assert.Equal(t, 2, cfg.Logs.MaxAgeDays)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("NUGETSYNC_PACKAGE_TARGET", "https://env.example.com/index.json")
	t.Setenv("NUGETSYNC_PUSH_TIMEOUT", "1m")

	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	fs.String("package-target", "", "")
	fs.Duration("push-timeout", 0, "")
	fs.Bool("include-prerelease", false, "")
	require.NoError(t, fs.Parse([]string{"--package-target", "https://flag.example.com/index.json"}))

	l := NewLoader(t.TempDir(), "")
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com/index.json", cfg.PackageTarget)
	// Unchanged flags do not mask env or defaults.
	assert.Equal(t, time.Minute, cfg.PushTimeout)
	assert.False(t, cfg.IncludePrerelease)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(p, []byte("page_size: 7\n"), 0o644))

	cfg, err := NewLoader(t.TempDir(), p).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.PageSize)

	_, err = NewLoader(dir, filepath.Join(dir, "missing.yaml")).Load()
	require.Error(t, err)
	assert.True(t, IsConfigNotFound(err))
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "push_timeout: forever\n")

	_, err := NewLoader(dir, "").Load()
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, NewLoader(dir, "").ConfigPath())

	p := writeConfig(t, dir, "page_size: 1\n")
	assert.Equal(t, p, NewLoader(dir, "").ConfigPath())
}

func TestLogsConfig_LoggingConfig(t *testing.T) {
	lc := LogsConfig{FileEnabled: true, MaxSizeMB: 10}.LoggingConfig()
	assert.True(t, lc.IsFileEnabled())
	assert.Equal(t, 10, lc.GetMaxSizeMB())
	assert.Equal(t, 7, lc.GetMaxAgeDays())
}

func TestLogsConfig_ResolveDir(t *testing.T) {
	dir, err := LogsConfig{Dir: "/var/log/nugetsync"}.ResolveDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/nugetsync", dir)

	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir, err = LogsConfig{}.ResolveDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("nugetsync", "logs"), filepath.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir)))
}
