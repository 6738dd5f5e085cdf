package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/nugetsync/internal/cmdutil"
	"github.com/schmitthub/nugetsync/internal/config"
	"github.com/schmitthub/nugetsync/internal/iostreams/iostreamstest"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/registry/registrytest"
)

const (
	sourceURL = "https://source.example/v3/index.json"
	targetURL = "https://target.example/v3/index.json"
)

func TestNewCmdSync(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     SyncOptions
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:  "single package",
			input: "--package-name Contoso.Core",
			output: SyncOptions{
				PackageName:        "Contoso.Core",
				PushTimeout:        5 * time.Minute,
				EnumerationTimeout: 2 * time.Minute,
			},
		},
		{
			name: "all flags",
			input: "--package-name Contoso.Core --package-source " + sourceURL + " --package-target " + targetURL +
				" --package-source-token s --package-target-token t --include-prerelease --dry-run" +
				" --scratch-dir /tmp/stage --push-timeout 30s --enumeration-timeout 1m --metrics-file out.prom --json",
			output: SyncOptions{
				PackageName:        "Contoso.Core",
				PackageSource:      sourceURL,
				PackageTarget:      targetURL,
				PackageSourceToken: "s",
				PackageTargetToken: "t",
				IncludePrerelease:  true,
				DryRun:             true,
				ScratchDir:         "/tmp/stage",
				PushTimeout:        30 * time.Second,
				EnumerationTimeout: time.Minute,
				MetricsFile:        "out.prom",
				JSON:               true,
			},
		},
		{
			name:  "all packages",
			input: "--all-packages",
			output: SyncOptions{
				AllPackages:        true,
				PushTimeout:        5 * time.Minute,
				EnumerationTimeout: 2 * time.Minute,
			},
		},
		{
			name:       "no package selection",
			input:      "",
			wantErr:    true,
			wantErrMsg: "--package-name is required unless --all-packages is set",
		},
		{
			name:       "name and all packages",
			input:      "--package-name Contoso.Core --all-packages",
			wantErr:    true,
			wantErrMsg: "specify only one of --package-name or --all-packages",
		},
		{
			name:       "positional argument",
			input:      "--package-name Contoso.Core extra",
			wantErr:    true,
			wantErrMsg: "accepts no arguments",
		},
		{
			name:       "invalid duration",
			input:      "--package-name Contoso.Core --push-timeout soon",
			wantErr:    true,
			wantErrMsg: "invalid argument \"soon\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{}

			var gotOpts *SyncOptions
			cmd := NewCmdSync(f, func(_ context.Context, opts *SyncOptions) error {
				gotOpts = opts
				return nil
			})

			argv, err := shlex.Split(tt.input)
			require.NoError(t, err)

			cmd.SetArgs(argv)
			cmd.SetIn(&bytes.Buffer{})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			_, err = cmd.ExecuteC()
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, gotOpts)
			assert.Equal(t, tt.output.PackageName, gotOpts.PackageName)
			assert.Equal(t, tt.output.AllPackages, gotOpts.AllPackages)
			assert.Equal(t, tt.output.PackageSource, gotOpts.PackageSource)
			assert.Equal(t, tt.output.PackageTarget, gotOpts.PackageTarget)
			assert.Equal(t, tt.output.PackageSourceToken, gotOpts.PackageSourceToken)
			assert.Equal(t, tt.output.PackageTargetToken, gotOpts.PackageTargetToken)
			assert.Equal(t, tt.output.IncludePrerelease, gotOpts.IncludePrerelease)
			assert.Equal(t, tt.output.DryRun, gotOpts.DryRun)
			assert.Equal(t, tt.output.ScratchDir, gotOpts.ScratchDir)
			assert.Equal(t, tt.output.PushTimeout, gotOpts.PushTimeout)
			assert.Equal(t, tt.output.EnumerationTimeout, gotOpts.EnumerationTimeout)
			assert.Equal(t, tt.output.MetricsFile, gotOpts.MetricsFile)
			assert.Equal(t, tt.output.JSON, gotOpts.JSON)
		})
	}
}

func TestNewCmdSync_FlagErrorsAreTyped(t *testing.T) {
	cmd := NewCmdSync(&cmdutil.Factory{}, func(context.Context, *SyncOptions) error { return nil })
	cmd.SetArgs([]string{"--all-packages", "--package-name", "Contoso.Core"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, cmdutil.IsFlagError(err))
}

// --- run tests against in-memory registries ---

type fixture struct {
	opts   *SyncOptions
	tio    *iostreamstest.TestIOStreams
	source *registrytest.FakeClient
	target *registrytest.FakeClient
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tio := iostreamstest.New()
	fx := &fixture{
		tio:    tio,
		source: registrytest.NewFakeClient(),
		target: registrytest.NewFakeClient(),
	}

	cfg := config.Default()
	cfg.PackageSource = sourceURL
	cfg.PackageTarget = targetURL
	cfg.PackageTargetToken = "target-token"
	cfg.ScratchDir = t.TempDir()
	fx.cfg = cfg

	m := metrics.New()
	fx.opts = &SyncOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return fx.cfg, nil },
		RegistryClient: func(e registry.Endpoint) registry.Client {
			if e.URL == sourceURL {
				return fx.source
			}
			return fx.target
		},
		Metrics: func() *metrics.Metrics { return m },
	}
	return fx
}

func TestSyncRun_PushesMissingVersions(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Contoso.Core", "1.0.1", "1.0.2", "1.0.3-alpha1")
	fx.target.AddPackage("Contoso.Core", "1.0.1")
	fx.opts.PackageName = "Contoso.Core"

	require.NoError(t, syncRun(context.Background(), fx.opts))

	assert.Equal(t, []string{"Contoso.Core 1.0.2"}, fx.target.Pushed())
	assert.Equal(t, "PACKAGE       MISSING  PUSHED  SKIPPED  UNAVAILABLE\n"+
		"Contoso.Core  1        1       0        0\n", fx.tio.OutBuf.String())
	assert.Equal(t, "[ok] Pushed 1 version across 1 package\n", fx.tio.ErrBuf.String())
}

func TestSyncRun_IncludePrerelease(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Contoso.Core", "1.0.1", "1.0.2", "1.0.3-alpha1")
	fx.target.AddPackage("Contoso.Core", "1.0.1")
	fx.opts.PackageName = "Contoso.Core"
	fx.cfg.IncludePrerelease = true

	require.NoError(t, syncRun(context.Background(), fx.opts))
	assert.Equal(t, []string{"Contoso.Core 1.0.2", "Contoso.Core 1.0.3-alpha1"}, fx.target.Pushed())
}

func TestSyncRun_DryRunJSON(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Contoso.Core", "1.0.0", "2.0.0")
	fx.opts.PackageName = "Contoso.Core"
	fx.opts.DryRun = true
	fx.opts.JSON = true

	require.NoError(t, syncRun(context.Background(), fx.opts))

	assert.Empty(t, fx.target.Pushed())
	assert.Zero(t, fx.source.CallCount("Download"))

	var got jsonReport
	require.NoError(t, json.Unmarshal([]byte(fx.tio.OutBuf.String()), &got))
	assert.True(t, got.DryRun)
	assert.Equal(t, 2, got.Totals.Missing)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, []string{"1.0.0", "2.0.0"}, got.Packages[0].Missing)
	assert.Empty(t, got.Packages[0].Pushed)
}

func TestSyncRun_AllPackages(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Fabrikam", "1.0.0")
	fx.source.AddPackage("Contoso.Core", "1.0.0")
	fx.opts.AllPackages = true

	require.NoError(t, syncRun(context.Background(), fx.opts))

	assert.Equal(t, []string{"Contoso.Core 1.0.0", "Fabrikam 1.0.0"}, fx.target.Pushed())
	out := fx.tio.OutBuf.String()
	assert.Less(t, strings.Index(out, "Contoso.Core"), strings.Index(out, "Fabrikam"))
}

func TestSyncRun_RequiredSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{
			name:    "missing source",
			mutate:  func(c *config.Config) { c.PackageSource = "" },
			wantMsg: "--package-source is required",
		},
		{
			name:    "missing target",
			mutate:  func(c *config.Config) { c.PackageTarget = "" },
			wantMsg: "--package-target is required",
		},
		{
			name:    "missing target token",
			mutate:  func(c *config.Config) { c.PackageTargetToken = "" },
			wantMsg: "--package-target-token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			fx.opts.PackageName = "Contoso.Core"
			tt.mutate(fx.cfg)

			err := syncRun(context.Background(), fx.opts)
			require.Error(t, err)
			assert.True(t, cmdutil.IsFlagError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Zero(t, fx.source.CallCount("ListVersions"))
		})
	}
}

func TestSyncRun_TokenFromKeychain(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.PackageTargetToken = ""
	fx.source.AddPackage("Contoso.Core", "1.0.0")
	fx.opts.PackageName = "Contoso.Core"

	var endpoints []registry.Endpoint
	clientFor := fx.opts.RegistryClient
	fx.opts.RegistryClient = func(e registry.Endpoint) registry.Client {
		endpoints = append(endpoints, e)
		return clientFor(e)
	}
	fx.opts.TokenLookup = func(u string) (string, error) {
		if u == targetURL {
			return "stored-token", nil
		}
		return "", nil
	}

	require.NoError(t, syncRun(context.Background(), fx.opts))
	require.Len(t, endpoints, 2)
	assert.Equal(t, "", endpoints[0].Token)
	assert.Equal(t, "stored-token", endpoints[1].Token)
}

func TestSyncRun_KeychainFailureIsNotFatalForSource(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Contoso.Core", "1.0.0")
	fx.opts.PackageName = "Contoso.Core"
	fx.opts.TokenLookup = func(string) (string, error) { return "", errors.New("keychain locked") }

	require.NoError(t, syncRun(context.Background(), fx.opts))
	assert.Equal(t, []string{"Contoso.Core 1.0.0"}, fx.target.Pushed())
}

func TestSyncRun_FailureWritesMetrics(t *testing.T) {
	fx := newFixture(t)
	fx.source.AddPackage("Contoso.Core", "1.0.0")
	fx.target.PushFn = func(context.Context, []string, time.Duration) error {
		return &registry.PushError{StatusCode: 500, Message: "Internal Server Error"}
	}
	fx.opts.PackageName = "Contoso.Core"
	fx.cfg.MetricsFile = filepath.Join(t.TempDir(), "metrics", "nugetsync.prom")

	err := syncRun(context.Background(), fx.opts)
	require.Error(t, err)
	assert.Empty(t, fx.tio.OutBuf.String())

	data, readErr := os.ReadFile(fx.cfg.MetricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `nugetsync_failures_total{reason="push"} 1`)
	assert.Contains(t, string(data), "nugetsync_last_success_timestamp_seconds 0\n")
}

func TestSyncRun_ConfigNotFound(t *testing.T) {
	fx := newFixture(t)
	fx.opts.PackageName = "Contoso.Core"
	fx.opts.Config = func() (*config.Config, error) {
		return nil, &config.ConfigNotFoundError{Path: "missing.yaml"}
	}

	err := syncRun(context.Background(), fx.opts)
	require.Error(t, err)
	assert.True(t, cmdutil.IsFlagError(err))
}

func TestSyncRun_InvalidConfig(t *testing.T) {
	fx := newFixture(t)
	fx.opts.PackageName = "Contoso.Core"
	fx.cfg.PackageSource = "ftp://source.example/index.json"

	err := syncRun(context.Background(), fx.opts)
	require.Error(t, err)
	assert.True(t, cmdutil.IsFlagError(err))
	assert.Contains(t, err.Error(), "package_source")
}
