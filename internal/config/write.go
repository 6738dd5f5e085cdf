package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteStarter when the file is already there
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

const starterHeader = `# nugetsync configuration.
# Every key can be overridden with a NUGETSYNC_<KEY> environment variable
# (logs.dir -> NUGETSYNC_LOGS_DIR) or the matching command-line flag.
# Prefer the environment or "nugetsync auth login" for tokens.
`

// starterFile mirrors Config with durations spelled as strings.
type starterFile struct {
	PackageSource      string     `yaml:"package_source"`
	PackageTarget      string     `yaml:"package_target"`
	IncludePrerelease  bool       `yaml:"include_prerelease"`
	ScratchDir         string     `yaml:"scratch_dir"`
	PushTimeout        string     `yaml:"push_timeout"`
	RetryBudget        string     `yaml:"retry_budget"`
	EnumerationTimeout string     `yaml:"enumeration_timeout"`
	PageSize           int        `yaml:"page_size"`
	HTTPTimeout        string     `yaml:"http_timeout"`
	MetricsFile        string     `yaml:"metrics_file"`
	Logs               LogsConfig `yaml:"logs"`
}

// StarterYAML renders cfg (without tokens) as a commented nugetsync.yaml.
func StarterYAML(cfg *Config) ([]byte, error) {
	doc := starterFile{
		PackageSource:      cfg.PackageSource,
		PackageTarget:      cfg.PackageTarget,
		IncludePrerelease:  cfg.IncludePrerelease,
		ScratchDir:         cfg.ScratchDir,
		PushTimeout:        cfg.PushTimeout.String(),
		RetryBudget:        cfg.RetryBudget.String(),
		EnumerationTimeout: cfg.EnumerationTimeout.String(),
		PageSize:           cfg.PageSize,
		HTTPTimeout:        cfg.HTTPTimeout.String(),
		MetricsFile:        cfg.MetricsFile,
		Logs:               cfg.Logs,
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return append([]byte(starterHeader), body...), nil
}

// WriteStarter writes a starter config to path. An existing file is only
// replaced when overwrite is true.
func WriteStarter(path string, cfg *Config, overwrite bool) error {
	content, err := StarterYAML(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory for %s: %w", path, err)
	}

	return withFileLock(path, func() error {
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%w: %s", ErrConfigExists, path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to stat config %s: %w", path, err)
			}
		}
		return atomicWriteFile(path, content, 0o600)
	})
}

// atomicWriteFile writes data to a temp file in the target directory, syncs
// it, then renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".nugetsync-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("setting permissions on temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}

// withFileLock holds an advisory lock on path+".lock" while fn runs.
func withFileLock(path string, fn func() error) error {
	fl := flock.New(path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring file lock for %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring file lock for %s", path)
	}
	defer func() {
		_ = fl.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	return fn()
}
