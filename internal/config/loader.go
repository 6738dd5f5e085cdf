package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagKeys maps command-line flag names to the configuration keys they set.
var FlagKeys = map[string]string{
	"package-source":       "package_source",
	"package-target":       "package_target",
	"package-source-token": "package_source_token",
	"package-target-token": "package_target_token",
	"include-prerelease":   "include_prerelease",
	"scratch-dir":          "scratch_dir",
	"push-timeout":         "push_timeout",
	"enumeration-timeout":  "enumeration_timeout",
	"metrics-file":         "metrics_file",
}

// Loader resolves a Config from file, environment and flags.
type Loader struct {
	workDir  string
	explicit string
	viper    *viper.Viper
}

// NewLoader creates a loader. explicitPath, when set, must name an existing
// file; otherwise nugetsync.yaml in workDir is read if present.
func NewLoader(workDir, explicitPath string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range Keys {
		// BindEnv only errors without a key.
		_ = v.BindEnv(key)
	}
	setDefaults(v)

	return &Loader{
		workDir:  workDir,
		explicit: explicitPath,
		viper:    v,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("include_prerelease", d.IncludePrerelease)
	v.SetDefault("push_timeout", d.PushTimeout)
	v.SetDefault("retry_budget", d.RetryBudget)
	v.SetDefault("enumeration_timeout", d.EnumerationTimeout)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("http_timeout", d.HTTPTimeout)
	v.SetDefault("logs.file_enabled", d.Logs.FileEnabled)
	v.SetDefault("logs.max_size_mb", d.Logs.MaxSizeMB)
	v.SetDefault("logs.max_age_days", d.Logs.MaxAgeDays)
	v.SetDefault("logs.max_backups", d.Logs.MaxBackups)
}

// BindFlags lets changed flags in fs override file and environment values.
// Flags absent from fs are ignored.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// ConfigPath returns the file Load reads, or "" when there is none.
func (l *Loader) ConfigPath() string {
	if l.explicit != "" {
		return l.explicit
	}
	p := filepath.Join(l.workDir, FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load reads the configuration.
func (l *Loader) Load() (*Config, error) {
	if l.explicit != "" {
		if _, err := os.Stat(l.explicit); errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigNotFoundError{Path: l.explicit}
		}
	}

	if path := l.ConfigPath(); path != "" {
		l.viper.SetConfigFile(path)
		l.viper.SetConfigType("yaml")
		if err := l.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.PackageSource = strings.TrimSpace(cfg.PackageSource)
	cfg.PackageTarget = strings.TrimSpace(cfg.PackageTarget)
	return &cfg, nil
}

// ConfigNotFoundError is returned when an explicit config file doesn't exist.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// IsConfigNotFound returns true if the error is a ConfigNotFoundError.
func IsConfigNotFound(err error) bool {
	var e *ConfigNotFoundError
	return errors.As(err, &e)
}
