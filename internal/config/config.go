// Package config loads nugetsync settings from an optional nugetsync.yaml,
// NUGETSYNC_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schmitthub/nugetsync/internal/logger"
)

const (
	// FileName is the configuration file looked up in the working directory.
	FileName = "nugetsync.yaml"

	// EnvPrefix prefixes every environment override (NUGETSYNC_PACKAGE_SOURCE).
	EnvPrefix = "NUGETSYNC"
)

// Config is the fully resolved configuration of one run.
type Config struct {
	PackageSource      string `mapstructure:"package_source" yaml:"package_source"`
	PackageTarget      string `mapstructure:"package_target" yaml:"package_target"`
	PackageSourceToken string `mapstructure:"package_source_token" yaml:"package_source_token,omitempty"`
	PackageTargetToken string `mapstructure:"package_target_token" yaml:"package_target_token,omitempty"`

	IncludePrerelease bool   `mapstructure:"include_prerelease" yaml:"include_prerelease"`
	ScratchDir        string `mapstructure:"scratch_dir" yaml:"scratch_dir"`

	PushTimeout        time.Duration `mapstructure:"push_timeout" yaml:"push_timeout"`
	RetryBudget        time.Duration `mapstructure:"retry_budget" yaml:"retry_budget"`
	EnumerationTimeout time.Duration `mapstructure:"enumeration_timeout" yaml:"enumeration_timeout"`
	PageSize           int           `mapstructure:"page_size" yaml:"page_size"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`

	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	Logs LogsConfig `mapstructure:"logs" yaml:"logs"`
}

// LogsConfig controls the rotated log file.
type LogsConfig struct {
	FileEnabled bool   `mapstructure:"file_enabled" yaml:"file_enabled"`
	Dir         string `mapstructure:"dir" yaml:"dir"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays  int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// LoggingConfig converts to the logger package's file settings.
func (l LogsConfig) LoggingConfig() *logger.LoggingConfig {
	enabled := l.FileEnabled
	return &logger.LoggingConfig{
		FileEnabled: &enabled,
		MaxSizeMB:   l.MaxSizeMB,
		MaxAgeDays:  l.MaxAgeDays,
		MaxBackups:  l.MaxBackups,
	}
}

// ResolveDir returns Dir, or nugetsync/logs under the user cache directory.
func (l LogsConfig) ResolveDir() (string, error) {
	if l.Dir != "" {
		return l.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache directory: %w", err)
	}
	return filepath.Join(base, "nugetsync", "logs"), nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		PushTimeout:        5 * time.Minute,
		RetryBudget:        5 * time.Minute,
		EnumerationTimeout: 2 * time.Minute,
		PageSize:           100,
		HTTPTimeout:        100 * time.Second,
		Logs: LogsConfig{
			MaxSizeMB:  50,
			MaxAgeDays: 7,
			MaxBackups: 3,
		},
	}
}

// Keys lists every configuration key in dotted form.
var Keys = []string{
	"package_source",
	"package_target",
	"package_source_token",
	"package_target_token",
	"include_prerelease",
	"scratch_dir",
	"push_timeout",
	"retry_budget",
	"enumeration_timeout",
	"page_size",
	"http_timeout",
	"metrics_file",
	"logs.file_enabled",
	"logs.dir",
	"logs.max_size_mb",
	"logs.max_age_days",
	"logs.max_backups",
}
