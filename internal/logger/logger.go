// Package logger builds the zerolog loggers used by nugetsync.
//
// There is no package-level logger: the command factory creates one per
// process and hands it to the components that log, which accept it through
// the iostreams.Logger interface.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotated log file inside the logs directory.
const LogFileName = "nugetsync.log"

// LoggingConfig holds configuration for file-based logging.
type LoggingConfig struct {
	FileEnabled *bool
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to false if not explicitly set: sync runs are usually CI jobs
// whose console output is already captured.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c == nil || c.FileEnabled == nil {
		return false
	}
	return *c.FileEnabled
}

// GetMaxSizeMB returns the max size in MB, defaulting to 50 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 50
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// Options configures New.
type Options struct {
	// Debug lowers the level to debug.
	Debug bool

	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer

	// NoColor disables ANSI colors on the console writer.
	NoColor bool

	// LogsDir is where the rotated JSON log file is written when File enables it.
	LogsDir string
	File    *LoggingConfig
}

// Logger is a zerolog.Logger that owns its optional log file.
// *Logger satisfies iostreams.Logger.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// New creates a logger writing to the console and, when enabled, to a
// rotated JSON file in opts.LogsDir.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}

	if opts.LogsDir == "" || !opts.File.IsFileEnabled() {
		return &Logger{
			Logger: zerolog.New(consoleWriter).Level(level).With().Timestamp().Logger(),
		}, nil
	}

	if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(opts.LogsDir, LogFileName),
		MaxSize:    opts.File.GetMaxSizeMB(),  // MB
		MaxAge:     opts.File.GetMaxAgeDays(), // days
		MaxBackups: opts.File.GetMaxBackups(),
		LocalTime:  true,
	}

	// Console gets the pretty format, the file gets JSON.
	multi := zerolog.MultiLevelWriter(consoleWriter, fileWriter)

	return &Logger{
		Logger: zerolog.New(multi).Level(level).With().Timestamp().Logger(),
		file:   fileWriter,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// FilePath returns the path of the log file, or "" when file logging is off.
func (l *Logger) FilePath() string {
	if l.file != nil {
		return l.file.Filename
	}
	return ""
}

// Close flushes and closes the log file if there is one. Safe to call twice.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
