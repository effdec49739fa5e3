package slogutil

import (
	"fmt"
	"io"
	"log/slog"

	"cipherkit/internal/config"
	"cipherkit/internal/paths"
)

// LoggerFactory builds loggers for the CLI and the HTTP server.
// Level precedence: CLI flags > config > info.
type LoggerFactory struct {
	config   *config.Config
	stderr   io.Writer
	cliLevel slog.Level
	cliSet   bool
	closers  []io.Closer
}

// NewLoggerFactory creates a factory writing console output to stderr.
func NewLoggerFactory(cfg *config.Config, stderr io.Writer) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{config: cfg, stderr: stderr}
}

// SetCLILevel records a level chosen with -v/-q, overriding the config.
func (f *LoggerFactory) SetCLILevel(level slog.Level) {
	f.cliLevel = level
	f.cliSet = true
}

// CLILogger logs to stderr only.
func (f *LoggerFactory) CLILogger() *slog.Logger {
	return slog.New(NewHandler(f.stderr, f.config.Logging.Format, f.effectiveLevel()))
}

// ServerLogger logs to stderr and to the rotating log file (logging.file,
// or <home>/logs/cipherkit.log).
func (f *LoggerFactory) ServerLogger() (*slog.Logger, error) {
	logPath, err := f.logPath()
	if err != nil {
		return nil, err
	}

	maxSize, err := ParseSize(f.config.Logging.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("logging.max_size: %w", err)
	}

	rf, err := OpenRotatingFile(logPath, maxSize, f.config.Logging.MaxBackups)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	f.closers = append(f.closers, rf)

	level := f.effectiveLevel()
	return slog.New(NewTeeHandler(
		NewHandler(f.stderr, f.config.Logging.Format, level),
		NewHandler(rf, f.config.Logging.Format, level),
	)), nil
}

func (f *LoggerFactory) logPath() (string, error) {
	if f.config.Logging.File != "" {
		return paths.ExpandHome(f.config.Logging.File)
	}
	return paths.GetLogPath()
}

func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliSet {
		return f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
