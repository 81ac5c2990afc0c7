// Package logger writes CLI diagnostics to the file named by log.file so they
// never interleave with command output.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/charmbracelet/log"
)

// discards everything until Init runs
var logger = log.New(io.Discard)

// Init opens the log file and sets the level from log.level. Verbose wins
// over the configured level. When the file cannot be opened, stderr is used.
func Init(verbose bool) {
	level := parseLevel(config.GetString("log.level"))
	if verbose {
		level = log.DebugLevel
	}

	logger = log.NewWithOptions(openLogFile(config.GetString("log.file")), log.Options{
		ReportTimestamp: true,
		Prefix:          "memberguard-cli",
		Level:           level,
	})
}

func openLogFile(path string) io.Writer {
	if path == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return os.Stderr
	}
	return f
}

// parseLevel accepts charmbracelet level names plus "warning"; anything else is info
func parseLevel(s string) log.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func Debug(msg string, keyvals ...interface{}) { logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{}) { logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{}) { logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { logger.Error(msg, keyvals...) }

// GetLogger exposes the underlying logger for callers that need fields or prefixes
func GetLogger() *log.Logger {
	return logger
}
