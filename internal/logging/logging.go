// Package logging wraps charmbracelet/log for the server. All output goes
// to stderr or a debug file, never stdout: the MCP stdio transport owns
// stdout, and a single stray log line there corrupts the JSON-RPC stream.
package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the application logger handed to every component that needs
// to report degraded loads or audit failures.
type Logger struct {
	logger *log.Logger
}

// New creates a Logger at the given level ("debug", "info", "warn",
// "error"). With ERPMCP_DEBUG set, output additionally goes to
// erpmcp.debug.log in the current directory at debug level.
func New(level string) *Logger {
	if os.Getenv("ERPMCP_DEBUG") != "" {
		cwd, err := os.Getwd()
		if err == nil {
			path := filepath.Join(cwd, "erpmcp.debug.log")
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err == nil {
				l := log.NewWithOptions(f, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.Kitchen,
					Prefix:          "erpmcp",
				})
				l.SetLevel(log.DebugLevel)
				return &Logger{logger: l}
			}
		}
	}

	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "erpmcp",
	})
	l.SetLevel(parseLevel(level))
	return &Logger{logger: l}
}

// NewTestLogger returns a Logger that writes to the given buffer at debug
// level, for asserting on log output in tests.
func NewTestLogger(buf *bytes.Buffer) *Logger {
	l := log.New(buf)
	l.SetLevel(log.DebugLevel)
	return &Logger{logger: l}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	l := log.New(io.Discard)
	return &Logger{logger: l}
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.logger.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.logger.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.logger.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.logger.Error(msg, keyvals...) }

// With returns a child logger carrying the given key/value context.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{logger: l.logger.With(keyvals...)}
}
