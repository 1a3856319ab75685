// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides structured key-value logging for glasswing.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Format is "text" or "json".
	Format string
	// Output defaults to stderr. Flow records go to stdout, so logs must not.
	Output io.Writer
	// Syslog optionally forwards a copy of every line to a syslog server.
	Syslog SyslogConfig
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
	}
}

// Logger is a thin wrapper over slog with the key-value call style used
// throughout the codebase.
type Logger struct {
	s *slog.Logger
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Syslog.Enabled {
		if w, err := NewSyslogWriter(cfg.Syslog); err == nil {
			out = io.MultiWriter(out, w)
		}
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return &Logger{s: slog.New(h)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger that includes the given key-value attributes on
// every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{s: l.s.With(args...)}
}

// Debug logs at debug level with alternating key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.s.Debug(msg, args...)
}

// Info logs at info level with alternating key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.s.Info(msg, args...)
}

// Warn logs at warn level with alternating key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.s.Warn(msg, args...)
}

// Error logs at error level with alternating key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.s.Error(msg, args...)
}
