// Package log provides the structured logging facade used across modeltune.
//
// The package defines a minimal, slog-compatible Logger interface so the
// backing implementation can be swapped without touching call sites, and a
// zerolog-backed default provider (see provider.go). Attribute keys for
// tuning runs are defined in attributes.go.
//
// Example:
//
//	logger := log.GetLoggerWithName("tune").With(
//	    log.RunIDKey, runID,
//	    log.FoldsKey, 5,
//	)
//	logger.Info("sweep started", log.GridSizeKey, len(grid))
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with log/slog
// conventions: a message followed by alternating key/value fields.
//
// With returns a derived logger carrying pre-populated fields, which is how
// run- and fold-scoped context is attached once instead of per call.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the run, such as a
	// hyperparameter config excluded from selection.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If a field value is an error carrying a
	// stack trace, implementations may extract and attach it.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated on
	// every subsequent message.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive field construction for suppressed levels.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level. Values match slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists so tests can
// inject a capturing implementation via SetProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created by this provider.
	SetLevel(level Level)
}
