// Package log provides a structured logging interface for exmax.
//
// The interface is slog-compatible so that the zerolog backed default logger,
// a log/slog handler, or the in-memory TestLogger can be swapped freely.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("mixture.optimizer")
//	logger.Info("EM converged",
//	    log.ComponentsKey, 2,
//	    log.IterationKey, 14,
//	    log.LogLikelihoodKey, -51.9,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// fields are alternating key/value pairs. With returns a child logger that
// adds the given fields to every subsequent record.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it is
	// logged under ErrAttrKey together with its stack trace when available.
	Error(msg string, fields ...any)

	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
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

