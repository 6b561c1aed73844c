// Package log defines the logging interface used across licensemap.
// Components accept a Logger instead of reaching for a global so that
// tests can substitute a recording sink.
package log

import (
	"context"
	"fmt"
	"strings"
)

// Logger is a structured, leveled logger.
type Logger interface {
	Log(ctx context.Context, level Level, msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
	Sync(ctx context.Context) error
}

// Level is the severity of a log entry. A logger configured at a level
// emits that level and every level with a lower numeric value.
type Level uint8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the lower-case level name.
func (level Level) String() string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(lvl string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "quiet":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("not a valid level: %q", lvl)
}

// Field is a key/value attribute attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Any creates a field with an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates the conventional error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Warn logs msg at LevelWarn.
func Warn(ctx context.Context, l Logger, msg string, fields ...Field) {
	l.Log(ctx, LevelWarn, msg, fields...)
}

// Info logs msg at LevelInfo.
func Info(ctx context.Context, l Logger, msg string, fields ...Field) {
	l.Log(ctx, LevelInfo, msg, fields...)
}

// Debug logs msg at LevelDebug.
func Debug(ctx context.Context, l Logger, msg string, fields ...Field) {
	l.Log(ctx, LevelDebug, msg, fields...)
}

// Error logs msg at LevelError.
func Error(ctx context.Context, l Logger, msg string, fields ...Field) {
	l.Log(ctx, LevelError, msg, fields...)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNop()
	}
	return l
}
