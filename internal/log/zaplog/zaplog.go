// Package zaplog adapts go.uber.org/zap to the log.Logger interface.
package zaplog

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/felixgeelhaar/licensemap/internal/log"
)

// Logger implements log.Logger on top of zap.
type Logger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

var _ logpkg.Logger = (*Logger)(nil)

// Option configures a Logger.
type Option func(*options)

type options struct {
	output io.Writer
	json   bool
}

// WithOutput sets the destination. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithJSON switches to the JSON encoder.
func WithJSON(enabled bool) Option {
	return func(o *options) {
		o.json = enabled
	}
}

// New creates a zap-backed logger emitting entries at level and above.
func New(level logpkg.Level, opts ...Option) *Logger {
	o := &options{output: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if level == logpkg.LevelDebug {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}

	var enc zapcore.Encoder
	if o.json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	atomic := zap.NewAtomicLevelAt(levelToZap(level))
	core := zapcore.NewCore(enc, zapcore.AddSync(o.output), atomic)

	return &Logger{logger: zap.New(core), level: atomic}
}

func (l *Logger) must() *zap.Logger {
	if l == nil || l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Log dispatches to the matching zap level.
func (l *Logger) Log(_ context.Context, level logpkg.Level, msg string, fields ...logpkg.Field) {
	zf := fieldsToZap(fields)
	switch level {
	case logpkg.LevelDebug:
		l.must().Debug(msg, zf...)
	case logpkg.LevelWarn:
		l.must().Warn(msg, zf...)
	case logpkg.LevelError:
		l.must().Error(msg, zf...)
	default:
		l.must().Info(msg, zf...)
	}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...logpkg.Field) logpkg.Logger {
	return &Logger{logger: l.must().With(fieldsToZap(fields)...), level: l.level}
}

// Enabled reports whether entries at level are emitted.
func (l *Logger) Enabled(level logpkg.Level) bool {
	return l.must().Core().Enabled(levelToZap(level))
}

// Sync flushes buffered entries.
func (l *Logger) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.must().Sync()
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level logpkg.Level) {
	l.level.SetLevel(levelToZap(level))
}

func levelToZap(level logpkg.Level) zapcore.Level {
	switch level {
	case logpkg.LevelDebug:
		return zapcore.DebugLevel
	case logpkg.LevelInfo:
		return zapcore.InfoLevel
	case logpkg.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func fieldsToZap(fields []logpkg.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
