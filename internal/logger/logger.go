// Package logger wraps zap behind a small interface so packages never
// import zap directly.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that always carries the given fields.
	With(fields ...Field) Logger

	Sync() error
}

// Field is a structured log field.
type Field = zap.Field

// Options configures New
type Options struct {
	Level  string    // debug | info | warn | error, info when unknown
	Pretty bool      // colored console lines instead of JSON
	Output io.Writer // stderr when nil
}

type zapLogger struct {
	base *zap.Logger
}

// New builds a zap logger writing to opts.Output.
func New(opts Options) Logger {
	level, _ := ParseLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if opts.Pretty {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	return &zapLogger{base: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() Logger {
	return &zapLogger{base: zap.NewNop()}
}

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to zap
// levels. Unknown input yields info and false.
func ParseLevel(lvl string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger { return &zapLogger{base: l.base.With(fields...)} }

func (l *zapLogger) Sync() error { return l.base.Sync() }

// Field constructors
func String(key, val string) Field                 { return zap.String(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Error(err error) Field                        { return zap.Error(err) }
