// Package logger provides a small structured-logging wrapper used throughout
// the application. It is a thin adapter over zap: a level filter, key/value
// pairs, and a caller-depth override for wrapper functions that want the log
// line attributed to their own caller rather than themselves.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggerInterface is the contract every component depends on. It is satisfied
// by *Logger and by test doubles.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// Logger is a zap.SugaredLogger wrapped behind LoggerInterface, with a fixed
// name/extra field set stamped on every line.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON lines to w, filtering below minLevel.
// name identifies the service (e.g. the app name) and extra is a fixed set
// of fields (deployment, region, ...) stamped on every line; it may be nil.
func New(w io.Writer, minLevel Level, name string, extra map[string]any) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encCfg.MessageKey = "msg"
	encCfg.CallerKey = "caller"
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), minLevel.zapLevel())
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if name != "" {
		zl = zl.Named(name)
	}

	sugar := zl.Sugar()
	if len(extra) > 0 {
		fields := make([]any, 0, len(extra)*2)
		for k, v := range extra {
			fields = append(fields, k, v)
		}
		sugar = sugar.With(fields...)
	}
	return &Logger{sugar: sugar}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, sweeten(args)...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, sweeten(args)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, sweeten(args)...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, sweeten(args)...)
}

// Debugc/Infoc/Warnc/Errorc let a wrapper function (e.g. a retry helper)
// attribute the log line to its own caller by passing a caller skip.
func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.sugar.WithOptions(zap.AddCallerSkip(caller)).Debugw(msg, sweeten(args)...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.sugar.WithOptions(zap.AddCallerSkip(caller)).Infow(msg, sweeten(args)...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.sugar.WithOptions(zap.AddCallerSkip(caller)).Warnw(msg, sweeten(args)...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.sugar.WithOptions(zap.AddCallerSkip(caller)).Errorw(msg, sweeten(args)...)
}

// sweeten pairs off a dangling trailing key with a placeholder value so a
// mismatched call site still produces a field instead of zap silently
// dropping the odd key.
func sweeten(args []any) []any {
	if len(args)%2 == 1 {
		return append(args, "<missing>")
	}
	return args
}
