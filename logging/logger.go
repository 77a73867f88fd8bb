// Package logging provides the structured logger used for the tracker's
// ambient diagnostics (configuration loading, log replay, per-frame
// bookkeeping). It is distinct from Tracker.SetLogWarningCallback, which is
// a narrow string-keyed warning sink for per-frame tracking failures — this
// package is the surrounding operational logging a real service built
// around the tracker would also want, backed by go.uber.org/zap.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is a structured, leveled logger.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Named(name string) Logger
	Sync() error
}

type sugaredLogger struct {
	sugar *zap.SugaredLogger
}

// config mirrors a hand-built console encoder (colored levels, ISO8601
// timestamps, stacktraces disabled at every level).
func config() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return cfg
}

// NewLogger returns a production logger named name, writing Info+ to stderr.
func NewLogger(name string) Logger {
	z, err := config().Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return &sugaredLogger{sugar: z.Named(name).Sugar()}
}

// NewBlankLogger returns a logger that discards everything. Used as the
// zero-value default when a Tracker is constructed without an explicit
// logger.
func NewBlankLogger(name string) Logger {
	return &sugaredLogger{sugar: zap.NewNop().Sugar()}
}

// NewTestLogger returns a logger that writes through tb.Log, so tracker
// diagnostics surface inline with the failing test.
func NewTestLogger(tb testing.TB) Logger {
	return &sugaredLogger{sugar: zaptest.NewLogger(tb).Sugar()}
}

func (l *sugaredLogger) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *sugaredLogger) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *sugaredLogger) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *sugaredLogger) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

func (l *sugaredLogger) Named(name string) Logger {
	return &sugaredLogger{sugar: l.sugar.Named(name)}
}

func (l *sugaredLogger) Sync() error { return l.sugar.Sync() }
