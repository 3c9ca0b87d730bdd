// Package logging wraps go.uber.org/zap in the small leveled-logger interface the rest of this
// module depends on, so that call sites never import zap directly. Grounded in go.viam.com/rdk's
// logging package conventions (a thin SugaredLogger facade plus named sub-loggers).
package logging

import (
	"go.uber.org/zap"
)

// Logger is the capability set every package in this module logs through.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	// Named returns a child logger that prefixes every message with name, for per-component
	// diagnostics (one per Scene, one per RobotModel, etc).
	Named(name string) Logger

	// Sync flushes any buffered log entries; callers should defer it after obtaining a top-level
	// logger from NewLogger.
	Sync() error
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger builds a production Logger: JSON output, info level and above.
func NewLogger(name string) (Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: base.Sugar().Named(name)}, nil
}

// NewTestLogger builds a development-mode Logger suited to test output: console-formatted, debug
// level and above, grounded in the corpus's go.viam.com/test usage for _test.go files.
func NewTestLogger(name string) Logger {
	base, err := zap.NewDevelopment()
	if err != nil {
		// zap.NewDevelopment only fails on a broken encoder config, which never happens with
		// defaults; fall back to a no-op core rather than panic in test setup.
		base = zap.NewNop()
	}
	return &zapLogger{sugar: base.Sugar().Named(name)}
}

func (l *zapLogger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{sugar: l.sugar.Named(name)}
}

func (l *zapLogger) Sync() error { return l.sugar.Sync() }
