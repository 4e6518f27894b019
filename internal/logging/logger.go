// Package logging decouples the client from any concrete logging backend.
package logging

import "go.uber.org/zap"

// Field is a structured logging key/value pair.
type Field = zap.Field

// String, Int, Err, etc. are re-exported zap field constructors so callers
// never need to import zap directly to build a Field.
var (
	String = zap.String
	Int    = zap.Int
	Err    = zap.Error
	Bool   = zap.Bool
	Any    = zap.Any
)

// Logger is the logging interface used throughout this module. It
// decouples callers from a concrete backend (zap/zerolog/stdlib) and lets
// a consumer pass Noop() when it wants silence.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a Logger that always includes the given fields.
	With(fields ...Field) Logger
}

type zapLogger struct {
	l *zap.Logger
}

// NewZap wraps an existing *zap.Logger.
func NewZap(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewProduction builds a Logger backed by zap's production encoder config.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, fields...) }

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}
func (n noopLogger) With(...Field) Logger { return n }

// Noop returns a Logger that discards everything, the default when a
// caller does not want logging.
func Noop() Logger {
	return noopLogger{}
}
