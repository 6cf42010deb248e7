// Package zap adapts go.uber.org/zap to the logger.Logger interface.
package zap

import (
	"chordring/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Adapter wraps a *zap.Logger to satisfy logger.Logger.
type Adapter struct {
	L *zap.Logger
}

func New(l *zap.Logger) *Adapter {
	return &Adapter{L: l.WithOptions(zap.AddCallerSkip(1))}
}

func (a *Adapter) Named(name string) logger.Logger {
	return &Adapter{L: a.L.Named(name)}
}

func (a *Adapter) With(fields ...logger.Field) logger.Logger {
	return &Adapter{L: a.L.With(toZap(fields)...)}
}

func (a *Adapter) Debug(msg string, fields ...logger.Field) { a.L.Debug(msg, toZap(fields)...) }
func (a *Adapter) Info(msg string, fields ...logger.Field)  { a.L.Info(msg, toZap(fields)...) }
func (a *Adapter) Warn(msg string, fields ...logger.Field)  { a.L.Warn(msg, toZap(fields)...) }
func (a *Adapter) Error(msg string, fields ...logger.Field) { a.L.Error(msg, toZap(fields)...) }

func toZap(fields []logger.Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Val))
	}
	return out
}

var _ logger.Logger = (*Adapter)(nil)
