// Package zaplog adapts go.uber.org/zap to the observability.Logger
// contract.
package zaplog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wudi/docscan/observability"
)

// New builds a console logger at the given level ("debug", "info",
// "warn", "error").
func New(level string) (observability.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "", "info":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("zaplog: unknown level %q", level)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), lvl)
	return &logger{z: zap.New(core)}, nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) observability.Logger { return &logger{z: z} }

type logger struct {
	z *zap.Logger
}

func (l *logger) Debug(msg string, fields ...observability.Field) { l.z.Debug(msg, convert(fields)...) }
func (l *logger) Info(msg string, fields ...observability.Field)  { l.z.Info(msg, convert(fields)...) }
func (l *logger) Warn(msg string, fields ...observability.Field)  { l.z.Warn(msg, convert(fields)...) }
func (l *logger) Error(msg string, fields ...observability.Field) { l.z.Error(msg, convert(fields)...) }

func (l *logger) With(fields ...observability.Field) observability.Logger {
	return &logger{z: l.z.With(convert(fields)...)}
}

func convert(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value().(error); ok {
			out = append(out, zap.NamedError(f.Key(), err))
			continue
		}
		out = append(out, zap.Any(f.Key(), f.Value()))
	}
	return out
}
