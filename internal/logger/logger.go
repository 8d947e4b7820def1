package logger

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	// File enables a rotated log file next to stdout when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if opts.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level),
	}
	if opts.File != "" {
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 64),
			MaxBackups: orDefault(opts.MaxBackups, 7),
			MaxAge:     orDefault(opts.MaxAgeDays, 7),
			Compress:   true,
		}), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// WithContext returns l annotated with the trace and span ids of ctx, if any.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
