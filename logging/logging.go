package logging

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/zap"

	"go.dw1.io/x/exp/rendersec"
)

type zapLogger struct {
	l *zap.Logger
}

// Zap reports sandbox events to l at warn level.
func Zap(l *zap.Logger) rendersec.Logger {
	if l == nil {
		l = zap.NewNop()
	}

	return zapLogger{l: l.With(zap.String("component", "rendersec"))}
}

func (z zapLogger) Warn(msg string, err error) {
	fields := []zap.Field{zap.Error(err)}

	var denied *rendersec.DeniedError
	if errors.As(err, &denied) {
		fields = append(fields,
			zap.String("category", denied.Category.String()),
			zap.String("detail", denied.Detail),
		)
	}

	z.l.Warn(msg, fields...)
}

type slogLogger struct {
	l *slog.Logger
}

// Slog reports sandbox events to l at warn level.
func Slog(l *slog.Logger) rendersec.Logger {
	if l == nil {
		l = slog.Default()
	}

	return slogLogger{l: l.With("component", "rendersec")}
}

func (s slogLogger) Warn(msg string, err error) {
	attrs := []slog.Attr{slog.String("error", err.Error())}

	var denied *rendersec.DeniedError
	if errors.As(err, &denied) {
		attrs = append(attrs,
			slog.String("category", denied.Category.String()),
			slog.String("detail", denied.Detail),
		)
	}

	s.l.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

type tee []rendersec.Logger

// Tee reports every event to each of loggers in order. Nil loggers are
// skipped.
func Tee(loggers ...rendersec.Logger) rendersec.Logger {
	t := make(tee, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			t = append(t, l)
		}
	}

	return t
}

func (t tee) Warn(msg string, err error) {
	for _, l := range t {
		l.Warn(msg, err)
	}
}
