package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Options configures New.
type Options struct {
	// Service is attached to every record when set.
	Service string
	Level   slog.Level
	// Text selects logfmt-style output instead of JSON.
	Text bool
}

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	base *slog.Logger
}

func New(w io.Writer, opts Options) *SlogLogger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler = slog.NewJSONHandler(w, handlerOpts)
	if opts.Text {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	base := slog.New(handler)
	if opts.Service != "" {
		base = base.With(slog.String("service", opts.Service))
	}
	return &SlogLogger{base: base}
}

func Discard() *SlogLogger {
	return &SlogLogger{base: slog.New(slog.DiscardHandler)}
}

// ParseLevel maps debug/info/warn/error to a level; anything else is info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	s.base.Log(ctx, level, msg, args...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{base: s.base.With(args...)}
}
