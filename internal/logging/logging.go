// Package logging builds the structured logger used across the queue
// service, wrapping log/slog with github.com/lmittmann/tint for readable
// local output while supporting JSON for production (LOG_FORMAT=json).
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"

	domainservice "github.com/cubr/queue/internal/domain/service"
)

type ctxKey struct{}

// CorrelationKey is the context key WithContext looks for to enrich a
// logger with a per-request/event correlation id.
var CorrelationKey = ctxKey{}

// ContextWithCorrelationID returns a context carrying id for later
// retrieval by Logger.WithContext.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}

// SlogLogger adapts *slog.Logger to domain/service.Logger.
type SlogLogger struct {
	l *slog.Logger
}

// New builds a SlogLogger from level and format strings (as read from
// LOG_LEVEL / LOG_FORMAT). format "json" selects slog.JSONHandler;
// anything else selects a tint.Handler for colorized local output.
func New(level, format string) *SlogLogger {
	lvl := parseLevel(level)

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
		})
	}

	return &SlogLogger{l: slog.New(handler)}
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *SlogLogger) With(args ...any) domainservice.Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

func (s *SlogLogger) WithContext(ctx context.Context) domainservice.Logger {
	if id, ok := ctx.Value(CorrelationKey).(string); ok && id != "" {
		return &SlogLogger{l: s.l.With("correlation_id", id)}
	}
	return s
}

var _ domainservice.Logger = (*SlogLogger)(nil)
