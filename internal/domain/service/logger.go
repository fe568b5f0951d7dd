// Package service holds small cross-cutting interfaces the domain and
// application layers depend on without knowing their concrete
// implementations.
package service

import "context"

// Logger abstracts structured logging so domain/application code never
// imports log/slog directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a new logger with the given key-value pairs attached.
	With(args ...any) Logger

	// WithContext returns a new logger enriched from context (e.g. a
	// request/event correlation id), if present.
	WithContext(ctx context.Context) Logger
}
