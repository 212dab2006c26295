package router

import (
	"log/slog"
	"time"
)

// Option configures a Router during creation.
type Option func(*mux)

// WithLogger sets a custom logger for the router and its dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(m *mux) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTimeout sets a per-request dispatch deadline. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(m *mux) {
		m.timeout = timeout
	}
}

// WithRegistry makes the router serve an existing registry.
func WithRegistry(r *Registry) Option {
	return func(m *mux) {
		if r != nil {
			m.registry = r
		}
	}
}
