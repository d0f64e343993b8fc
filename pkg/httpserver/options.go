package httpserver

import (
	"log/slog"
	"time"
)

// Option customizes a Server at construction time.
type Option func(*Server)

// WithReadTimeout overrides the request read timeout. Non-positive values
// are ignored.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithWriteTimeout overrides the response write timeout. Non-positive values
// are ignored.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithIdleTimeout overrides the keep-alive idle timeout. Non-positive values
// are ignored.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithShutdownTimeout overrides how long Shutdown waits for in-flight
// requests to drain. Non-positive values are ignored.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets the logger used for lifecycle events. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}
