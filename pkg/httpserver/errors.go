package httpserver

import "errors"

var (
	// ErrStart wraps failures to bind or serve.
	ErrStart = errors.New("failed to start http server")
	// ErrShutdown wraps failures to drain within the shutdown deadline.
	ErrShutdown = errors.New("failed to shut down http server")
)
