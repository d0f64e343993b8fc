// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts and a health-check handler.
//
// Construction goes through New or NewFromConfig with functional options.
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains the server within the configured shutdown deadline.
// Listen errors carry ErrStart and shutdown errors ErrShutdown so callers
// can distinguish them with errors.Is.
package httpserver
