// Package logger is the slog factory for the service: JSON or text output,
// level and format picked from the environment, and a handler decorator that
// injects request-scoped attributes (request id, account id) from context on
// every log call.
package logger
