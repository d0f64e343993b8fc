package file

import "errors"

var (
	// ErrNotFound is returned when no artifact exists at the given path.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidPath is returned for empty paths or traversal attempts.
	ErrInvalidPath = errors.New("invalid artifact path")

	// ErrInvalidConfig is returned when required storage configuration is
	// missing.
	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrFailedToLoadConfig is returned when the AWS configuration cannot be
	// assembled.
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
