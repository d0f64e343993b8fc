package config

import "errors"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed
	// into the struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrConfigNotLoaded is returned when the cached value vanished between
	// parse and read; it indicates a bug, not a user error.
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")

	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
