package handoff

import "errors"

var (
	ErrTokenNotFound    = errors.New("upload token not found")
	ErrTokenAlreadyUsed = errors.New("upload token already used")
	ErrEmptyArtifact    = errors.New("artifact reference cannot be empty")
)
