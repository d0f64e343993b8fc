package redis

import "errors"

var (
	ErrInvalidURL        = errors.New("invalid redis connection URL")
	ErrNotReady          = errors.New("redis did not become ready in time")
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
