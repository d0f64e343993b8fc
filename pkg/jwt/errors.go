package jwt

import "errors"

var (
	ErrMissingSigningKey       = errors.New("signing key is required")
	ErrMissingClaims           = errors.New("claims are required")
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidSignature        = errors.New("invalid token signature")
	ErrExpiredToken            = errors.New("token has expired")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
)
