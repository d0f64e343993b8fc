package account

import "errors"

var (
	// ErrInvalidCredentials is the single error returned for any verification
	// failure: unknown email, wrong password, corrupt hash. Keeping them
	// indistinguishable prevents user enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailAlreadyExists is returned when registering an email that is
	// already taken.
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrInvalidEmail is returned when the email fails basic shape validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when the password does not meet the minimum
	// length requirement.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")
)
