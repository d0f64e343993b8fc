// Package account provides credential registration and verification on top of
// the credits account store.
//
// The scope is deliberately narrow: Register creates an account with a bcrypt
// password hash and seeds it with the free tier's credit grant; Verify checks
// an email/password pair. Verification failures collapse into a single
// ErrInvalidCredentials so responses never reveal whether an email is
// registered.
//
// Session management, password reset and email verification live outside this
// package.
package account
