package service

import "errors"

var (
	// ErrRevoked reports a refresh token that has been revoked or whose
	// record is gone. Unknown tokens fall in the same bucket on purpose.
	ErrRevoked = errors.New("token_revoked")

	// ErrPrincipalNotFound reports a refresh for a subject the directory no
	// longer knows, typically a deleted account holding a live token.
	ErrPrincipalNotFound = errors.New("principal_not_found")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrEmailTaken reports a registration against an existing email.
	ErrEmailTaken = errors.New("email_taken")
)
