package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. The access token is deliberately short-lived;
// there is no server-side revocation path for it, so its lifetime bounds the
// exposure window of a leaked token.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 1 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Profile is the identity snapshot embedded in access tokens. It is a copy
// of the principal at issue time, not a live view; refresh re-reads the
// directory and mints a fresh snapshot.
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AccessClaims are the claims carried by access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims

	// User is the embedded principal snapshot.
	User Profile `json:"user"`
}

// RefreshClaims are the claims carried by refresh tokens. They intentionally
// hold no profile data beyond the subject, to minimize exposure if leaked.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds access-token claims for a principal with the
// standard registered set filled in.
func NewAccessClaims(profile Profile, issuer, audience string, ttl time.Duration, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: registered(strconv.FormatInt(profile.ID, 10), issuer, audience, ttl, now),
		User:             profile,
	}
}

// NewRefreshClaims builds refresh-token claims for a principal id.
func NewRefreshClaims(principalID int64, issuer, audience string, ttl time.Duration, now time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: registered(strconv.FormatInt(principalID, 10), issuer, audience, ttl, now),
	}
}

func registered(subject, issuer, audience string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// PrincipalID parses the subject claim back into a numeric principal id.
func PrincipalID(c jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}

// ValidateExpiry ensures the token hasn't expired (exp). Expiry is checked
// here rather than during decode so the caller decides how an expired token
// is reported and audited.
func ValidateExpiry(c jwt.RegisteredClaims, now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrMalformed
	}
	if now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
