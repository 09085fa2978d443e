package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")

	// ErrSecretMissing and ErrSecretTooShort are configuration errors. They
	// are surfaced only at construction time and abort startup.
	ErrSecretMissing  = errors.New("jwtx: signing secret is missing")
	ErrSecretTooShort = errors.New("jwtx: signing secret is shorter than 32 bytes")
)

// MinSecretLength is the minimum accepted HMAC secret length in bytes.
// HS256 secrets shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// Codec signs and verifies token claims with HMAC-SHA256. It is stateless
// and safe for concurrent use. Two independent secrets are held, one per
// token class, so an access-token leak can never forge refresh tokens.
//
// The codec checks signature and structure only. Expiry and revocation are
// policy and belong to the caller (see ValidateExpiry).
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewCodec builds a Codec from the two signing secrets. Both are required;
// a missing or undersized secret is a fatal configuration error, never a
// per-request condition.
func NewCodec(accessSecret, refreshSecret string) (*Codec, error) {
	for _, s := range []string{accessSecret, refreshSecret} {
		if s == "" {
			return nil, ErrSecretMissing
		}
		if len(s) < MinSecretLength {
			return nil, ErrSecretTooShort
		}
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// EncodeAccess signs access-token claims.
func (c *Codec) EncodeAccess(claims AccessClaims) (string, error) {
	return encode(&claims, c.accessSecret)
}

// EncodeRefresh signs refresh-token claims.
func (c *Codec) EncodeRefresh(claims RefreshClaims) (string, error) {
	return encode(&claims, c.refreshSecret)
}

// DecodeAccess verifies the signature of an access token and returns its
// claims. Expired tokens decode successfully; run ValidateExpiry afterwards.
func (c *Codec) DecodeAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := decode(token, &claims, c.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// DecodeRefresh verifies the signature of a refresh token and returns its
// claims. Expired tokens decode successfully; run ValidateExpiry afterwards.
func (c *Codec) DecodeRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := decode(token, &claims, c.refreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func encode(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func decode(token string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// exp/iat are validated by the service layer so it can distinguish
		// and audit expiry separately from signature failures.
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
