package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "0123456789abcdef0123456789abcdef"
	testRefreshSecret = "fedcba9876543210fedcba9876543210"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testAccessSecret, testRefreshSecret)
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsBadSecrets(t *testing.T) {
	t.Parallel()

	t.Run("missing access secret", func(t *testing.T) {
		_, err := NewCodec("", testRefreshSecret)
		require.ErrorIs(t, err, ErrSecretMissing)
	})

	t.Run("missing refresh secret", func(t *testing.T) {
		_, err := NewCodec(testAccessSecret, "")
		require.ErrorIs(t, err, ErrSecretMissing)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := NewCodec("too-short", testRefreshSecret)
		require.ErrorIs(t, err, ErrSecretTooShort)
	})
}

func TestAccessRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	now := time.Now().UTC()
	profile := Profile{ID: 42, Email: "a@b.pl", Role: "user"}
	claims := NewAccessClaims(profile, "rentfuse-auth", "rentfuse", time.Hour, now)

	token, err := c.EncodeAccess(claims)
	require.NoError(t, err)

	decoded, err := c.DecodeAccess(token)
	require.NoError(t, err)
	require.Equal(t, profile, decoded.User)
	require.Equal(t, "42", decoded.Subject)
	require.Equal(t, "rentfuse-auth", decoded.Issuer)
	require.NoError(t, ValidateExpiry(decoded.RegisteredClaims, now))

	id, err := PrincipalID(decoded.RegisteredClaims)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
}

func TestRefreshRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	now := time.Now().UTC()
	claims := NewRefreshClaims(7, "rentfuse-auth", "rentfuse", DefaultRefreshTokenTTL, now)

	token, err := c.EncodeRefresh(claims)
	require.NoError(t, err)

	decoded, err := c.DecodeRefresh(token)
	require.NoError(t, err)
	require.Equal(t, "7", decoded.Subject)
	require.NoError(t, ValidateExpiry(decoded.RegisteredClaims, now))
}

func TestSecretsAreIndependent(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	now := time.Now().UTC()
	refresh, err := c.EncodeRefresh(NewRefreshClaims(1, "iss", "aud", time.Hour, now))
	require.NoError(t, err)

	// A refresh token must never verify under the access secret.
	_, err = c.DecodeAccess(refresh)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	now := time.Now().UTC()
	token, err := c.EncodeAccess(NewAccessClaims(Profile{ID: 1}, "iss", "aud", time.Hour, now))
	require.NoError(t, err)

	other, err := NewCodec(strings.Repeat("x", 32), testRefreshSecret)
	require.NoError(t, err)

	_, err = other.DecodeAccess(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		_, err := c.DecodeAccess(tok)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestExpiredTokenDecodesButFailsValidation(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	// Issued two hours ago with a one-hour lifetime: signature is still
	// valid, expiry is not.
	issuedAt := time.Now().UTC().Add(-2 * time.Hour)
	claims := NewAccessClaims(Profile{ID: 9, Email: "x@y.z", Role: "user"}, "iss", "aud", time.Hour, issuedAt)

	token, err := c.EncodeAccess(claims)
	require.NoError(t, err)

	decoded, err := c.DecodeAccess(token)
	require.NoError(t, err)
	require.ErrorIs(t, ValidateExpiry(decoded.RegisteredClaims, time.Now().UTC()), ErrExpired)
}

func TestExpiryStrictlyAfterIssue(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	claims := NewAccessClaims(Profile{ID: 1}, "iss", "aud", time.Hour, now)
	require.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}
