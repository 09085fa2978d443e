package domain

import "time"

// TokenPair is what the login endpoint returns: the short-lived access token
// (JWT) and the longer-lived refresh token.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRecord models the stored refresh token row. The store, not the
// token's own signature or embedded expiry, is the authority for revocation:
// a refresh token that has no record is unusable.
type RefreshTokenRecord struct {
	ID        int64
	UserID    int64
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	IPAddress string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
