package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/cryptox"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/jwtx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

// TokenService orchestrates the codec and the store: issuance, verification,
// refresh, and revocation of tokens. Refresh tokens carry server-side state;
// access tokens never do. Clock is optional and defaults to time.Now, tests
// inject a fixed one.
type TokenService struct {
	Codec      *jwtx.Codec
	Store      store.Store
	Audit      *AuditService
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// GenerateToken mints a signed access token for the principal. It never
// touches the store; an access token's validity is carried entirely in the
// token itself.
func (s *TokenService) GenerateToken(ctx context.Context, p domain.Principal) (string, error) {
	claims := jwtx.NewAccessClaims(jwtx.Profile{
		ID:    p.ID,
		Email: p.Email,
		Role:  string(p.Role),
	}, s.Issuer, s.Audience, s.accessTTL(), s.now())

	token, err := s.Codec.EncodeAccess(claims)
	if err != nil {
		return "", err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditJWTCreated,
		Details:   map[string]any{"expires_at": claims.ExpiresAt.Unix()},
		UserID:    &p.ID,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return token, nil
}

// GenerateRefreshToken mints a signed refresh token and records it. A store
// failure fails the whole operation: a token the store does not know about
// must never reach a caller.
func (s *TokenService) GenerateRefreshToken(ctx context.Context, p domain.Principal) (string, error) {
	now := s.now()
	claims := jwtx.NewRefreshClaims(p.ID, s.Issuer, s.Audience, s.refreshTTL(), now)

	// A random jti keeps every issuance distinct. Without it two tokens for
	// the same principal minted in the same second are byte-identical and the
	// second one collides on the fingerprint's UNIQUE constraint.
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}
	claims.ID = jti

	token, err := s.Codec.EncodeRefresh(claims)
	if err != nil {
		return "", err
	}

	rec := domain.RefreshTokenRecord{
		UserID:    p.ID,
		TokenHash: cryptox.FingerprintToken(token),
		IPAddress: httpx.ClientAddrFromContext(ctx),
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.RefreshTokens().Create(ctx, rec); err != nil {
		return "", err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditRefreshTokenCreated,
		Details:   map[string]any{"expires_at": claims.ExpiresAt.Unix()},
		UserID:    &p.ID,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return token, nil
}

// VerifyToken checks an access token's signature and expiry and returns its
// claims. The store is never consulted: access tokens are not individually
// revocable, only the refresh token that mints them is.
func (s *TokenService) VerifyToken(ctx context.Context, token string) (jwtx.AccessClaims, error) {
	claims, err := s.Codec.DecodeAccess(token)
	if err != nil {
		return jwtx.AccessClaims{}, err
	}

	if err := jwtx.ValidateExpiry(claims.RegisteredClaims, s.now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			s.Audit.Emit(domain.AuditEvent{
				Category:  domain.AuditCategoryAuth,
				Action:    domain.AuditTokenExpired,
				Details:   map[string]any{"subject": claims.Subject},
				UserID:    subjectID(claims.RegisteredClaims),
				IPAddress: httpx.ClientAddrFromContext(ctx),
			})
		}
		return jwtx.AccessClaims{}, err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditTokenVerified,
		UserID:    subjectID(claims.RegisteredClaims),
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return claims, nil
}

// DecodeRefreshToken validates a refresh token. Revocation is checked first,
// against the store, before signature or expiry: the store is the authority
// and a missing record means revoked.
func (s *TokenService) DecodeRefreshToken(ctx context.Context, token string) (jwtx.RefreshClaims, error) {
	hash := cryptox.FingerprintToken(token)

	revoked, err := s.Store.RefreshTokens().IsRevoked(ctx, hash)
	if err != nil {
		return jwtx.RefreshClaims{}, err
	}
	if revoked {
		ev := domain.AuditEvent{
			Category:  domain.AuditCategorySecurity,
			Action:    domain.AuditRevokedTokenUse,
			Severity:  domain.AuditSeverityWarning,
			IPAddress: httpx.ClientAddrFromContext(ctx),
		}
		// Attribute the attempt when the record still exists.
		if owner, err := s.Store.RefreshTokens().OwnerID(ctx, hash); err == nil {
			ev.UserID = &owner
		}
		s.Audit.Emit(ev)
		return jwtx.RefreshClaims{}, ErrRevoked
	}

	claims, err := s.Codec.DecodeRefresh(token)
	if err != nil {
		return jwtx.RefreshClaims{}, err
	}

	if err := jwtx.ValidateExpiry(claims.RegisteredClaims, s.now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			s.Audit.Emit(domain.AuditEvent{
				Category:  domain.AuditCategorySecurity,
				Action:    domain.AuditExpiredTokenUse,
				Severity:  domain.AuditSeverityWarning,
				UserID:    subjectID(claims.RegisteredClaims),
				IPAddress: httpx.ClientAddrFromContext(ctx),
			})
		}
		return jwtx.RefreshClaims{}, err
	}

	return claims, nil
}

// RefreshToken mints a new access token from a valid refresh token. The
// principal is re-read from the directory so the new token carries current
// identity, not the snapshot from when the refresh token was issued. The
// refresh token itself is not rotated and stays valid.
func (s *TokenService) RefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.DecodeRefreshToken(ctx, token)
	if err != nil {
		return "", err
	}

	id, err := jwtx.PrincipalID(claims.RegisteredClaims)
	if err != nil {
		return "", err
	}

	principal, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrPrincipalNotFound
		}
		return "", err
	}

	access, err := s.GenerateToken(ctx, principal)
	if err != nil {
		return "", err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategoryAuth,
		Action:    domain.AuditJWTRefreshed,
		UserID:    &principal.ID,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})

	return access, nil
}

// RevokeToken permanently disables a refresh token. The owner is resolved
// first, for attribution; an unknown token is not an error and produces no
// audit event.
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(token)

	owner, err := s.Store.RefreshTokens().OwnerID(ctx, hash)
	known := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := s.Store.RefreshTokens().Revoke(ctx, hash, s.now()); err != nil {
		return err
	}

	if known {
		s.Audit.Emit(domain.AuditEvent{
			Category:  domain.AuditCategoryAuth,
			Action:    domain.AuditTokenRevoked,
			UserID:    &owner,
			IPAddress: httpx.ClientAddrFromContext(ctx),
		})
	}

	return nil
}

// PurgeExpiredTokens removes refresh token records whose expiry has passed
// and reports the count. Records for revoked tokens that are gone afterwards
// still read as revoked through the fail-closed lookup.
func (s *TokenService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.Store.RefreshTokens().PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	s.Audit.Emit(domain.AuditEvent{
		Category: domain.AuditCategorySystem,
		Action:   domain.AuditExpiredTokensPurged,
		Details:  map[string]any{"count": n},
	})

	return n, nil
}

// ValidateRequest resolves a principal from the request's credentials. It
// never returns an error: any failure, from a missing header to a bad
// signature to a vanished user, yields a false ok so the pipeline stays
// uniform. Failures with an actual credential present are audited.
func (s *TokenService) ValidateRequest(ctx context.Context, src httpx.CredentialSource) (domain.Principal, bool) {
	token, ok := httpx.ExtractBearer(src)
	if !ok {
		return domain.Principal{}, false
	}

	claims, err := s.VerifyToken(ctx, token)
	if err != nil {
		s.auditInvalidUse(ctx, err)
		return domain.Principal{}, false
	}

	id, err := jwtx.PrincipalID(claims.RegisteredClaims)
	if err != nil {
		s.auditInvalidUse(ctx, err)
		return domain.Principal{}, false
	}

	principal, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		s.auditInvalidUse(ctx, err)
		return domain.Principal{}, false
	}

	return principal, true
}

// ActiveTokensForUser lists a principal's refresh tokens that are neither
// revoked nor expired.
func (s *TokenService) ActiveTokensForUser(ctx context.Context, userID int64) ([]domain.RefreshTokenRecord, error) {
	return s.Store.RefreshTokens().ActiveForUser(ctx, userID, s.now())
}

func (s *TokenService) auditInvalidUse(ctx context.Context, cause error) {
	// token_expired is already recorded by VerifyToken with attribution.
	if errors.Is(cause, jwtx.ErrExpired) {
		return
	}
	s.Audit.Emit(domain.AuditEvent{
		Category:  domain.AuditCategorySecurity,
		Action:    domain.AuditInvalidTokenUse,
		Details:   map[string]any{"reason": cause.Error()},
		Severity:  domain.AuditSeverityWarning,
		IPAddress: httpx.ClientAddrFromContext(ctx),
	})
	slogx.FromContext(ctx).Debug("request credential rejected", slog.String("reason", cause.Error()))
}

func subjectID(c jwt.RegisteredClaims) *int64 {
	id, err := jwtx.PrincipalID(c)
	if err != nil {
		return nil
	}
	return &id
}
