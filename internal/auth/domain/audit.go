package domain

import (
	"time"

	"github.com/rentfuse/rentfuse/pkg/idx"
)

// AuditCategory groups related audit actions.
type AuditCategory string

const (
	AuditCategoryAuth     AuditCategory = "auth"
	AuditCategorySecurity AuditCategory = "security"
	AuditCategorySystem   AuditCategory = "system"
)

// AuditSeverity ranks how urgent an event is for reviewers.
type AuditSeverity string

const (
	AuditSeverityInfo     AuditSeverity = "info"
	AuditSeverityWarning  AuditSeverity = "warning"
	AuditSeverityCritical AuditSeverity = "critical"
)

// Audit actions recorded by the token service on security-relevant
// transitions.
const (
	AuditJWTCreated            = "jwt_created"
	AuditRefreshTokenCreated   = "refresh_token_created"
	AuditTokenVerified         = "token_verified"
	AuditTokenExpired          = "token_expired"
	AuditRevokedTokenUse       = "revoked_token_use_attempt"
	AuditExpiredTokenUse       = "expired_token_use_attempt"
	AuditJWTRefreshed          = "jwt_refreshed"
	AuditTokenRevoked          = "token_revoked"
	AuditInvalidTokenUse       = "invalid_token_use"
	AuditExpiredTokensPurged   = "expired_tokens_purged"
	AuditExpiredSessionsPurged = "expired_sessions_purged"
	AuditUserLogin             = "user_login"
	AuditUserLoginFailed       = "user_login_failed"
	AuditUserRegistered        = "user_registered"
)

// AuditEvent is a write-once record of a security-relevant transition. It is
// never mutated or deleted by this service.
type AuditEvent struct {
	ID        idx.ID
	Category  AuditCategory
	Action    string
	Details   map[string]any
	UserID    *int64
	BookingID *int64
	IPAddress string
	Severity  AuditSeverity
	CreatedAt time.Time
}
