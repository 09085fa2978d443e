package store

import (
	"context"
	"errors"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement it. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Sessions() Sessions
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store. Nested transactions are not supported.
type Tx interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Sessions() Sessions
	AuditEvents() AuditEvents
}

// Users is the principal directory boundary. The token service only reads
// it (by id) to rehydrate claims during refresh; login and registration use
// the credential methods.
type Users interface {
	// GetByID returns the principal for an id.
	GetByID(ctx context.Context, id int64) (domain.Principal, error)

	// GetByEmail returns the full directory record, including the password
	// hash, for credential verification at login.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts a new user and returns its assigned id.
	Create(ctx context.Context, u domain.User) (int64, error)

	// UpdateRole changes a user's role.
	UpdateRole(ctx context.Context, id int64, role domain.Role) error

	// Delete removes a user. Their sessions cascade; refresh token records
	// remain so revocation state outlives the directory entry.
	Delete(ctx context.Context, id int64) error
}

// RefreshTokens is the durable record of issued refresh tokens, keyed by
// token fingerprint.
type RefreshTokens interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, rec domain.RefreshTokenRecord) error

	// IsRevoked reports whether the token is unusable. A fingerprint the
	// store has never seen is reported as revoked (fail-closed).
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)

	// OwnerID returns the owning principal id, or ErrNotFound.
	OwnerID(ctx context.Context, tokenHash string) (int64, error)

	// Revoke flips the revoked flag. Idempotent: revoking an already-revoked
	// or unknown token is not an error.
	Revoke(ctx context.Context, tokenHash string, at time.Time) error

	// PurgeExpired deletes records whose expiry has passed and returns the
	// count. Safe to run concurrently with lookups.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// ActiveForUser lists a principal's records that are neither revoked nor
	// expired.
	ActiveForUser(ctx context.Context, userID int64, now time.Time) ([]domain.RefreshTokenRecord, error)
}

// Sessions persists browser session state between requests.
type Sessions interface {
	// Get returns a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.Session, error)

	// Create inserts a new session record.
	Create(ctx context.Context, s domain.Session) error

	// Save persists the session's data, user binding, and rotation time.
	Save(ctx context.Context, s domain.Session) error

	// Rename moves a session to a new id, preserving its state. Used for
	// session id regeneration.
	Rename(ctx context.Context, oldID, newID string, rotatedAt time.Time) error

	// Delete removes a session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// PurgeExpired deletes sessions whose lifetime has passed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditEvents is the append-only audit trail. Events are written once and
// never mutated.
type AuditEvents interface {
	// Insert appends one event.
	Insert(ctx context.Context, ev domain.AuditEvent) error

	// List returns recent events, newest first, honoring the filter.
	List(ctx context.Context, f AuditFilter) ([]domain.AuditEvent, error)
}

// AuditFilter narrows an audit listing. Zero values mean "don't care".
type AuditFilter struct {
	UserID   *int64
	Action   string
	Category domain.AuditCategory
	Since    time.Time
	Limit    int
}
