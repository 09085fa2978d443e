package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createTestUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()

	now := time.Now()
	id, err := s.Users().Create(context.Background(), domain.User{
		Principal:    domain.Principal{Email: email, Role: domain.RoleUser},
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return id
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := createTestUser(t, s, "alice@example.com")

	t.Run("get by id", func(t *testing.T) {
		p, err := s.Users().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", p.Email)
		require.Equal(t, domain.RoleUser, p.Role)
	})

	t.Run("get by email includes password hash", func(t *testing.T) {
		u, err := s.Users().GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, id, u.ID)
		require.Equal(t, "hash", u.PasswordHash)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Users().GetByID(ctx, 99999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		now := time.Now()
		_, err := s.Users().Create(ctx, domain.User{
			Principal:    domain.Principal{Email: "alice@example.com", Role: domain.RoleUser},
			PasswordHash: "other",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		now := time.Now()
		_, err := s.Users().Create(ctx, domain.User{
			Principal:    domain.Principal{Email: "eve@example.com", Role: "owner"},
			PasswordHash: "hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.Error(t, err)

		require.Error(t, s.Users().UpdateRole(ctx, id, "owner"))

		p, err := s.Users().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, p.Role)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := createTestUser(t, s, "bob@example.com")
	now := time.Now()

	rec := domain.RefreshTokenRecord{
		UserID:    userID,
		TokenHash: "fingerprint-a",
		IPAddress: "203.0.113.9",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().Create(ctx, rec))

	t.Run("known token is not revoked", func(t *testing.T) {
		revoked, err := s.RefreshTokens().IsRevoked(ctx, "fingerprint-a")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("unknown token reports revoked", func(t *testing.T) {
		revoked, err := s.RefreshTokens().IsRevoked(ctx, "never-stored")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("owner id", func(t *testing.T) {
		owner, err := s.RefreshTokens().OwnerID(ctx, "fingerprint-a")
		require.NoError(t, err)
		require.Equal(t, userID, owner)

		_, err = s.RefreshTokens().OwnerID(ctx, "never-stored")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revoke is permanent and idempotent", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().Revoke(ctx, "fingerprint-a", now))
		require.NoError(t, s.RefreshTokens().Revoke(ctx, "fingerprint-a", now.Add(time.Minute)))
		require.NoError(t, s.RefreshTokens().Revoke(ctx, "never-stored", now))

		revoked, err := s.RefreshTokens().IsRevoked(ctx, "fingerprint-a")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("purge removes expired but keeps live records", func(t *testing.T) {
		expired := domain.RefreshTokenRecord{
			UserID:    userID,
			TokenHash: "fingerprint-old",
			ExpiresAt: now.Add(-time.Hour),
			CreatedAt: now.Add(-2 * time.Hour),
			UpdatedAt: now.Add(-2 * time.Hour),
		}
		require.NoError(t, s.RefreshTokens().Create(ctx, expired))

		n, err := s.RefreshTokens().PurgeExpired(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		// Purged record now reads as revoked.
		revoked, err := s.RefreshTokens().IsRevoked(ctx, "fingerprint-old")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("active listing excludes revoked and expired", func(t *testing.T) {
		live := domain.RefreshTokenRecord{
			UserID:    userID,
			TokenHash: "fingerprint-live",
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, s.RefreshTokens().Create(ctx, live))

		recs, err := s.RefreshTokens().ActiveForUser(ctx, userID, now)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		require.Equal(t, "fingerprint-live", recs[0].TokenHash)
	})
}

func TestSessionsRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := createTestUser(t, s, "carol@example.com")
	now := time.Now().Truncate(time.Second)

	sess := domain.Session{
		ID:        idx.New().String(),
		Data:      map[string]string{"theme": "dark"},
		CreatedAt: now,
		RotatedAt: now,
		ExpiresAt: now.Add(2 * time.Hour),
	}
	require.NoError(t, s.Sessions().Create(ctx, sess))

	t.Run("round trip", func(t *testing.T) {
		got, err := s.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
		require.Nil(t, got.UserID)
		require.Equal(t, "dark", got.Data["theme"])
	})

	t.Run("save binds a user", func(t *testing.T) {
		sess.UserID = &userID
		require.NoError(t, s.Sessions().Save(ctx, sess))

		got, err := s.Sessions().Get(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, got.UserID)
		require.Equal(t, userID, *got.UserID)
	})

	t.Run("rename preserves state", func(t *testing.T) {
		newID := idx.New().String()
		rotated := now.Add(30 * time.Minute)
		require.NoError(t, s.Sessions().Rename(ctx, sess.ID, newID, rotated))

		_, err := s.Sessions().Get(ctx, sess.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := s.Sessions().Get(ctx, newID)
		require.NoError(t, err)
		require.Equal(t, "dark", got.Data["theme"])
		require.Equal(t, rotated.UTC(), got.RotatedAt)

		sess.ID = newID
	})

	t.Run("purge expired", func(t *testing.T) {
		old := domain.Session{
			ID:        idx.New().String(),
			Data:      map[string]string{},
			CreatedAt: now.Add(-3 * time.Hour),
			RotatedAt: now.Add(-3 * time.Hour),
			ExpiresAt: now.Add(-time.Hour),
		}
		require.NoError(t, s.Sessions().Create(ctx, old))

		n, err := s.Sessions().PurgeExpired(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("delete unknown id is fine", func(t *testing.T) {
		require.NoError(t, s.Sessions().Delete(ctx, "no-such-session"))
	})
}

func TestAuditEventsRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	userID := createTestUser(t, s, "dave@example.com")
	now := time.Now().Truncate(time.Second)

	insert := func(action string, cat domain.AuditCategory, at time.Time, uid *int64) {
		t.Helper()
		require.NoError(t, s.AuditEvents().Insert(ctx, domain.AuditEvent{
			ID:        idx.NewAt(at),
			Category:  cat,
			Action:    action,
			Details:   map[string]any{"source": "test"},
			UserID:    uid,
			IPAddress: "198.51.100.4",
			Severity:  domain.AuditSeverityInfo,
			CreatedAt: at,
		}))
	}

	insert(domain.AuditJWTCreated, domain.AuditCategoryAuth, now.Add(-2*time.Minute), &userID)
	insert(domain.AuditRevokedTokenUse, domain.AuditCategorySecurity, now.Add(-time.Minute), &userID)
	insert(domain.AuditExpiredTokensPurged, domain.AuditCategorySystem, now, nil)

	t.Run("newest first", func(t *testing.T) {
		evs, err := s.AuditEvents().List(ctx, store.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, evs, 3)
		require.Equal(t, domain.AuditExpiredTokensPurged, evs[0].Action)
		require.Equal(t, "test", evs[0].Details["source"])
	})

	t.Run("filter by user", func(t *testing.T) {
		evs, err := s.AuditEvents().List(ctx, store.AuditFilter{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, evs, 2)
	})

	t.Run("filter by category and action", func(t *testing.T) {
		evs, err := s.AuditEvents().List(ctx, store.AuditFilter{
			Category: domain.AuditCategorySecurity,
			Action:   domain.AuditRevokedTokenUse,
		})
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, domain.AuditSeverityInfo, evs[0].Severity)
	})

	t.Run("since and limit", func(t *testing.T) {
		evs, err := s.AuditEvents().List(ctx, store.AuditFilter{Since: now.Add(-90 * time.Second), Limit: 1})
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, domain.AuditExpiredTokensPurged, evs[0].Action)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().Create(ctx, domain.User{
			Principal:    domain.Principal{Email: "tx@example.com", Role: domain.RoleUser},
			PasswordHash: "hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
