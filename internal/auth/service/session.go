package service

import (
	"context"
	"errors"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/idx"
)

// Default session policy.
const (
	// DefaultSessionLifetime is how long a session lives without being
	// recreated.
	DefaultSessionLifetime = 2 * time.Hour

	// DefaultSessionRotation is the interval after which the session id is
	// regenerated, bounding the window of a fixation attack.
	DefaultSessionRotation = 30 * time.Minute
)

// SessionService owns session lifecycle: creation, id rotation, persistence,
// and teardown. Handlers read and mutate the in-memory Session value; only
// the pipeline calls Save.
type SessionService struct {
	Store    store.Store
	Lifetime time.Duration
	Rotation time.Duration
	Clock    func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

func (s *SessionService) lifetime() time.Duration {
	if s.Lifetime > 0 {
		return s.Lifetime
	}
	return DefaultSessionLifetime
}

func (s *SessionService) rotation() time.Duration {
	if s.Rotation > 0 {
		return s.Rotation
	}
	return DefaultSessionRotation
}

// Ensure returns the live session for id, or a fresh one when id is empty,
// unknown, or expired. The returned bool reports whether a new session was
// created (and a new cookie must be set).
func (s *SessionService) Ensure(ctx context.Context, id string) (domain.Session, bool, error) {
	now := s.now()

	if id != "" {
		sess, err := s.Store.Sessions().Get(ctx, id)
		switch {
		case err == nil && !sess.Expired(now):
			return sess, false, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return domain.Session{}, false, err
		case err == nil:
			// Expired: discard and fall through to a fresh session.
			if err := s.Store.Sessions().Delete(ctx, id); err != nil {
				return domain.Session{}, false, err
			}
		}
	}

	sess := domain.Session{
		ID:        idx.New().String(),
		Data:      map[string]string{},
		CreatedAt: now,
		RotatedAt: now,
		ExpiresAt: now.Add(s.lifetime()),
	}
	if err := s.Store.Sessions().Create(ctx, sess); err != nil {
		return domain.Session{}, false, err
	}
	return sess, true, nil
}

// RotateIfNeeded regenerates the session id once the rotation interval has
// elapsed. The returned bool reports whether the id changed.
func (s *SessionService) RotateIfNeeded(ctx context.Context, sess *domain.Session) (bool, error) {
	now := s.now()
	if !sess.NeedsRotation(now, s.rotation()) {
		return false, nil
	}

	newID := idx.New().String()
	if err := s.Store.Sessions().Rename(ctx, sess.ID, newID, now); err != nil {
		return false, err
	}
	sess.ID = newID
	sess.RotatedAt = now
	return true, nil
}

// Rotate unconditionally regenerates the session id. Called on login so an
// attacker-supplied pre-auth session id never survives authentication.
func (s *SessionService) Rotate(ctx context.Context, sess *domain.Session) error {
	now := s.now()
	newID := idx.New().String()
	if err := s.Store.Sessions().Rename(ctx, sess.ID, newID, now); err != nil {
		return err
	}
	sess.ID = newID
	sess.RotatedAt = now
	return nil
}

// Save persists the session state back to the store at pipeline exit.
func (s *SessionService) Save(ctx context.Context, sess domain.Session) error {
	return s.Store.Sessions().Save(ctx, sess)
}

// Destroy removes the session entirely, for logout.
func (s *SessionService) Destroy(ctx context.Context, id string) error {
	return s.Store.Sessions().Delete(ctx, id)
}

// PurgeExpired removes sessions whose lifetime has passed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Store.Sessions().PurgeExpired(ctx, s.now())
}
