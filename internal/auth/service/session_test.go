package service

import (
	"context"
	"testing"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newSessionEnv(t *testing.T) (*SessionService, *fakeClock) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
	return &SessionService{Store: st, Clock: clock.Now}, clock
}

func TestEnsureCreatesAndReuses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSessionEnv(t)

	sess, created, err := svc.Ensure(ctx, "")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, sess.ID)

	again, created, err := svc.Ensure(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, sess.ID, again.ID)
}

func TestEnsureReplacesExpiredSession(t *testing.T) {
	ctx := context.Background()
	svc, clock := newSessionEnv(t)

	sess, _, err := svc.Ensure(ctx, "")
	require.NoError(t, err)

	clock.Advance(DefaultSessionLifetime + time.Minute)

	fresh, created, err := svc.Ensure(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, sess.ID, fresh.ID)

	_, err = svc.Store.Sessions().Get(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRotateIfNeededHonorsInterval(t *testing.T) {
	ctx := context.Background()
	svc, clock := newSessionEnv(t)

	sess, _, err := svc.Ensure(ctx, "")
	require.NoError(t, err)
	originalID := sess.ID

	rotated, err := svc.RotateIfNeeded(ctx, &sess)
	require.NoError(t, err)
	require.False(t, rotated)
	require.Equal(t, originalID, sess.ID)

	clock.Advance(DefaultSessionRotation + time.Minute)

	rotated, err = svc.RotateIfNeeded(ctx, &sess)
	require.NoError(t, err)
	require.True(t, rotated)
	require.NotEqual(t, originalID, sess.ID)

	// The old id is gone; the new one carries the state forward.
	_, err = svc.Store.Sessions().Get(ctx, originalID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Store.Sessions().Get(ctx, sess.ID)
	require.NoError(t, err)
}

func TestRotateAlwaysChangesID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSessionEnv(t)

	sess, _, err := svc.Ensure(ctx, "")
	require.NoError(t, err)
	originalID := sess.ID

	require.NoError(t, svc.Rotate(ctx, &sess))
	require.NotEqual(t, originalID, sess.ID)
}

func TestDestroyAndPurge(t *testing.T) {
	ctx := context.Background()
	svc, clock := newSessionEnv(t)

	sess, _, err := svc.Ensure(ctx, "")
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(ctx, sess.ID))
	_, err = svc.Store.Sessions().Get(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = svc.Ensure(ctx, "")
	require.NoError(t, err)
	clock.Advance(DefaultSessionLifetime + time.Minute)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
