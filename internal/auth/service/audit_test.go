package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newAuditEnv(t *testing.T, buffer int) (*sqlite.Store, *AuditService) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := NewAuditService(st, logger, buffer)
	t.Cleanup(audit.Close)

	return st, audit
}

func TestAuditEmitOrderIsPreserved(t *testing.T) {
	ctx := context.Background()
	st, audit := newAuditEnv(t, 64)

	for i := 0; i < 10; i++ {
		audit.Emit(domain.AuditEvent{
			Category: domain.AuditCategoryAuth,
			Action:   domain.AuditTokenVerified,
			Details:  map[string]any{"seq": strconv.Itoa(i)},
		})
	}
	audit.Close()

	evs, err := st.AuditEvents().List(ctx, store.AuditFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, evs, 10)

	// Newest first: the last emitted event comes back first.
	require.Equal(t, "9", evs[0].Details["seq"])
	require.Equal(t, "0", evs[9].Details["seq"])
}

func TestAuditEmitNeverBlocksWhenFull(t *testing.T) {
	ctx := context.Background()
	st, audit := newAuditEnv(t, 1)

	// Many more events than the queue holds. Emit must return immediately
	// either way; overflow is counted, not raised.
	for i := 0; i < 1000; i++ {
		audit.Emit(domain.AuditEvent{
			Category: domain.AuditCategoryAuth,
			Action:   domain.AuditTokenVerified,
		})
	}
	audit.Close()

	evs, err := st.AuditEvents().List(ctx, store.AuditFilter{Limit: 2000})
	require.NoError(t, err)
	require.EqualValues(t, 1000, uint64(len(evs))+audit.Dropped())
}

func TestAuditEmitAfterCloseIsNoOp(t *testing.T) {
	ctx := context.Background()
	st, audit := newAuditEnv(t, 8)

	audit.Close()
	audit.Emit(domain.AuditEvent{
		Category: domain.AuditCategoryAuth,
		Action:   domain.AuditTokenVerified,
	})

	evs, err := st.AuditEvents().List(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Empty(t, evs)
}

func TestAuditEmitFillsDefaults(t *testing.T) {
	ctx := context.Background()
	st, audit := newAuditEnv(t, 8)

	audit.Emit(domain.AuditEvent{
		Category: domain.AuditCategorySystem,
		Action:   domain.AuditExpiredTokensPurged,
	})
	audit.Close()

	evs, err := st.AuditEvents().List(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.False(t, evs[0].ID.IsZero())
	require.False(t, evs[0].CreatedAt.IsZero())
	require.Equal(t, domain.AuditSeverityInfo, evs[0].Severity)
}
