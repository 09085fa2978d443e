package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
)

// HousekeepingService periodically sweeps expired refresh tokens and
// sessions so the tables don't grow without bound. Revocation semantics do
// not depend on the sweep: a purged token still reads as revoked through the
// fail-closed lookup.
type HousekeepingService struct {
	Tokens   *TokenService
	Sessions *SessionService
	Audit    *AuditService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. An interval of zero or less
// defaults to 1 hour.
func NewHousekeepingService(tokens *TokenService, sessions *SessionService, audit *AuditService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Tokens:   tokens,
		Sessions: sessions,
		Audit:    audit,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop shuts the worker down and blocks until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep runs each cleanup independently so one failure doesn't stop the
// others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	if n, err := s.Tokens.PurgeExpiredTokens(ctx); err != nil {
		s.Logger.Error("refresh token purge failed", slog.String("error", err.Error()))
	} else if n > 0 {
		s.Logger.Info("purged expired refresh tokens", slog.Int64("count", n))
	}

	if n, err := s.Sessions.PurgeExpired(ctx); err != nil {
		s.Logger.Error("session purge failed", slog.String("error", err.Error()))
	} else if n > 0 {
		s.Logger.Info("purged expired sessions", slog.Int64("count", n))
		s.Audit.Emit(domain.AuditEvent{
			Category: domain.AuditCategorySystem,
			Action:   domain.AuditExpiredSessionsPurged,
			Details:  map[string]any{"count": n},
		})
	}
}
