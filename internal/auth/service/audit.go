package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/idx"
)

// DefaultAuditBuffer is the queue depth of the audit dispatcher.
const DefaultAuditBuffer = 256

// AuditService records security-relevant transitions without ever failing
// the operation that produced them. Events are queued onto a bounded channel
// and written by a single worker, which preserves emit order. When the queue
// is full the event is dropped and counted; auditing is best-effort by
// contract.
type AuditService struct {
	store  store.Store
	logger *slog.Logger

	ch        chan domain.AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewAuditService starts the dispatcher worker. Call Close to flush and stop.
func NewAuditService(st store.Store, logger *slog.Logger, buffer int) *AuditService {
	if buffer <= 0 {
		buffer = DefaultAuditBuffer
	}

	s := &AuditService{
		store:  st,
		logger: logger,
		ch:     make(chan domain.AuditEvent, buffer),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *AuditService) run() {
	defer s.wg.Done()

	for {
		select {
		case ev := <-s.ch:
			s.write(ev)
		case <-s.done:
			// Drain whatever was queued before Close.
			for {
				select {
				case ev := <-s.ch:
					s.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) write(ev domain.AuditEvent) {
	if err := s.store.AuditEvents().Insert(context.Background(), ev); err != nil {
		s.logger.Error("audit event write failed",
			slog.String("action", ev.Action),
			slog.String("error", err.Error()),
		)
	}
}

// Emit queues an event. It never blocks and never returns an error; a full
// queue drops the event.
func (s *AuditService) Emit(ev domain.AuditEvent) {
	if s == nil || s.closed.Load() {
		return
	}

	if ev.ID.IsZero() {
		ev.ID = idx.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Severity == "" {
		ev.Severity = domain.AuditSeverityInfo
	}

	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (s *AuditService) Dropped() uint64 {
	if s == nil {
		return 0
	}
	return s.dropped.Load()
}

// Close stops accepting events, flushes the queue, and waits for the worker.
func (s *AuditService) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.wg.Wait()
	})
}

// List exposes the audit trail for the admin review endpoint.
func (s *AuditService) List(ctx context.Context, f store.AuditFilter) ([]domain.AuditEvent, error) {
	return s.store.AuditEvents().List(ctx, f)
}
