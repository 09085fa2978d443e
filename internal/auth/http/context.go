package http

import (
	"context"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
)

type ctxKey int

const (
	ctxKeyPrincipal ctxKey = iota
	ctxKeySession
)

// PrincipalFromContext returns the authenticated principal attached by the
// resolution stage. ok is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}

func contextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// SessionFromContext returns the request's session. The pointer is shared
// with the session stage, which persists any mutations at pipeline exit.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(*domain.Session)
	return s, ok
}

func contextWithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}
