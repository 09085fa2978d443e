package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated principal id (string form) once the
// resolution stage has run. Rate limiting keys off it for per-user limits.
const CtxKeyUserID ctxKey = "user_id"

// UserIDFromContext returns the authenticated principal id, or "" when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ContextWithUserID attaches the principal id for downstream middleware.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, id)
}

// CtxKeyClientAddr carries the client IP resolved at pipeline entry so
// services below the transport layer can attribute events to it.
const CtxKeyClientAddr ctxKey = "client_addr"

// ClientAddrFromContext returns the client IP, or "" when none was recorded.
func ClientAddrFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyClientAddr).(string); ok {
		return v
	}
	return ""
}

// ContextWithClientAddr attaches the client IP for downstream consumers.
func ContextWithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, CtxKeyClientAddr, addr)
}
