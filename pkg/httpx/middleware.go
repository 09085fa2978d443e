package httpx

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// ClientAddrMiddleware resolves the client IP once, at pipeline entry, and
// attaches it to the request context for services that attribute events to
// an address.
func ClientAddrMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithClientAddr(r.Context(), IPKeyExtractor(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chain applies middlewares to a handler. The first middleware listed is the
// outermost, so Chain(h, a, b) runs a, then b, then h. Ordering matters for
// the auth pipeline: session establishment must run before user resolution,
// which must run before the authorization gate.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
