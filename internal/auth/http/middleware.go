package http

import (
	"net/http"
	"strconv"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "rentfuse_session"

// SessionMiddleware is pipeline stage one. It materializes the request's
// session from the store (creating one if absent or expired), rotates the
// session id on the configured interval, and persists the session back after
// the handler returns, whatever the outcome.
func SessionMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var cookieID string
			if c, err := r.Cookie(SessionCookie); err == nil {
				cookieID = c.Value
			}

			sess, created, err := sessions.Ensure(ctx, cookieID)
			if err != nil {
				slogx.FromContext(ctx).Error("session establishment failed", "error", err.Error())
				httpx.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}

			rotated, err := sessions.RotateIfNeeded(ctx, &sess)
			if err != nil {
				slogx.FromContext(ctx).Error("session rotation failed", "error", err.Error())
				httpx.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}

			if created || rotated {
				setSessionCookie(w, sess.ID)
			}

			next.ServeHTTP(w, r.WithContext(contextWithSession(ctx, &sess)))

			// Teardown: persist handler mutations. A destroyed session is
			// marked by an emptied id and must not be resurrected.
			if sess.ID != "" {
				if err := sessions.Save(ctx, sess); err != nil {
					slogx.FromContext(ctx).Error("session save failed", "error", err.Error())
				}
			}
		})
	}
}

// ResolveUserMiddleware is pipeline stage two. It resolves a principal from
// the request credentials and attaches it to the context. Resolution never
// fails the request; gating is stage three's job.
func ResolveUserMiddleware(tokens *service.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if p, ok := tokens.ValidateRequest(ctx, httpx.RequestSource(r)); ok {
				ctx = contextWithPrincipal(ctx, p)
				ctx = httpx.ContextWithUserID(ctx, strconv.FormatInt(p.ID, 10))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is pipeline stage three for routes that need an authenticated
// principal. The 401 message is generic: the boundary never reveals whether
// the credential was missing, expired, revoked, or forged.
func RequireAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates routes that need an elevated role. Anonymous requests
// get 401; authenticated principals below the requirement get 403.
func RequireRole(role domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !p.Role.AtLeast(role) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
