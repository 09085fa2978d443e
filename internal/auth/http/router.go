package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers and wires the pipeline:
// session establishment, then user resolution, then per-route gates. The
// order is load-bearing; the gates decide off context the earlier stages
// populate.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TokenService     *service.TokenService
	DirectoryService *service.DirectoryService
	SessionService   *service.SessionService
	AuditService     *service.AuditService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ClientAddrMiddleware(),
	}

	return r
}

// ApplyRoutes registers every route. Call after the service fields are set.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP applies the global middleware chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// pipeline wraps a handler in the ordered stages plus any extra gates.
func (r *Router) pipeline(h http.Handler, gates ...httpx.Middleware) http.Handler {
	stages := []httpx.Middleware{
		SessionMiddleware(r.SessionService),
		ResolveUserMiddleware(r.TokenService),
	}
	stages = append(stages, gates...)
	return httpx.Chain(h, stages...)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{
		Directory: r.DirectoryService,
		Tokens:    r.TokenService,
		Sessions:  r.SessionService,
	}
	r.Mux.Handle("POST /v1/auth/login",
		r.pipeline(login, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	register := &RegisterHandler{
		Directory: r.DirectoryService,
		Tokens:    r.TokenService,
		Sessions:  r.SessionService,
	}
	r.Mux.Handle("POST /v1/auth/register",
		r.pipeline(register, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		r.pipeline(&RefreshHandler{Tokens: r.TokenService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/revoke",
		r.pipeline(&RevokeHandler{Tokens: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		r.pipeline(&LogoutHandler{Sessions: r.SessionService, Tokens: r.TokenService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/tokens",
		r.pipeline(&TokensHandler{Tokens: r.TokenService},
			httpx.RateLimitByUser(httpx.ModerateLimit),
			RequireAuth(),
		),
	)
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("GET /v1/admin/audit",
		r.pipeline(&AuditHandler{Audit: r.AuditService},
			httpx.RateLimitByUser(httpx.ModerateLimit),
			RequireRole(domain.RoleAdmin),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
