package http

import (
	"encoding/json"
	"net/http"

	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutHandler serves POST /v1/auth/logout. It destroys the session,
// clears both cookies, and revokes the refresh token when the client sends
// it. The access token keeps working until it expires.
type LogoutHandler struct {
	Sessions *service.SessionService
	Tokens   *service.TokenService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logoutRequest
	if r.Body != nil {
		// The body is optional; a missing or malformed one is ignored.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.RefreshToken != "" {
		if err := h.Tokens.RevokeToken(ctx, req.RefreshToken); err != nil {
			slogx.FromContext(ctx).Error("revocation on logout failed", "error", err.Error())
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if sess, ok := SessionFromContext(ctx); ok && sess.ID != "" {
		if err := h.Sessions.Destroy(ctx, sess.ID); err != nil {
			slogx.FromContext(ctx).Error("session destroy failed", "error", err.Error())
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// Signals the session stage not to save it back.
		sess.ID = ""
	}

	clearSessionCookie(w)
	clearAccessTokenCookie(w)
	w.WriteHeader(http.StatusOK)
}
