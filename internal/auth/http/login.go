package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler serves POST /v1/auth/login. On success it returns a token
// pair and also sets the access token cookie for clients that cannot send
// an Authorization header.
type LoginHandler struct {
	Directory *service.DirectoryService
	Tokens    *service.TokenService
	Sessions  *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	principal, err := h.Directory.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		slogx.FromContext(ctx).Error("login failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pair, err := h.issuePair(w, r, principal)
	if err != nil {
		slogx.FromContext(ctx).Error("token issuance failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// issuePair mints the token pair, binds the session to the principal, and
// rotates the session id so a pre-auth id never survives login.
func (h *LoginHandler) issuePair(w http.ResponseWriter, r *http.Request, p domain.Principal) (domain.TokenPair, error) {
	ctx := r.Context()

	access, err := h.Tokens.GenerateToken(ctx, p)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := h.Tokens.GenerateRefreshToken(ctx, p)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if sess, ok := SessionFromContext(ctx); ok {
		if err := h.Sessions.Rotate(ctx, sess); err != nil {
			return domain.TokenPair{}, err
		}
		sess.UserID = &p.ID
		setSessionCookie(w, sess.ID)
	}

	setAccessTokenCookie(w, access)

	return domain.TokenPair{Token: access, RefreshToken: refresh}, nil
}

func setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAccessTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
