package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// RegisterHandler serves POST /v1/auth/register. A fresh account is logged
// in immediately: the response carries a token pair like login.
type RegisterHandler struct {
	Directory *service.DirectoryService
	Tokens    *service.TokenService
	Sessions  *service.SessionService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(req.Password) < MinPasswordLength {
		httpx.WriteError(w, http.StatusBadRequest, "password too short")
		return
	}

	principal, err := h.Directory.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		slogx.FromContext(ctx).Error("registration failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	login := &LoginHandler{Directory: h.Directory, Tokens: h.Tokens, Sessions: h.Sessions}
	pair, err := login.issuePair(w, r, principal)
	if err != nil {
		slogx.FromContext(ctx).Error("token issuance failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, pair)
}
