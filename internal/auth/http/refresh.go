package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/jwtx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// RefreshHandler serves POST /v1/auth/refresh. It exchanges a refresh token
// for a fresh access token; the refresh token itself is not rotated. All
// rejection reasons collapse into one generic 401 so the endpoint cannot be
// used to probe token state.
type RefreshHandler struct {
	Tokens *service.TokenService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	access, err := h.Tokens.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRevoked),
			errors.Is(err, service.ErrPrincipalNotFound),
			errors.Is(err, jwtx.ErrExpired),
			errors.Is(err, jwtx.ErrInvalidSig),
			errors.Is(err, jwtx.ErrMalformed):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		default:
			slogx.FromContext(ctx).Error("refresh failed", "error", err.Error())
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	setAccessTokenCookie(w, access)
	httpx.WriteJSON(w, http.StatusOK, refreshResponse{Token: access})
}
