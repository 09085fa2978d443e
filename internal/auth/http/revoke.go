package http

import (
	"encoding/json"
	"net/http"

	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type revokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeHandler serves POST /v1/auth/revoke. Revocation is idempotent and
// unknown tokens still return 200, so the endpoint cannot be used to scan
// for live tokens.
type RevokeHandler struct {
	Tokens *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	if err := h.Tokens.RevokeToken(ctx, req.RefreshToken); err != nil {
		slogx.FromContext(ctx).Error("revocation failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
