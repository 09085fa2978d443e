package http

import (
	"net/http"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type tokenRecordView struct {
	ID        int64     `json:"id"`
	IPAddress string    `json:"ip_address,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokensHandler serves GET /v1/auth/tokens: the caller's refresh tokens that
// are neither revoked nor expired. Token values are never returned, only
// record metadata.
type TokensHandler struct {
	Tokens *service.TokenService
}

func (h *TokensHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.Tokens.ActiveTokensForUser(ctx, p.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("token listing failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]tokenRecordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, tokenRecordView{
			ID:        rec.ID,
			IPAddress: rec.IPAddress,
			IssuedAt:  rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, views)
}
