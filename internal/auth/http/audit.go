package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/httpx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

type auditEventView struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	UserID    *int64         `json:"user_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Severity  string         `json:"severity"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditHandler serves GET /v1/admin/audit, the admin-gated view of the audit
// trail. Filters: user_id, action, category, since (RFC 3339), limit.
type AuditHandler struct {
	Audit *service.AuditService
}

func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter store.AuditFilter
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	filter.Action = q.Get("action")
	filter.Category = domain.AuditCategory(q.Get("category"))
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		filter.Since = since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	evs, err := h.Audit.List(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("audit listing failed", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]auditEventView, 0, len(evs))
	for _, ev := range evs {
		views = append(views, auditEventView{
			ID:        ev.ID.String(),
			Category:  string(ev.Category),
			Action:    ev.Action,
			Details:   ev.Details,
			UserID:    ev.UserID,
			IPAddress: ev.IPAddress,
			Severity:  string(ev.Severity),
			CreatedAt: ev.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, views)
}
