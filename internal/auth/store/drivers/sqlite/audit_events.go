package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/pkg/idx"
)

type auditEventsRepo struct {
	db dbtx
}

func (r *auditEventsRepo) Insert(ctx context.Context, ev domain.AuditEvent) error {
	details, err := marshalJSON(ev.Details)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_trails
		    (id, category, action, details, user_id, booking_id, ip_address, severity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID.String(), string(ev.Category), ev.Action, details,
		toNullInt64(ev.UserID), toNullInt64(ev.BookingID),
		ev.IPAddress, string(ev.Severity), toUnix(ev.CreatedAt),
	)
	return err
}

func (r *auditEventsRepo) List(ctx context.Context, f store.AuditFilter) ([]domain.AuditEvent, error) {
	query := strings.Builder{}
	query.WriteString(
		`SELECT id, category, action, details, user_id, booking_id, ip_address, severity, created_at
		   FROM audit_trails WHERE 1 = 1`)

	var args []any
	if f.UserID != nil {
		query.WriteString(` AND user_id = ?`)
		args = append(args, *f.UserID)
	}
	if f.Action != "" {
		query.WriteString(` AND action = ?`)
		args = append(args, f.Action)
	}
	if f.Category != "" {
		query.WriteString(` AND category = ?`)
		args = append(args, string(f.Category))
	}
	if !f.Since.IsZero() {
		query.WriteString(` AND created_at >= ?`)
		args = append(args, toUnix(f.Since))
	}
	query.WriteString(` ORDER BY created_at DESC, id DESC`)

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query.WriteString(` LIMIT ` + strconv.Itoa(limit))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			ev        domain.AuditEvent
			id        string
			details   string
			userID    sql.NullInt64
			bookingID sql.NullInt64
			created   int64
		)
		if err := rows.Scan(&id, &ev.Category, &ev.Action, &details,
			&userID, &bookingID, &ev.IPAddress, &ev.Severity, &created); err != nil {
			return nil, err
		}
		parsed, err := idx.Parse(id)
		if err != nil {
			return nil, err
		}
		ev.ID = parsed
		ev.UserID = fromNullInt64(userID)
		ev.BookingID = fromNullInt64(bookingID)
		ev.CreatedAt = fromUnix(created)
		if err := json.Unmarshal([]byte(details), &ev.Details); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

var _ store.AuditEvents = (*auditEventsRepo)(nil)
