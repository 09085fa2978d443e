package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (domain.Session, error) {
	var (
		s       domain.Session
		userID  sql.NullInt64
		data    string
		created int64
		rotated int64
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, data, created_at, rotated_at, expires_at
		   FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &userID, &data, &created, &rotated, &expires)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.UserID = fromNullInt64(userID)
	s.CreatedAt = fromUnix(created)
	s.RotatedAt = fromUnix(rotated)
	s.ExpiresAt = fromUnix(expires)
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	data, err := marshalJSON(s.Data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, data, created_at, rotated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, toNullInt64(s.UserID), data,
		toUnix(s.CreatedAt), toUnix(s.RotatedAt), toUnix(s.ExpiresAt),
	)
	return err
}

func (r *sessionsRepo) Save(ctx context.Context, s domain.Session) error {
	data, err := marshalJSON(s.Data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE sessions
		    SET user_id = ?, data = ?, rotated_at = ?, expires_at = ?
		  WHERE id = ?`,
		toNullInt64(s.UserID), data, toUnix(s.RotatedAt), toUnix(s.ExpiresAt), s.ID,
	)
	return err
}

func (r *sessionsRepo) Rename(ctx context.Context, oldID, newID string, rotatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET id = ?, rotated_at = ? WHERE id = ?`,
		newID, toUnix(rotatedAt), oldID,
	)
	return err
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, toUnix(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ store.Sessions = (*sessionsRepo)(nil)
