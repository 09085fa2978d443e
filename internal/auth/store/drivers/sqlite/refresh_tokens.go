package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) Create(ctx context.Context, rec domain.RefreshTokenRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens
		    (user_id, token_hash, ip_address, expires_at, revoked, revoked_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.TokenHash, rec.IPAddress, toUnix(rec.ExpiresAt),
		rec.Revoked, toNullUnix(rec.RevokedAt), toUnix(rec.CreatedAt), toUnix(rec.UpdatedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// IsRevoked is fail-closed: a fingerprint with no row is reported as revoked,
// so tokens whose records were purged can never be used again.
func (r *refreshTokensRepo) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT revoked FROM refresh_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return revoked, nil
}

func (r *refreshTokensRepo) OwnerID(ctx context.Context, tokenHash string) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&userID)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return userID, nil
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	// Matching zero rows is fine: revocation is idempotent and unknown tokens
	// are already unusable.
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens
		    SET revoked = 1, revoked_at = ?, updated_at = ?
		  WHERE token_hash = ? AND revoked = 0`,
		toUnix(at), toUnix(at), tokenHash,
	)
	return err
}

func (r *refreshTokensRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, toUnix(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) ActiveForUser(ctx context.Context, userID int64, now time.Time) ([]domain.RefreshTokenRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, token_hash, ip_address, expires_at, revoked, revoked_at, created_at, updated_at
		   FROM refresh_tokens
		  WHERE user_id = ? AND revoked = 0 AND expires_at >= ?
		  ORDER BY created_at DESC`,
		userID, toUnix(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshTokenRecord
	for rows.Next() {
		var (
			rec       domain.RefreshTokenRecord
			expires   int64
			revokedAt sql.NullInt64
			created   int64
			updated   int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.IPAddress,
			&expires, &rec.Revoked, &revokedAt, &created, &updated); err != nil {
			return nil, err
		}
		rec.ExpiresAt = fromUnix(expires)
		rec.RevokedAt = fromNullUnix(revokedAt)
		rec.CreatedAt = fromUnix(created)
		rec.UpdatedAt = fromUnix(updated)
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ store.RefreshTokens = (*refreshTokensRepo)(nil)
