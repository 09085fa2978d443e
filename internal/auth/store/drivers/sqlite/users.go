package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rentfuse/rentfuse/internal/auth/domain"
	"github.com/rentfuse/rentfuse/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (domain.Principal, error) {
	var p domain.Principal
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, role FROM users WHERE id = ?`, id,
	).Scan(&p.ID, &p.Email, &p.Role)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var (
		u       domain.User
		created int64
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, role, password_hash, created_at, updated_at
		   FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.Role, &u.PasswordHash, &created, &updated)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = fromUnix(created)
	u.UpdatedAt = fromUnix(updated)
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) (int64, error) {
	if !u.Role.Valid() {
		return 0, fmt.Errorf("sqlite: unknown role %q", u.Role)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Email, string(u.Role), u.PasswordHash, toUnix(u.CreatedAt), toUnix(u.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, store.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("sqlite: unknown role %q", role)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		string(role), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

var _ store.Users = (*usersRepo)(nil)
