package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dcatracker/internal/domain"
	"dcatracker/internal/infra"
	"dcatracker/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Ensure returns the user with u.ID, inserting u first when no row exists.
//
// When a concurrent request commits the same user between this statement's
// snapshot and its insert, the insert is skipped and the select sees nothing;
// the row is then read back with a fresh statement.
func (r *UserRepositoryPG) Ensure(ctx context.Context, u domain.User) (*domain.User, bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QEnsureUser, u.ID, u.Email, u.Name, u.Avatar)
	var out domain.User
	var created bool
	err := row.Scan(&out.ID, &out.Email, &out.Name, &out.Avatar, &out.CreatedAt, &created)
	if infra.IsNoRows(err) {
		existing, err := r.GetByID(ctx, u.ID)
		if err != nil {
			return nil, false, fmt.Errorf("ensure user: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ensure user: %w", err)
	}
	return &out, created, nil
}

// GetByID fetches a user by provider id.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Avatar, &u.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
