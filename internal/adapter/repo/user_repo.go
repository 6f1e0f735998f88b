package repo

import (
	"context"
	"fmt"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/sqlinline"

	"github.com/jackc/pgx/v5"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// UpsertByGoogleSub inserts the profile on first login and refreshes the
// mutable fields afterwards.
func (r *UserRepositoryPG) UpsertByGoogleSub(ctx context.Context, user *domain.UserProfile) (*domain.UserProfile, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertGoogleUser,
		user.GoogleSub,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
	)
	return scanProfile(row)
}

// GetByID fetches a profile by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id)
	profile, err := scanProfile(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// List returns every profile, newest first.
func (r *UserRepositoryPG) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *profile)
	}
	return users, rows.Err()
}

// UpdateTier sets the subscription tier for the user.
func (r *UserRepositoryPG) UpdateTier(ctx context.Context, id string, tier domain.Tier) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateUserTier, id, string(tier))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the user row. Usage counters and media cascade in the schema.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteUser, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var u domain.UserProfile
	var tier, role string
	if err := row.Scan(&u.ID, &u.GoogleSub, &u.Email, &u.DisplayName, &u.PhotoURL, &tier, &role, &u.CreatedAt, &u.LastLoginAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Tier = domain.Tier(tier)
	u.Role = domain.UserRole(role)
	return &u, nil
}
