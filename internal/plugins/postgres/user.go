package postgres

import (
	"context"
	"database/sql"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

type UserRepo struct {
	db *sql.DB
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, full_name, profile_pic
		FROM users
		WHERE id = $1
	`, id)
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.ProfilePic); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}
