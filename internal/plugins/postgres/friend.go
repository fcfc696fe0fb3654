package postgres

import (
	"context"
	"database/sql"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

type FriendRepo struct {
	db *sql.DB
}

var _ domain.FriendRepository = (*FriendRepo)(nil)

func NewFriendRepo(db *sql.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// Friendships are stored once per pair; the predicate checks both orders.
func (r *FriendRepo) IsFriend(ctx context.Context, userA, userB string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	var exists bool
	err := exec.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE (user_a = $1 AND user_b = $2)
			   OR (user_a = $2 AND user_b = $1)
		)
	`, userA, userB).Scan(&exists)
	return exists, err
}

func (r *FriendRepo) Remove(ctx context.Context, userA, userB string) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		DELETE FROM friends
		WHERE (user_a = $1 AND user_b = $2)
		   OR (user_a = $2 AND user_b = $1)
	`, userA, userB)
	return err
}
