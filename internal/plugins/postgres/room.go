package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

type RoomRepo struct {
	db *sql.DB
}

var _ domain.RoomRepository = (*RoomRepo)(nil)

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidRoomID
	}
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, name, admin_id, created_at
		FROM rooms
		WHERE id = $1
	`, id)
	var room domain.Room
	if err := row.Scan(&room.ID, &room.Name, &room.AdminID, &room.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	members, err := r.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Members = members
	return &room, nil
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO rooms (id, name, admin_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, room.ID, room.Name, room.AdminID, room.CreatedAt)
	if err != nil {
		return err
	}
	for _, m := range room.Members {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO room_members (room_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, room.ID, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM room_members WHERE room_id = $1`, id); err != nil {
		return err
	}
	result, err := exec.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepo) Members(ctx context.Context, id uuid.UUID) ([]string, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT user_id
		FROM room_members
		WHERE room_id = $1
		ORDER BY user_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *RoomRepo) IsMember(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	var exists bool
	err := exec.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2
		)
	`, id, userID).Scan(&exists)
	return exists, err
}

func (r *RoomRepo) AddMember(ctx context.Context, id uuid.UUID, userID string) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, id, userID)
	return err
}

func (r *RoomRepo) RemoveMember(ctx context.Context, id uuid.UUID, userID string) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		DELETE FROM room_members WHERE room_id = $1 AND user_id = $2
	`, id, userID)
	return err
}

func (r *RoomRepo) SetAdmin(ctx context.Context, id uuid.UUID, userID string) error {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE rooms SET admin_id = $2 WHERE id = $1
	`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
