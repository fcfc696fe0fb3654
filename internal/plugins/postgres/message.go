package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

type MessageRepo struct {
	db *sql.DB
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	if msg.ChatID == uuid.Nil {
		return domain.ErrInvalidRoomID
	}
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO messages (
			id, chat_id, sender_id, text, image, is_deleted, created_at
		) VALUES ($1, $2, $3, $4, $5, false, $6)
	`,
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.Text,
		msg.Image,
		msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, chat_id, sender_id, text, image, is_deleted, created_at
		FROM messages
		WHERE id = $1
	`, id)
	var m domain.Message
	if err := scanMessage(row, &m); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByChat returns the full ordered history; deleted records stay in the
// sequence so client caches keep stable identities and positions.
func (r *MessageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	if chatID == uuid.Nil {
		return nil, domain.ErrInvalidRoomID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, chat_id, sender_id, text, image, is_deleted, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.SenderID,
			&m.Text,
			&m.Image,
			&m.IsDeleted,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) MarkDeleted(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		UPDATE messages
		SET is_deleted = true
		WHERE id = $1
		RETURNING id, chat_id, sender_id, text, image, is_deleted, created_at
	`, id)
	var m domain.Message
	if err := scanMessage(row, &m); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

func scanMessage(row *sql.Row, m *domain.Message) error {
	return row.Scan(
		&m.ID,
		&m.ChatID,
		&m.SenderID,
		&m.Text,
		&m.Image,
		&m.IsDeleted,
		&m.CreatedAt,
	)
}
