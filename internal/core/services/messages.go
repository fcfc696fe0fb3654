package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

var tracer = otel.Tracer("message-service")

// MessageService validates, persists and then publishes messages. Publishing
// strictly follows the committed write: a message that failed to persist is
// never announced to anyone but the sender.
type MessageService struct {
	repo      domain.MessageRepository
	rooms     domain.RoomRepository
	friends   domain.FriendRepository
	publisher contracts.Publisher
	tx        TxRunner
	log       *slog.Logger
}

func NewMessageService(
	log *slog.Logger,
	repo domain.MessageRepository,
	rooms domain.RoomRepository,
	friends domain.FriendRepository,
	publisher contracts.Publisher,
	tx TxRunner,
) *MessageService {
	return &MessageService{
		repo:      repo,
		rooms:     rooms,
		friends:   friends,
		publisher: publisher,
		tx:        tx,
		log:       log,
	}
}

func (s *MessageService) SendGroupMessage(
	ctx context.Context,
	senderID string,
	roomID uuid.UUID,
	text, image string,
) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.SendGroupMessage", trace.WithAttributes(
		attribute.String("room_id", roomID.String()),
		attribute.String("sender_id", senderID),
	))
	defer span.End()

	ok, err := s.rooms.IsMember(ctx, roomID, senderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		span.SetStatus(codes.Error, "not a member")
		return nil, domain.ErrNotMember
	}

	msg := domain.NewMessage(roomID, senderID, text, image)
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, msg)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "messages - send group - persist failed", "room_id", roomID.String(), "sender_id", senderID, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "messages - send group - persisted", "room_id", roomID.String(), "message_id", msg.ID.String())

	s.publisher.Publish(ctx, contracts.NewGroupMessage{RoomID: roomID, Message: msg})
	return msg, nil
}

func (s *MessageService) SendDirectMessage(
	ctx context.Context,
	chatID uuid.UUID,
	senderID, toID string,
	text, image string,
) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.SendDirectMessage", trace.WithAttributes(
		attribute.String("chat_id", chatID.String()),
		attribute.String("sender_id", senderID),
	))
	defer span.End()

	ok, err := s.friends.IsFriend(ctx, senderID, toID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		span.SetStatus(codes.Error, "not friends")
		return nil, domain.ErrNotFriends
	}

	msg := domain.NewMessage(chatID, senderID, text, image)
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, msg)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "messages - send direct - persist failed", "chat_id", chatID.String(), "sender_id", senderID, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "messages - send direct - persisted", "chat_id", chatID.String(), "message_id", msg.ID.String())

	// Offline recipient means no push; the record is durable and the client
	// pulls it on next open.
	s.publisher.Publish(ctx, contracts.NewDirectMessage{ToUserID: toID, Message: msg})
	return msg, nil
}

// DeleteGroupMessage soft-deletes: the record keeps its identity and position,
// and the updated record fans out so open clients patch in place.
func (s *MessageService) DeleteGroupMessage(
	ctx context.Context,
	actorID string,
	messageID uuid.UUID,
) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.DeleteGroupMessage", trace.WithAttributes(
		attribute.String("message_id", messageID.String()),
		attribute.String("actor_id", actorID),
	))
	defer span.End()

	msg, err := s.repo.Get(ctx, messageID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	room, err := s.rooms.Get(ctx, msg.ChatID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	// Own messages, or any message when acting as the room admin.
	if msg.SenderID != actorID && room.AdminID != actorID {
		span.SetStatus(codes.Error, "not allowed")
		return nil, domain.ErrNotAllowed
	}

	var updated *domain.Message
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		updated, txErr = s.repo.MarkDeleted(txCtx, messageID)
		return txErr
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "messages - delete group - mark deleted failed", "message_id", messageID.String(), "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "messages - delete group - soft deleted", "message_id", messageID.String(), "room_id", room.ID.String())

	s.publisher.Publish(ctx, contracts.GroupMessageUpdated{RoomID: room.ID, Message: updated})
	return updated, nil
}

// DeleteDirectMessage mirrors the group flow on the persisted flag; only the
// sender may delete their own direct message.
func (s *MessageService) DeleteDirectMessage(
	ctx context.Context,
	actorID, toID string,
	messageID uuid.UUID,
) (*domain.Message, error) {
	msg, err := s.repo.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, domain.ErrNotAllowed
	}
	var updated *domain.Message
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		updated, txErr = s.repo.MarkDeleted(txCtx, messageID)
		return txErr
	}); err != nil {
		s.log.ErrorContext(ctx, "messages - delete direct - mark deleted failed", "message_id", messageID.String(), "err", err)
		return nil, err
	}
	s.publisher.Publish(ctx, contracts.DirectMessageUpdated{ToUserID: toID, Message: updated})
	return updated, nil
}

// ListMessages is the pull side of delivery: clients call it on every chat
// open and reconcile pushes against the result.
func (s *MessageService) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	msgs, err := s.repo.ListByChat(ctx, chatID)
	if err != nil {
		s.log.ErrorContext(ctx, "messages - list - fetch failed", "chat_id", chatID.String(), "err", err)
		return nil, err
	}
	return msgs, nil
}
