package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// RoomService owns group lifecycle and durable membership changes. Every
// roster mutation goes through the room manager so the transient joined set
// stays consistent, then fans out the fresh roster to open clients.
type RoomService struct {
	repo      domain.RoomRepository
	manager   contracts.Rooms
	publisher contracts.Publisher
	tx        TxRunner
	log       *slog.Logger
}

func NewRoomService(
	log *slog.Logger,
	repo domain.RoomRepository,
	manager contracts.Rooms,
	publisher contracts.Publisher,
	tx TxRunner,
) *RoomService {
	return &RoomService{
		repo:      repo,
		manager:   manager,
		publisher: publisher,
		tx:        tx,
		log:       log,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, adminID, name string, members []string) (*domain.Room, error) {
	all := lo.Uniq(append(members, adminID))
	if len(all) < 2 {
		return nil, errors.New("a group chat must have at least 2 members")
	}
	room := &domain.Room{
		ID:        uuid.New(),
		Name:      name,
		AdminID:   adminID,
		Members:   all,
		CreatedAt: time.Now(),
	}
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, room)
	}); err != nil {
		s.log.ErrorContext(ctx, "rooms - create - persist failed", "admin_id", adminID, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "rooms - create - created", "room_id", room.ID.String(), "members", len(all))
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	return s.repo.Get(ctx, roomID)
}

// AddMember lets any current member grow the roster.
func (s *RoomService) AddMember(ctx context.Context, actorID string, roomID uuid.UUID, userID string) error {
	room, err := s.repo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsMember(actorID) {
		return domain.ErrNotMember
	}
	if room.IsMember(userID) {
		return domain.ErrNotAllowed
	}
	if err := s.manager.AddDurableMember(ctx, roomID, userID); err != nil {
		s.log.ErrorContext(ctx, "rooms - add member - persist failed", "room_id", roomID.String(), "user_id", userID, "err", err)
		return err
	}
	s.publishRoster(ctx, roomID)
	return nil
}

// RemoveMember is admin-gated; the manager evicts the transient join so the
// removed user drops out of the fanout immediately.
func (s *RoomService) RemoveMember(ctx context.Context, actorID string, roomID uuid.UUID, userID string) error {
	room, err := s.repo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.AdminID != actorID {
		return domain.ErrNotAllowed
	}
	if !room.IsMember(userID) {
		return domain.ErrNotMember
	}
	if err := s.manager.RemoveDurableMember(ctx, roomID, userID); err != nil {
		s.log.ErrorContext(ctx, "rooms - remove member - persist failed", "room_id", roomID.String(), "user_id", userID, "err", err)
		return err
	}
	s.publishRoster(ctx, roomID)
	return nil
}

// LeaveRoom removes the caller. The last member leaving deletes the room;
// an admin leaving hands the role to the first remaining member.
func (s *RoomService) LeaveRoom(ctx context.Context, userID string, roomID uuid.UUID) error {
	room, err := s.repo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsMember(userID) {
		return domain.ErrNotMember
	}
	if err := s.manager.RemoveDurableMember(ctx, roomID, userID); err != nil {
		s.log.ErrorContext(ctx, "rooms - leave - remove failed", "room_id", roomID.String(), "user_id", userID, "err", err)
		return err
	}
	remaining, err := s.repo.Members(ctx, roomID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := s.repo.Delete(ctx, roomID); err != nil {
			s.log.ErrorContext(ctx, "rooms - leave - delete empty room failed", "room_id", roomID.String(), "err", err)
			return err
		}
		s.log.InfoContext(ctx, "rooms - leave - room deleted", "room_id", roomID.String())
		return nil
	}
	if room.AdminID == userID {
		if err := s.repo.SetAdmin(ctx, roomID, remaining[0]); err != nil {
			s.log.ErrorContext(ctx, "rooms - leave - reassign admin failed", "room_id", roomID.String(), "err", err)
			return err
		}
	}
	s.publishRoster(ctx, roomID)
	return nil
}

// DeleteRoom is admin only and mirrors the original delete-group flow.
func (s *RoomService) DeleteRoom(ctx context.Context, actorID string, roomID uuid.UUID) error {
	room, err := s.repo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.AdminID != actorID {
		return domain.ErrNotAllowed
	}
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, roomID)
	}); err != nil {
		s.log.ErrorContext(ctx, "rooms - delete - failed", "room_id", roomID.String(), "err", err)
		return err
	}
	return nil
}

func (s *RoomService) publishRoster(ctx context.Context, roomID uuid.UUID) {
	members, err := s.repo.Members(ctx, roomID)
	if err != nil {
		s.log.ErrorContext(ctx, "rooms - roster fetch failed, skipping push", "room_id", roomID.String(), "err", err)
		return
	}
	s.publisher.Publish(ctx, contracts.MembershipChanged{RoomID: roomID, Members: members})
}
