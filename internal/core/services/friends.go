package services

import (
	"context"
	"log/slog"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// FriendService consumes the friend-relationship store for the one live
// concern the core owns: tearing a friendship down and notifying the other
// side. Request/accept bookkeeping stays external.
type FriendService struct {
	repo      domain.FriendRepository
	publisher contracts.Publisher
	tx        TxRunner
	log       *slog.Logger
}

func NewFriendService(log *slog.Logger, repo domain.FriendRepository, publisher contracts.Publisher, tx TxRunner) *FriendService {
	return &FriendService{
		repo:      repo,
		publisher: publisher,
		tx:        tx,
		log:       log,
	}
}

func (s *FriendService) IsFriend(ctx context.Context, userA, userB string) (bool, error) {
	return s.repo.IsFriend(ctx, userA, userB)
}

// Unfriend removes the relationship and pushes a one-directional notice to
// the removed friend; the initiator's client updates optimistically.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID string) error {
	ok, err := s.repo.IsFriend(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFriends
	}
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Remove(txCtx, userID, friendID)
	}); err != nil {
		s.log.ErrorContext(ctx, "friends - unfriend - remove failed", "user_id", userID, "friend_id", friendID, "err", err)
		return err
	}
	s.log.InfoContext(ctx, "friends - unfriend - removed", "user_id", userID, "friend_id", friendID)
	s.publisher.Publish(ctx, contracts.Unfriended{UserID: userID, FriendID: friendID})
	return nil
}
