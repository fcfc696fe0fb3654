package contracts

import (
	"context"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// Event is the closed set of outbound pushes the router resolves to live
// connections. Services publish events only after the durable write for
// them has committed.
type Event interface {
	Name() string
}

type NewDirectMessage struct {
	ToUserID string
	Message  *domain.Message
}

type DirectMessageUpdated struct {
	ToUserID string
	Message  *domain.Message
}

type NewGroupMessage struct {
	RoomID  uuid.UUID
	Message *domain.Message
}

type GroupMessageDeleted struct {
	RoomID    uuid.UUID
	MessageID uuid.UUID
}

type GroupMessageUpdated struct {
	RoomID  uuid.UUID
	Message *domain.Message
}

type Unfriended struct {
	UserID   string
	FriendID string
}

type MembershipChanged struct {
	RoomID  uuid.UUID
	Members []string
}

func (NewDirectMessage) Name() string     { return domain.EventNewMessage }
func (DirectMessageUpdated) Name() string { return domain.EventMessageUpdated }
func (NewGroupMessage) Name() string      { return domain.EventNewGroupMessage }
func (GroupMessageDeleted) Name() string  { return domain.EventGroupMessageDeleted }
func (GroupMessageUpdated) Name() string  { return domain.EventGroupMessageUpdated }
func (Unfriended) Name() string           { return domain.EventUnfriended }
func (MembershipChanged) Name() string    { return domain.EventMembersChanged }

// Publisher pushes an event to its resolved connection set, at most once,
// best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}
