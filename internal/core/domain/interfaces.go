package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the identity-lookup collaborator.
type UserRepository interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
}

// MessageRepository is the durable message store. Records are never
// physically removed; MarkDeleted flips the soft flag and returns the
// updated record.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]Message, error)
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	MarkDeleted(ctx context.Context, id uuid.UUID) (*Message, error)
}

// RoomRepository owns the durable side of group chats.
type RoomRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Room, error)
	Create(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	Members(ctx context.Context, id uuid.UUID) ([]string, error)
	IsMember(ctx context.Context, id uuid.UUID, userID string) (bool, error)
	AddMember(ctx context.Context, id uuid.UUID, userID string) error
	RemoveMember(ctx context.Context, id uuid.UUID, userID string) error
	SetAdmin(ctx context.Context, id uuid.UUID, userID string) error
}

// FriendRepository exposes the friendship predicate gating direct delivery.
type FriendRepository interface {
	IsFriend(ctx context.Context, userA, userB string) (bool, error)
	Remove(ctx context.Context, userA, userB string) error
}
