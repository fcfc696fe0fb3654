package contracts

import (
	"context"

	"github.com/google/uuid"
)

// Rooms maps each group chat to the connections that should receive its live
// events. Durable membership lives in the store; the transient joined set is
// always a subset of it.
type Rooms interface {
	// Join subscribes c to the room's live events. The connection's user must
	// be a durable member; domain.ErrNotMember otherwise.
	Join(ctx context.Context, c Client, roomID uuid.UUID) error
	Leave(c Client, roomID uuid.UUID)
	// LeaveAll drops every transient join held by c. O(joined rooms).
	LeaveAll(c Client)
	AddDurableMember(ctx context.Context, roomID uuid.UUID, userID string) error
	// RemoveDurableMember also evicts any transient join that user holds in
	// the room, so a removed member never appears in a later fanout.
	RemoveDurableMember(ctx context.Context, roomID uuid.UUID, userID string) error
	MembersOf(ctx context.Context, roomID uuid.UUID) ([]string, error)
	// FanoutTargets returns a snapshot of the currently joined connections.
	FanoutTargets(roomID uuid.UUID) []Client
}
