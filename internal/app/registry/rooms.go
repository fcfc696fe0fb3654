package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// RoomManager keeps the transient joined set per room: the connections that
// have opened the room and should receive its live events. Durable membership
// stays in the store; a join is only granted to durable members, and a
// durable removal evicts the transient join immediately.
type RoomManager struct {
	mu sync.RWMutex
	// joined: roomID → connID → client
	joined map[uuid.UUID]map[string]contracts.Client
	// byConn is the reverse index so LeaveAll is O(joined rooms).
	byConn map[string]map[uuid.UUID]struct{}

	repo domain.RoomRepository
	log  *slog.Logger
}

var _ contracts.Rooms = (*RoomManager)(nil)

func NewRoomManager(log *slog.Logger, repo domain.RoomRepository) *RoomManager {
	return &RoomManager{
		joined: make(map[uuid.UUID]map[string]contracts.Client),
		byConn: make(map[string]map[uuid.UUID]struct{}),
		repo:   repo,
		log:    log.With(slog.String("component", "rooms")),
	}
}

func (r *RoomManager) Join(ctx context.Context, c contracts.Client, roomID uuid.UUID) error {
	// Membership check happens before taking the lock; the store call may block.
	ok, err := r.repo.IsMember(ctx, roomID, c.UserID())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotMember
	}

	connID := c.ConnectionID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joined[roomID] == nil {
		r.joined[roomID] = make(map[string]contracts.Client)
	}
	r.joined[roomID][connID] = c
	if r.byConn[connID] == nil {
		r.byConn[connID] = make(map[uuid.UUID]struct{})
	}
	r.byConn[connID][roomID] = struct{}{}
	r.log.Info("rooms - join", "room_id", roomID.String(), "user_id", c.UserID(), "conn_id", connID)
	return nil
}

func (r *RoomManager) Leave(c contracts.Client, roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(c.ConnectionID(), roomID)
	r.log.Info("rooms - leave", "room_id", roomID.String(), "conn_id", c.ConnectionID())
}

// LeaveAll removes the connection from every room it had joined, in one
// critical section so no FanoutTargets call observes a partial leave.
func (r *RoomManager) LeaveAll(c contracts.Client) {
	connID := c.ConnectionID()
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID := range r.byConn[connID] {
		r.dropLocked(connID, roomID)
	}
	r.log.Info("rooms - leave all", "conn_id", connID)
}

func (r *RoomManager) AddDurableMember(ctx context.Context, roomID uuid.UUID, userID string) error {
	return r.repo.AddMember(ctx, roomID, userID)
}

func (r *RoomManager) RemoveDurableMember(ctx context.Context, roomID uuid.UUID, userID string) error {
	if err := r.repo.RemoveMember(ctx, roomID, userID); err != nil {
		return err
	}
	// Evict the transient join too: the joined set must stay a subset of the
	// durable members, even though the user never explicitly left.
	r.mu.Lock()
	defer r.mu.Unlock()
	for connID, c := range r.joined[roomID] {
		if c.UserID() == userID {
			r.dropLocked(connID, roomID)
		}
	}
	return nil
}

func (r *RoomManager) MembersOf(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	return r.repo.Members(ctx, roomID)
}

func (r *RoomManager) FanoutTargets(roomID uuid.UUID) []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.joined[roomID])
}

// dropLocked removes one (connection, room) edge from both indexes.
func (r *RoomManager) dropLocked(connID string, roomID uuid.UUID) {
	delete(r.joined[roomID], connID)
	if len(r.joined[roomID]) == 0 {
		delete(r.joined, roomID)
	}
	delete(r.byConn[connID], roomID)
	if len(r.byConn[connID]) == 0 {
		delete(r.byConn, connID)
	}
}
