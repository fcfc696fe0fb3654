package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// PresenceRegistry tracks the single active connection per user. It is the
// only writer of its map; every mutation broadcasts the full online set to
// all registered connections, mirroring the userSocketMap + getOnlineUsers
// behavior clients expect.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[string]contracts.Client
	log    *slog.Logger
}

var _ contracts.Presence = (*PresenceRegistry)(nil)

func NewPresenceRegistry(log *slog.Logger) *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[string]contracts.Client),
		log:    log.With(slog.String("component", "presence")),
	}
}

func (p *PresenceRegistry) Register(ctx context.Context, c contracts.Client) {
	userID := c.UserID()
	p.mu.Lock()
	prev, had := p.byUser[userID]
	p.byUser[userID] = c
	targets, online := p.snapshotLocked()
	p.mu.Unlock()

	// Last register wins: the superseded tab is transport-alive but no longer
	// presence-visible, so close it rather than leave it half-dead.
	if had && prev.ConnectionID() != c.ConnectionID() {
		p.log.Info("presence - register - replacing stale connection", "user_id", userID, "old_conn", prev.ConnectionID())
		prev.Close()
	}
	p.log.Info("presence - register - user online", "user_id", userID, "conn_id", c.ConnectionID(), "online", len(online))
	p.broadcast(ctx, targets, online)
}

func (p *PresenceRegistry) Unregister(ctx context.Context, c contracts.Client) {
	userID := c.UserID()
	p.mu.Lock()
	stored, ok := p.byUser[userID]
	if !ok || stored.ConnectionID() != c.ConnectionID() {
		// Unknown user, or a stale disconnect racing a fresh reconnect that
		// already overwrote the entry. Either way the registry stays as is.
		p.mu.Unlock()
		return
	}
	delete(p.byUser, userID)
	targets, online := p.snapshotLocked()
	p.mu.Unlock()

	p.log.Info("presence - unregister - user offline", "user_id", userID, "conn_id", c.ConnectionID(), "online", len(online))
	p.broadcast(ctx, targets, online)
}

func (p *PresenceRegistry) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byUser[userID]
	return ok
}

func (p *PresenceRegistry) ConnectionFor(userID string) (contracts.Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.byUser[userID]
	return c, ok
}

func (p *PresenceRegistry) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, online := p.snapshotLocked()
	return online
}

// snapshotLocked copies the current clients and the sorted online id set.
// Callers hold at least the read lock; sends happen outside it.
func (p *PresenceRegistry) snapshotLocked() ([]contracts.Client, []string) {
	targets := lo.Values(p.byUser)
	online := lo.Keys(p.byUser)
	sort.Strings(online)
	return targets, online
}

func (p *PresenceRegistry) broadcast(ctx context.Context, targets []contracts.Client, online []string) {
	frame, err := domain.NewFrame(domain.EventOnlineUsers, online)
	if err != nil {
		p.log.ErrorContext(ctx, "presence - broadcast - marshal failed", "err", err)
		return
	}
	for _, c := range targets {
		if err := c.Send(ctx, frame); err != nil {
			p.log.WarnContext(ctx, "presence - broadcast - send dropped", "user_id", c.UserID(), "err", err)
		}
	}
}
