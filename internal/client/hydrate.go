package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// Hydrator resolves sender ids to profiles for rendering. Resolved profiles
// are cached; a slow or failing lookup yields a placeholder, cached as well,
// so message display never blocks on the identity collaborator and a bad
// sender costs at most one lookup per session.
type Hydrator struct {
	mu      sync.Mutex
	source  contracts.ProfileSource
	cache   map[string]*domain.Profile
	timeout time.Duration
	log     *slog.Logger
}

func NewHydrator(log *slog.Logger, source contracts.ProfileSource, timeout time.Duration) *Hydrator {
	return &Hydrator{
		source:  source,
		cache:   make(map[string]*domain.Profile),
		timeout: timeout,
		log:     log,
	}
}

func (h *Hydrator) Resolve(ctx context.Context, userID string) *domain.Profile {
	h.mu.Lock()
	if p, ok := h.cache[userID]; ok {
		h.mu.Unlock()
		return p
	}
	h.mu.Unlock()

	lookupCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	p, err := h.source.GetProfile(lookupCtx, userID)
	if err != nil {
		// Cache the placeholder like a hit: one unresolvable sender must not
		// pay the lookup timeout again for every one of its messages.
		h.log.Debug("hydrator - lookup failed, caching placeholder", "user_id", userID, "err", err)
		p = &domain.Profile{ID: userID}
	}

	h.mu.Lock()
	h.cache[userID] = p
	h.mu.Unlock()
	return p
}

// Hydrate fills msg.Sender when absent.
func (h *Hydrator) Hydrate(ctx context.Context, msg *domain.Message) {
	if msg.Sender != nil {
		return
	}
	msg.Sender = h.Resolve(ctx, msg.SenderID)
}
