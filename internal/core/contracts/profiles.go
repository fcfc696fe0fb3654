package contracts

import (
	"context"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// ProfileSource resolves a user id to its public profile. Implementations
// may be the store itself or a cache layered in front of it.
type ProfileSource interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}
