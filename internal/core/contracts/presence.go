package contracts

import "context"

// Presence is the process-wide source of truth for who is online. At most
// one connection per user: a fresh Register replaces the previous handle.
type Presence interface {
	// Register records c as its user's active connection and broadcasts the
	// updated online set to every registered connection.
	Register(ctx context.Context, c Client)
	// Unregister removes the entry only if it still points at c, guarding
	// against a stale disconnect racing a reconnect. Unknown users are a no-op.
	Unregister(ctx context.Context, c Client)
	IsOnline(userID string) bool
	ConnectionFor(userID string) (Client, bool)
	OnlineUsers() []string
}
