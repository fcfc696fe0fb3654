package contracts

import "context"

// Client is the minimal handle the registry and router need to talk to one
// live connection. The gateway owns the real connection; everyone else holds
// this reference.
type Client interface {
	ConnectionID() string
	UserID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
