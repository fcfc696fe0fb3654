package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// RuntimeClient is the server-side handle for one live session. The gateway
// owns it; the presence registry and room manager only hold the reference.
type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	connID string
	userID string
	out    chan []byte
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, userID string) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		connID: uuid.NewString(),
		userID: userID,
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) ConnectionID() string { return c.connID }
func (c *RuntimeClient) UserID() string       { return c.userID }

func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return errors.New("client closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is idempotent. The out channel is never closed: Send may race Close
// and a cancelled context already stops both sides.
func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
