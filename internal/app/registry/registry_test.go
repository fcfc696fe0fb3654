package registry_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

// fakeClient records every frame pushed to it.
type fakeClient struct {
	connID string
	userID string

	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	failSend bool
}

func newFakeClient(connID, userID string) *fakeClient {
	return &fakeClient{connID: connID, userID: userID}
}

func (c *fakeClient) ConnectionID() string { return c.connID }
func (c *fakeClient) UserID() string       { return c.userID }

func (c *fakeClient) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return context.Canceled
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeClient) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// lastEvent decodes the most recent frame pushed to the client.
func (c *fakeClient) lastEvent() (string, json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return "", nil, false
	}
	var frame domain.Frame
	if err := json.Unmarshal(c.frames[len(c.frames)-1], &frame); err != nil {
		return "", nil, false
	}
	return frame.Event, frame.Data, true
}

func (c *fakeClient) lastOnlineSet() ([]string, bool) {
	event, data, ok := c.lastEvent()
	if !ok || event != domain.EventOnlineUsers {
		return nil, false
	}
	var users []string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, false
	}
	return users, true
}
