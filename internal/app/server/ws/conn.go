package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	*websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

func NewWebSocket(parent context.Context, log *slog.Logger, conn *websocket.Conn) *WebSocket {
	ctx, cancel := context.WithCancel(parent)
	return &WebSocket{Conn: conn, ctx: ctx, cancel: cancel, log: log}
}

func (w *WebSocket) WriteMessage(data []byte) error {
	w.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.Conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebSocket) ReadLoop(onMsg func([]byte)) {
	defer w.Close()

	// 512KB max frame, enough for base64 image references
	w.Conn.SetReadLimit(512 * 1024)

	for {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				w.log.Warn("ws - unexpected close", "err", err)
			}
			break
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}

func (w *WebSocket) Close() {
	w.cancel()
	_ = w.Conn.Close()
}
