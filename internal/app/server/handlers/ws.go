package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FarahBaraket-03/ChatTily/internal/app/server/ws"
	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
	"github.com/FarahBaraket-03/ChatTily/pkg/middleware"
)

// WSHandler is the connection gateway. Each connection walks
// connecting → authenticated → active → closed: identity comes from the JWT
// validated by the auth middleware (fail closed), registration flips it
// active, and the close path leaves all rooms before the final presence
// broadcast so a departed user never lingers in a fanout.
type WSHandler struct {
	presence contracts.Presence
	rooms    contracts.Rooms
	messages *services.MessageService
	friends  *services.FriendService
	validate *validator.Validate
}

func NewWSHandler(
	presence contracts.Presence,
	rooms contracts.Rooms,
	messages *services.MessageService,
	friends *services.FriendService,
) *WSHandler {
	return &WSHandler{
		presence: presence,
		rooms:    rooms,
		messages: messages,
		friends:  friends,
		validate: validator.New(),
	}
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	if log == nil {
		log = slog.Default()
	}
	span := trace.SpanFromContext(r.Context())

	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		log.ErrorContext(r.Context(), "ws handler - refused: no resolved identity")
		http.Error(w, "Unauthorized: User ID missing", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "err", err)
		cancel()
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		// Echo the close frame so the peer's close handshake completes,
		// mirroring what the default handler does.
		msg := websocket.FormatCloseMessage(code, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		cancel()
		return nil
	})
	socket := ws.NewWebSocket(ctx, log, conn)
	client := ws.NewClient(ctx, socket, userID)

	// Active: presence first, broadcast fires inside Register.
	h.presence.Register(ctx, client)
	log.InfoContext(r.Context(), "ws handler - connection active", "user_id", userID, "conn_id", client.ConnectionID())

	defer func() {
		// Strict close ordering: all rooms first, then the unregister
		// broadcast, so no fanout observes a departed user. The broadcast
		// runs on the detached session context; ctx is already cancelled on
		// a clean close and would race the sends to the remaining clients.
		h.rooms.LeaveAll(client)
		h.presence.Unregister(sessionCtx, client)
		client.Close()
		cancel()
		log.InfoContext(sessionCtx, "ws handler - connection closed", "user_id", userID, "conn_id", client.ConnectionID())
	}()

	socket.ReadLoop(func(data []byte) {
		h.dispatch(ctx, log, client, data)
	})
}

// dispatch routes one inbound frame. Each handler validates shape and
// authorization before any state mutation; rejections go back to the sender
// only.
func (h *WSHandler) dispatch(ctx context.Context, log *slog.Logger, client contracts.Client, data []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn("ws handler - malformed frame", "user_id", client.UserID(), "err", err)
		h.sendError(ctx, client, "bad_request", "malformed frame")
		return
	}

	var err error
	switch frame.Event {
	case domain.EventJoinGroupChat:
		err = h.handleJoin(ctx, client, frame.Data)
	case domain.EventLeaveGroupChat:
		err = h.handleLeave(ctx, client, frame.Data)
	case domain.EventSendGroupMessage:
		err = h.handleSendGroup(ctx, client, frame.Data)
	case domain.EventSendMessage:
		err = h.handleSendDirect(ctx, client, frame.Data)
	case domain.EventUnfriend:
		err = h.handleUnfriend(ctx, client, frame.Data)
	default:
		h.sendError(ctx, client, "bad_request", "unknown event: "+frame.Event)
		return
	}
	if err != nil {
		log.WarnContext(ctx, "ws handler - event rejected", "event", frame.Event, "user_id", client.UserID(), "err", err)
		h.sendError(ctx, client, errorCode(err), err.Error())
	}
}

func (h *WSHandler) handleJoin(ctx context.Context, client contracts.Client, data json.RawMessage) error {
	var p domain.JoinRoomPayload
	if err := h.decode(data, &p); err != nil {
		return err
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return domain.ErrInvalidRoomID
	}
	return h.rooms.Join(ctx, client, roomID)
}

func (h *WSHandler) handleLeave(ctx context.Context, client contracts.Client, data json.RawMessage) error {
	var p domain.JoinRoomPayload
	if err := h.decode(data, &p); err != nil {
		return err
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return domain.ErrInvalidRoomID
	}
	h.rooms.Leave(client, roomID)
	return nil
}

func (h *WSHandler) handleSendGroup(ctx context.Context, client contracts.Client, data json.RawMessage) error {
	var p domain.SendGroupMessagePayload
	if err := h.decode(data, &p); err != nil {
		return err
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return domain.ErrInvalidRoomID
	}
	_, err = h.messages.SendGroupMessage(ctx, client.UserID(), roomID, p.Text, p.Image)
	return err
}

func (h *WSHandler) handleSendDirect(ctx context.Context, client contracts.Client, data json.RawMessage) error {
	var p domain.SendMessagePayload
	if err := h.decode(data, &p); err != nil {
		return err
	}
	chatID, err := uuid.Parse(p.ChatID)
	if err != nil {
		return domain.ErrInvalidRoomID
	}
	_, err = h.messages.SendDirectMessage(ctx, chatID, client.UserID(), p.ToID, p.Text, p.Image)
	return err
}

func (h *WSHandler) handleUnfriend(ctx context.Context, client contracts.Client, data json.RawMessage) error {
	var p domain.UnfriendPayload
	if err := h.decode(data, &p); err != nil {
		return err
	}
	return h.friends.Unfriend(ctx, client.UserID(), p.FriendID)
}

func (h *WSHandler) decode(data json.RawMessage, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errors.New("malformed payload")
	}
	return h.validate.Struct(out)
}

func (h *WSHandler) sendError(ctx context.Context, client contracts.Client, code, msg string) {
	frame, err := domain.NewFrame(domain.EventError, domain.ErrorPayload{Code: code, Message: msg})
	if err != nil {
		return
	}
	_ = client.Send(ctx, frame)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotMember):
		return "not_member"
	case errors.Is(err, domain.ErrNotFriends):
		return "not_friends"
	case errors.Is(err, domain.ErrNotAllowed):
		return "not_allowed"
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidRoomID):
		return "bad_request"
	default:
		return "internal"
	}
}
