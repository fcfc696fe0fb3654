package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

var tracer = otel.Tracer("message-router")

// Router resolves an outbound event to its live target connections and
// pushes it. Delivery is at-most-once best effort: absent targets are not
// errors and failed sends are logged and dropped; a disconnected client
// reconciles by refetching on its next room open.
type Router struct {
	presence contracts.Presence
	rooms    contracts.Rooms
	log      *slog.Logger

	// mu serializes publishes so events for one room reach each target in
	// publish order.
	mu sync.Mutex
}

var _ contracts.Publisher = (*Router)(nil)

func New(log *slog.Logger, presence contracts.Presence, rooms contracts.Rooms) *Router {
	return &Router{
		presence: presence,
		rooms:    rooms,
		log:      log.With(slog.String("component", "router")),
	}
}

// Publish pushes ev to its resolved targets. Callers must only publish after
// the durable write for the event has committed.
func (r *Router) Publish(ctx context.Context, ev contracts.Event) {
	ctx, span := tracer.Start(ctx, "Router.Publish", trace.WithAttributes(
		attribute.String("event", ev.Name()),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case contracts.NewDirectMessage:
		r.toUser(ctx, e.ToUserID, domain.EventNewMessage, domain.ToWire(e.Message))
	case contracts.DirectMessageUpdated:
		r.toUser(ctx, e.ToUserID, domain.EventMessageUpdated, domain.ToWire(e.Message))
	case contracts.NewGroupMessage:
		r.toRoom(ctx, e.RoomID, domain.EventNewGroupMessage, domain.ToWire(e.Message))
	case contracts.GroupMessageDeleted:
		r.toRoom(ctx, e.RoomID, domain.EventGroupMessageDeleted, e.MessageID.String())
	case contracts.GroupMessageUpdated:
		r.toRoom(ctx, e.RoomID, domain.EventGroupMessageUpdated, domain.ToWire(e.Message))
	case contracts.Unfriended:
		r.toUser(ctx, e.FriendID, domain.EventUnfriended, domain.UnfriendedPayload{
			UserID:   e.UserID,
			FriendID: e.FriendID,
		})
	case contracts.MembershipChanged:
		r.toRoom(ctx, e.RoomID, domain.EventMembersChanged, domain.MembersChangedPayload{
			RoomID:  e.RoomID.String(),
			Members: e.Members,
		})
	default:
		r.log.ErrorContext(ctx, "router - publish - unknown event type", "event", ev.Name())
	}
}

// toUser targets the single live connection of one user. Offline means no
// push: the client pulls on its next open.
func (r *Router) toUser(ctx context.Context, userID, event string, payload any) {
	c, ok := r.presence.ConnectionFor(userID)
	if !ok {
		r.log.DebugContext(ctx, "router - target offline, skipping push", "event", event, "user_id", userID)
		return
	}
	frame, err := domain.NewFrame(event, payload)
	if err != nil {
		r.log.ErrorContext(ctx, "router - marshal failed", "event", event, "err", err)
		return
	}
	if err := c.Send(ctx, frame); err != nil {
		r.log.WarnContext(ctx, "router - push dropped", "event", event, "user_id", userID, "err", err)
	}
}

// toRoom fans out to the room's transient joined connections only. Durable
// members who have not joined rely on pull-on-open, which keeps a push from
// ever racing ahead of their initial fetch.
func (r *Router) toRoom(ctx context.Context, roomID uuid.UUID, event string, payload any) {
	targets := r.rooms.FanoutTargets(roomID)
	if len(targets) == 0 {
		r.log.DebugContext(ctx, "router - no fanout targets", "event", event, "room_id", roomID.String())
		return
	}
	frame, err := domain.NewFrame(event, payload)
	if err != nil {
		r.log.ErrorContext(ctx, "router - marshal failed", "event", event, "err", err)
		return
	}
	for _, c := range targets {
		if err := c.Send(ctx, frame); err != nil {
			r.log.WarnContext(ctx, "router - push dropped", "event", event, "room_id", roomID.String(), "user_id", c.UserID(), "err", err)
		}
	}
}
