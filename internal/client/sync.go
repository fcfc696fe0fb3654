package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// Fetcher is the pull side of delivery for the client: the full ordered
// history of one chat, called on every chat open.
type Fetcher interface {
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error)
}

// Syncer reconciles the locally cached view against server pushes. All
// mutation — push, fetch result, user action — goes through one serialized
// apply step, and a fetch result is applied only while its chat is still the
// selected one, so a late response from a previous selection is discarded.
type Syncer struct {
	mu       sync.Mutex
	fetcher  Fetcher
	hydrator *Hydrator
	log      *slog.Logger

	selected    uuid.UUID
	hasSelected bool
	loading     bool
	cache       *Cache

	online  []string
	roster  []string
	friends map[string]struct{}
}

func NewSyncer(log *slog.Logger, fetcher Fetcher, hydrator *Hydrator) *Syncer {
	return &Syncer{
		fetcher:  fetcher,
		hydrator: hydrator,
		log:      log,
		cache:    NewCache(),
		friends:  make(map[string]struct{}),
	}
}

// Select switches the view to chatID: the cache is cleared, the previous
// fetch loses interest (its result no longer matches the selection), and a
// fresh full fetch starts.
func (s *Syncer) Select(ctx context.Context, chatID uuid.UUID) {
	s.mu.Lock()
	s.selected = chatID
	s.hasSelected = true
	s.loading = true
	s.cache.Reset()
	s.mu.Unlock()

	go func() {
		msgs, err := s.fetcher.ListMessages(ctx, chatID)
		if err != nil {
			s.log.Warn("syncer - initial fetch failed", "chat_id", chatID.String(), "err", err)
			s.finishLoad(chatID)
			return
		}
		s.applyFetch(ctx, chatID, msgs)
	}()
}

// applyFetch applies a fetch result tagged with the chat it was issued for.
// The tag is compared against the current selection before anything touches
// the cache; a stale result is dropped whole.
func (s *Syncer) applyFetch(ctx context.Context, chatID uuid.UUID, msgs []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSelected || s.selected != chatID {
		s.log.Debug("syncer - discarding stale fetch", "chat_id", chatID.String())
		return
	}
	for i := range msgs {
		s.hydrator.Hydrate(ctx, &msgs[i])
		s.cache.Apply(msgs[i])
	}
	s.loading = false
}

func (s *Syncer) finishLoad(chatID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasSelected && s.selected == chatID {
		s.loading = false
	}
}

// OnFrame applies one server push. Events for chats other than the selected
// one never touch the selected cache.
func (s *Syncer) OnFrame(ctx context.Context, data []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.log.Warn("syncer - malformed frame", "err", err)
		return
	}

	switch frame.Event {
	case domain.EventNewMessage, domain.EventNewGroupMessage,
		domain.EventMessageUpdated, domain.EventGroupMessageUpdated:
		s.applyMessage(ctx, frame.Data)
	case domain.EventGroupMessageDeleted:
		s.applyDeleted(frame.Data)
	case domain.EventOnlineUsers:
		s.applyOnline(frame.Data)
	case domain.EventMembersChanged:
		s.applyRoster(frame.Data)
	case domain.EventUnfriended:
		s.applyUnfriended(frame.Data)
	default:
		s.log.Debug("syncer - ignoring event", "event", frame.Event)
	}
}

func (s *Syncer) applyMessage(ctx context.Context, data json.RawMessage) {
	var w domain.WireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		s.log.Warn("syncer - bad message payload", "err", err)
		return
	}
	msg, err := domain.FromWire(w)
	if err != nil {
		s.log.Warn("syncer - bad message payload", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSelected || msg.ChatID != s.selected {
		// Not the open chat. Unread indicators would hook in here; the
		// selected cache stays untouched either way.
		return
	}
	s.hydrator.Hydrate(ctx, msg)
	s.cache.Apply(*msg)
}

func (s *Syncer) applyDeleted(data json.RawMessage) {
	var idStr string
	if err := json.Unmarshal(data, &idStr); err != nil {
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.MarkDeleted(id)
}

func (s *Syncer) applyOnline(data json.RawMessage) {
	var users []string
	if err := json.Unmarshal(data, &users); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = users
}

func (s *Syncer) applyRoster(data json.RawMessage) {
	var p domain.MembersChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasSelected && roomID == s.selected {
		s.roster = p.Members
	}
}

func (s *Syncer) applyUnfriended(data json.RawMessage) {
	var p domain.UnfriendedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, p.UserID)
}

// SetFriends seeds the local friend set; Unfriend applies the caller's own
// optimistic removal through the same path the push takes.
func (s *Syncer) SetFriends(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.friends[id] = struct{}{}
	}
}

func (s *Syncer) Unfriend(friendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, friendID)
}

func (s *Syncer) IsFriend(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friends[id]
	return ok
}

func (s *Syncer) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Messages()
}

func (s *Syncer) RenderText(id uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.RenderText(id)
}

func (s *Syncer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Syncer) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.online))
	copy(out, s.online)
	return out
}

func (s *Syncer) Roster() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.roster))
	copy(out, s.roster)
	return out
}
