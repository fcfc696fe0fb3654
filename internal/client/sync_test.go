package client_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/FarahBaraket-03/ChatTily/internal/client"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// gatedFetcher serves a canned history per chat and can hold a chat's
// response until released, to stage the slow-fetch race.
type gatedFetcher struct {
	mu      sync.Mutex
	history map[uuid.UUID][]domain.Message
	gates   map[uuid.UUID]chan struct{}
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		history: make(map[uuid.UUID][]domain.Message),
		gates:   make(map[uuid.UUID]chan struct{}),
	}
}

func (f *gatedFetcher) seed(chatID uuid.UUID, msgs ...domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[chatID] = msgs
}

func (f *gatedFetcher) hold(chatID uuid.UUID) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[chatID] = gate
	return gate
}

func (f *gatedFetcher) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	f.mu.Lock()
	gate := f.gates[chatID]
	msgs := f.history[chatID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return msgs, nil
}

type staticProfiles struct{}

func (staticProfiles) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return &domain.Profile{ID: id, FullName: "User " + id}, nil
}

func newSyncer(f *gatedFetcher) *client.Syncer {
	log := newTestLogger()
	h := client.NewHydrator(log, staticProfiles{}, time.Second)
	return client.NewSyncer(log, f, h)
}

func waitLoaded(t *testing.T, s *client.Syncer) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.Loading() }, time.Second, 5*time.Millisecond)
}

func TestSelectFetchesHistory(t *testing.T) {
	f := newGatedFetcher()
	chatID := uuid.New()
	base := time.Now()
	f.seed(chatID,
		msgAt(chatID, "first", base.Add(1*time.Second)),
		msgAt(chatID, "second", base.Add(2*time.Second)),
	)

	s := newSyncer(f)
	s.Select(context.Background(), chatID)
	waitLoaded(t, s)

	require.Equal(t, []string{"first", "second"}, texts(s.Messages()))
}

func TestLateFetchFromPreviousSelectionIsDiscarded(t *testing.T) {
	f := newGatedFetcher()
	chatA, chatB := uuid.New(), uuid.New()
	base := time.Now()
	f.seed(chatA, msgAt(chatA, "from A", base))
	f.seed(chatB, msgAt(chatB, "from B", base))

	gate := f.hold(chatA)

	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatA) // fetch for A is now stuck behind the gate
	s.Select(ctx, chatB)
	waitLoaded(t, s)
	require.Equal(t, []string{"from B"}, texts(s.Messages()))

	// A's response finally lands, after the user already switched away.
	close(gate)
	require.Never(t, func() bool {
		msgs := texts(s.Messages())
		return len(msgs) != 1 || msgs[0] != "from B"
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestPushForSelectedChatAppends(t *testing.T) {
	f := newGatedFetcher()
	chatID := uuid.New()
	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatID)
	waitLoaded(t, s)

	m := msgAt(chatID, "live", time.Now())
	frame, err := domain.NewFrame(domain.EventNewGroupMessage, domain.ToWire(&m))
	require.NoError(t, err)
	s.OnFrame(ctx, frame)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "live", msgs[0].Text)
	// Hydration filled the sender from the profile source.
	require.NotNil(t, msgs[0].Sender)
	require.Equal(t, "User alice", msgs[0].Sender.FullName)
}

func TestPushForOtherChatLeavesSelectedCacheUntouched(t *testing.T) {
	f := newGatedFetcher()
	chatID, otherChat := uuid.New(), uuid.New()
	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatID)
	waitLoaded(t, s)

	m := msgAt(otherChat, "elsewhere", time.Now())
	frame, err := domain.NewFrame(domain.EventNewGroupMessage, domain.ToWire(&m))
	require.NoError(t, err)
	s.OnFrame(ctx, frame)

	require.Empty(t, s.Messages())
}

func TestDuplicatePushIsIdempotent(t *testing.T) {
	f := newGatedFetcher()
	chatID := uuid.New()
	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatID)
	waitLoaded(t, s)

	m := msgAt(chatID, "once", time.Now())
	frame, err := domain.NewFrame(domain.EventNewGroupMessage, domain.ToWire(&m))
	require.NoError(t, err)
	s.OnFrame(ctx, frame)
	s.OnFrame(ctx, frame)

	require.Len(t, s.Messages(), 1)
}

func TestDeletedPushFlipsRender(t *testing.T) {
	f := newGatedFetcher()
	chatID := uuid.New()
	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatID)
	waitLoaded(t, s)

	m := msgAt(chatID, "oops", time.Now())
	frame, err := domain.NewFrame(domain.EventNewGroupMessage, domain.ToWire(&m))
	require.NoError(t, err)
	s.OnFrame(ctx, frame)

	del, err := domain.NewFrame(domain.EventGroupMessageDeleted, m.ID.String())
	require.NoError(t, err)
	s.OnFrame(ctx, del)

	require.Len(t, s.Messages(), 1)
	text, ok := s.RenderText(m.ID)
	require.True(t, ok)
	require.Equal(t, client.DeletedPlaceholder, text)
}

func TestOnlineAndRosterPushes(t *testing.T) {
	f := newGatedFetcher()
	chatID := uuid.New()
	s := newSyncer(f)
	ctx := context.Background()
	s.Select(ctx, chatID)
	waitLoaded(t, s)

	online, err := domain.NewFrame(domain.EventOnlineUsers, []string{"alice", "bob"})
	require.NoError(t, err)
	s.OnFrame(ctx, online)
	require.Equal(t, []string{"alice", "bob"}, s.OnlineUsers())

	roster, err := domain.NewFrame(domain.EventMembersChanged, domain.MembersChangedPayload{
		RoomID:  chatID.String(),
		Members: []string{"alice", "carol"},
	})
	require.NoError(t, err)
	s.OnFrame(ctx, roster)
	require.Equal(t, []string{"alice", "carol"}, s.Roster())

	// Roster for a different room is ignored.
	other, err := domain.NewFrame(domain.EventMembersChanged, domain.MembersChangedPayload{
		RoomID:  uuid.NewString(),
		Members: []string{"mallory"},
	})
	require.NoError(t, err)
	s.OnFrame(ctx, other)
	require.Equal(t, []string{"alice", "carol"}, s.Roster())
}

func TestUnfriendedPushRemovesFriend(t *testing.T) {
	f := newGatedFetcher()
	s := newSyncer(f)
	ctx := context.Background()
	s.SetFriends([]string{"bob", "carol"})

	frame, err := domain.NewFrame(domain.EventUnfriended, domain.UnfriendedPayload{
		UserID:   "bob",
		FriendID: "me",
	})
	require.NoError(t, err)
	s.OnFrame(ctx, frame)

	require.False(t, s.IsFriend("bob"))
	require.True(t, s.IsFriend("carol"))
}

func TestMalformedFrameIsIgnored(t *testing.T) {
	f := newGatedFetcher()
	s := newSyncer(f)
	s.OnFrame(context.Background(), []byte("{not json"))
	require.Empty(t, s.Messages())
}
