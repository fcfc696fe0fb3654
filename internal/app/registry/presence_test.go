package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FarahBaraket-03/ChatTily/internal/app/registry"
)

func TestRegisterBroadcastsOnlineSet(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	alice := newFakeClient("c1", "alice")
	bob := newFakeClient("c2", "bob")

	p.Register(ctx, alice)
	users, ok := alice.lastOnlineSet()
	require.True(t, ok)
	require.Equal(t, []string{"alice"}, users)

	p.Register(ctx, bob)
	for _, c := range []*fakeClient{alice, bob} {
		users, ok := c.lastOnlineSet()
		require.True(t, ok)
		require.Equal(t, []string{"alice", "bob"}, users, "every connection sees the full sorted set")
	}
}

func TestOnlineReflectsLastUnmatchedConnect(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	c1 := newFakeClient("c1", "alice")
	p.Register(ctx, c1)
	require.True(t, p.IsOnline("alice"))

	p.Unregister(ctx, c1)
	require.False(t, p.IsOnline("alice"))

	c2 := newFakeClient("c2", "alice")
	p.Register(ctx, c2)
	require.True(t, p.IsOnline("alice"))

	got, ok := p.ConnectionFor("alice")
	require.True(t, ok)
	require.Equal(t, "c2", got.ConnectionID())
}

func TestReconnectReplacesAndClosesPrior(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	c1 := newFakeClient("c1", "alice")
	c2 := newFakeClient("c2", "alice")

	p.Register(ctx, c1)
	p.Register(ctx, c2)

	require.True(t, c1.isClosed(), "superseded connection is closed")
	got, ok := p.ConnectionFor("alice")
	require.True(t, ok)
	require.Equal(t, "c2", got.ConnectionID())
}

func TestStaleDisconnectDoesNotEvictNewerRegistration(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	c1 := newFakeClient("c1", "alice")
	c2 := newFakeClient("c2", "alice")

	p.Register(ctx, c1)
	p.Register(ctx, c2)

	// The old tab's disconnect arrives after the reconnect already won.
	p.Unregister(ctx, c1)

	require.True(t, p.IsOnline("alice"))
	got, ok := p.ConnectionFor("alice")
	require.True(t, ok)
	require.Equal(t, "c2", got.ConnectionID())
}

func TestUnregisterUnknownUserIsNoop(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	ghost := newFakeClient("c9", "ghost")
	p.Unregister(ctx, ghost)
	require.False(t, p.IsOnline("ghost"))
	require.Empty(t, p.OnlineUsers())
}

func TestRepeatedIdenticalRegistrationIsIdempotent(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	c1 := newFakeClient("c1", "alice")
	p.Register(ctx, c1)
	p.Register(ctx, c1)

	require.False(t, c1.isClosed())
	require.Equal(t, []string{"alice"}, p.OnlineUsers())
}

func TestBroadcastSurvivesFailedSend(t *testing.T) {
	p := registry.NewPresenceRegistry(newTestLogger())
	ctx := context.Background()

	broken := newFakeClient("c1", "alice")
	broken.failSend = true
	bob := newFakeClient("c2", "bob")

	p.Register(ctx, broken)
	p.Register(ctx, bob)

	// The failing target is skipped, the healthy one still gets the set.
	users, ok := bob.lastOnlineSet()
	require.True(t, ok)
	require.Equal(t, []string{"alice", "bob"}, users)
}
