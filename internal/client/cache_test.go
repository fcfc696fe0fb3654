package client_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/FarahBaraket-03/ChatTily/internal/client"
	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

func msgAt(chatID uuid.UUID, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  "alice",
		Text:      text,
		CreatedAt: at,
	}
}

func texts(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestApplyKeepsAscendingOrder(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()
	base := time.Now()

	// Out-of-order arrival.
	c.Apply(msgAt(chatID, "third", base.Add(3*time.Second)))
	c.Apply(msgAt(chatID, "first", base.Add(1*time.Second)))
	c.Apply(msgAt(chatID, "second", base.Add(2*time.Second)))

	require.Equal(t, []string{"first", "second", "third"}, texts(c.Messages()))
}

func TestApplyIsIdempotent(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()
	m := msgAt(chatID, "hello", time.Now())

	c.Apply(m)
	c.Apply(m)
	c.Apply(m)

	require.Equal(t, 1, c.Len())
}

func TestApplyReplacesInPlace(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()
	base := time.Now()

	a := msgAt(chatID, "a", base.Add(1*time.Second))
	b := msgAt(chatID, "b", base.Add(2*time.Second))
	d := msgAt(chatID, "c", base.Add(3*time.Second))
	c.Apply(a)
	c.Apply(b)
	c.Apply(d)

	edited := b
	edited.Text = "b (edited)"
	c.Apply(edited)

	require.Equal(t, 3, c.Len())
	require.Equal(t, []string{"a", "b (edited)", "c"}, texts(c.Messages()))
}

func TestReplaceKeepsHydratedSender(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()

	m := msgAt(chatID, "hello", time.Now())
	m.Sender = &domain.Profile{ID: "alice", FullName: "Alice A"}
	c.Apply(m)

	// The update arrives off the wire without hydration.
	update := m
	update.Sender = nil
	update.Text = "hello!"
	c.Apply(update)

	got, ok := c.Get(m.ID)
	require.True(t, ok)
	require.NotNil(t, got.Sender)
	require.Equal(t, "Alice A", got.Sender.FullName)
	require.Equal(t, "hello!", got.Text)
}

func TestSoftDeleteKeepsLengthAndPosition(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()
	base := time.Now()

	var ids []uuid.UUID
	for i, text := range []string{"one", "two", "three", "four"} {
		m := msgAt(chatID, text, base.Add(time.Duration(i)*time.Second))
		ids = append(ids, m.ID)
		c.Apply(m)
	}

	c.MarkDeleted(ids[1])

	require.Equal(t, 4, c.Len())
	msgs := c.Messages()
	require.Equal(t, ids[1], msgs[1].ID)
	require.True(t, msgs[1].IsDeleted)

	text, ok := c.RenderText(ids[1])
	require.True(t, ok)
	require.Equal(t, client.DeletedPlaceholder, text)

	// Neighbours render normally.
	text, _ = c.RenderText(ids[0])
	require.Equal(t, "one", text)
	text, _ = c.RenderText(ids[2])
	require.Equal(t, "three", text)
}

func TestDeletedWireMessageRendersPlaceholder(t *testing.T) {
	c := client.NewCache()
	chatID := uuid.New()

	m := msgAt(chatID, "secret", time.Now())
	c.Apply(m)

	// The fanned-out update already travels without content.
	wire := domain.ToWire(&domain.Message{
		ID: m.ID, ChatID: chatID, SenderID: m.SenderID,
		Text: "secret", IsDeleted: true, CreatedAt: m.CreatedAt,
	})
	require.Empty(t, wire.Text)

	update, err := domain.FromWire(wire)
	require.NoError(t, err)
	c.Apply(*update)

	require.Equal(t, 1, c.Len())
	text, ok := c.RenderText(m.ID)
	require.True(t, ok)
	require.Equal(t, client.DeletedPlaceholder, text)
}

func TestMarkDeletedUnknownIDIsNoop(t *testing.T) {
	c := client.NewCache()
	c.MarkDeleted(uuid.New())
	require.Equal(t, 0, c.Len())
}
