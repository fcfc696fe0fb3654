package client

import (
	"sort"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
)

// DeletedPlaceholder is what the render layer shows instead of the content
// of a soft-deleted message.
const DeletedPlaceholder = "This message was deleted"

// Cache is the ordered message view for one selected chat: ascending
// creation time, deduplicated by identity. Every mutation funnels through
// Apply, which is idempotent: replaying an event leaves the cache unchanged.
type Cache struct {
	msgs  []domain.Message
	index map[uuid.UUID]int
}

func NewCache() *Cache {
	return &Cache{index: make(map[uuid.UUID]int)}
}

// Apply inserts msg or, when the identity is already present, replaces the
// entry in place. Replacement keeps the entry's position, which is what
// preserves scroll stability across edits and soft deletes.
func (c *Cache) Apply(msg domain.Message) {
	if i, ok := c.index[msg.ID]; ok {
		// Keep a hydrated sender if the update arrived without one.
		if msg.Sender == nil {
			msg.Sender = c.msgs[i].Sender
		}
		c.msgs[i] = msg
		return
	}
	i := sort.Search(len(c.msgs), func(i int) bool {
		return c.msgs[i].CreatedAt.After(msg.CreatedAt)
	})
	c.msgs = append(c.msgs, domain.Message{})
	copy(c.msgs[i+1:], c.msgs[i:])
	c.msgs[i] = msg
	for j := i; j < len(c.msgs); j++ {
		c.index[c.msgs[j].ID] = j
	}
}

// MarkDeleted flips the soft flag in place; the entry keeps its identity and
// position. Unknown ids are a no-op.
func (c *Cache) MarkDeleted(id uuid.UUID) {
	if i, ok := c.index[id]; ok {
		c.msgs[i].IsDeleted = true
	}
}

func (c *Cache) Get(id uuid.UUID) (domain.Message, bool) {
	if i, ok := c.index[id]; ok {
		return c.msgs[i], true
	}
	return domain.Message{}, false
}

// RenderText is the display text for one entry: soft-deleted content is
// suppressed, never the record itself.
func (c *Cache) RenderText(id uuid.UUID) (string, bool) {
	m, ok := c.Get(id)
	if !ok {
		return "", false
	}
	if m.IsDeleted {
		return DeletedPlaceholder, true
	}
	return m.Text, true
}

// Messages returns a copy of the ordered sequence.
func (c *Cache) Messages() []domain.Message {
	out := make([]domain.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Cache) Len() int { return len(c.msgs) }

func (c *Cache) Reset() {
	c.msgs = nil
	c.index = make(map[uuid.UUID]int)
}
