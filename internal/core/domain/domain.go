package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public identity of a user as other clients see it.
// Identities themselves are issued by the external auth system; the core
// only looks them up.
type Profile struct {
	ID         string
	FullName   string
	ProfilePic string
}

// Room represents a group chat: a durable member list plus a live-delivery
// channel. The admin may remove members and delete any message in the room.
type Room struct {
	ID        uuid.UUID
	Name      string
	AdminID   string
	Members   []string
	CreatedAt time.Time
}

// IsMember reports whether userID is a durable member of the room.
func (r *Room) IsMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Message is a chat entry, direct or group. Deletion is soft: the record
// keeps its identity and position, consumers suppress the content.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  string
	Text      string
	Image     string
	IsDeleted bool
	CreatedAt time.Time

	// Sender is filled in by profile hydration; nil until resolved.
	Sender *Profile
}

func NewMessage(chatID uuid.UUID, senderID, text, image string) *Message {
	return &Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		Image:     image,
		CreatedAt: time.Now(),
	}
}
