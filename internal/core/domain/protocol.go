package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Server → client events.
const (
	EventOnlineUsers         = "getOnlineUsers"
	EventNewMessage          = "newMessage"
	EventNewGroupMessage     = "newGroupMessage"
	EventGroupMessageDeleted = "groupMessageDeleted"
	EventGroupMessageUpdated = "groupMessageUpdated"
	EventMessageUpdated      = "messageUpdated"
	EventUnfriended          = "unfriended"
	EventMembersChanged      = "membersChanged"
	EventError               = "error"
)

// Client → server events.
const (
	EventJoinGroupChat    = "joinGroupChat"
	EventLeaveGroupChat   = "leaveGroupChat"
	EventSendGroupMessage = "sendGroupMessage"
	EventSendMessage      = "sendMessage"
	EventUnfriend         = "unfriend"
)

// Frame is the envelope for every message on the socket, both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// WireMessage is the JSON shape of a Message on the socket.
type WireMessage struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	SenderID   string    `json:"senderId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderName string    `json:"senderName,omitempty"`
	SenderPic  string    `json:"senderPic,omitempty"`
}

func ToWire(m *Message) WireMessage {
	w := WireMessage{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
	// Deleted messages travel without content so no consumer can render it.
	if !m.IsDeleted {
		w.Text = m.Text
		w.Image = m.Image
	}
	if m.Sender != nil {
		w.SenderName = m.Sender.FullName
		w.SenderPic = m.Sender.ProfilePic
	}
	return w
}

func FromWire(w WireMessage) (*Message, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, err
	}
	chatID, err := uuid.Parse(w.ChatID)
	if err != nil {
		return nil, ErrInvalidRoomID
	}
	m := &Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  w.SenderID,
		Text:      w.Text,
		Image:     w.Image,
		IsDeleted: w.IsDeleted,
		CreatedAt: w.CreatedAt,
	}
	if w.SenderName != "" || w.SenderPic != "" {
		m.Sender = &Profile{ID: w.SenderID, FullName: w.SenderName, ProfilePic: w.SenderPic}
	}
	return m, nil
}

// UnfriendedPayload is the one-directional notice pushed to the removed friend.
type UnfriendedPayload struct {
	UserID   string `json:"userId"`
	FriendID string `json:"friendId"`
}

// MembersChangedPayload carries the fresh roster so open clients refresh
// without a round trip.
type MembersChangedPayload struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
}

// ErrorPayload is the socket-safe shape of a rejected operation.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Inbound payloads.

type JoinRoomPayload struct {
	RoomID string `json:"roomId" validate:"required,uuid"`
}

type SendGroupMessagePayload struct {
	RoomID string `json:"roomId" validate:"required,uuid"`
	Text   string `json:"text" validate:"required_without=Image,max=4096"`
	Image  string `json:"image" validate:"omitempty,max=2048"`
}

type SendMessagePayload struct {
	ChatID string `json:"chatId" validate:"required,uuid"`
	ToID   string `json:"toId" validate:"required"`
	Text   string `json:"text" validate:"required_without=Image,max=4096"`
	Image  string `json:"image" validate:"omitempty,max=2048"`
}

type UnfriendPayload struct {
	FriendID string `json:"friendId" validate:"required"`
}
