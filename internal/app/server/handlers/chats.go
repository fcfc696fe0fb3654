package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FarahBaraket-03/ChatTily/internal/core/domain"
	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
	"github.com/FarahBaraket-03/ChatTily/pkg/middleware"
)

// ChatHandler is the pull side of delivery plus room administration. A push
// that was missed is recovered here: clients refetch the full list on every
// room open.
type ChatHandler struct {
	rooms    *services.RoomService
	messages *services.MessageService
}

func NewChatHandler(rooms *services.RoomService, messages *services.MessageService) *ChatHandler {
	return &ChatHandler{rooms: rooms, messages: messages}
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	msgs, err := h.messages.ListMessages(r.Context(), chatID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]domain.WireMessage, 0, len(msgs))
	for i := range msgs {
		out = append(out, domain.ToWire(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChatHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	var in struct {
		Name    string   `json:"name_group"`
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	room, err := h.rooms.CreateRoom(r.Context(), userID, in.Name, in.Members)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *ChatHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	roomID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	var in struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.rooms.AddMember(r.Context(), userID, roomID, in.MemberID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member added"})
}

func (h *ChatHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	roomID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	var in struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.rooms.RemoveMember(r.Context(), userID, roomID, in.MemberID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

func (h *ChatHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	roomID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	if err := h.rooms.LeaveRoom(r.Context(), userID, roomID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "successfully left the group chat"})
}

func (h *ChatHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	roomID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	if err := h.rooms.DeleteRoom(r.Context(), userID, roomID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "group chat deleted"})
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	msgID, err := uuid.Parse(r.PathValue("messageId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}
	msg, err := h.messages.DeleteGroupMessage(r.Context(), userID, msgID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ToWire(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	if log == nil {
		log = slog.Default()
	}
	switch {
	case errors.Is(err, domain.ErrNotMember), errors.Is(err, domain.ErrNotFriends), errors.Is(err, domain.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrMessageNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRoomID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.ErrorContext(r.Context(), "chat handler - internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
