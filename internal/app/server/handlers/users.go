package handlers

import (
	"net/http"

	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
)

// UserHandler serves the identity lookup clients hydrate sender profiles
// through. Lookups go through the cached ProfileSource.
type UserHandler struct {
	profiles contracts.ProfileSource
}

func NewUserHandler(profiles contracts.ProfileSource) *UserHandler {
	return &UserHandler{profiles: profiles}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	p, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":         p.ID,
		"fullName":   p.FullName,
		"profilePic": p.ProfilePic,
	})
}
