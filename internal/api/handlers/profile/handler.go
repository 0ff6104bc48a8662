package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"Vented/internal/api/handlers"
	"Vented/internal/api/middleware"
	"Vented/internal/core/profiles"
	"Vented/internal/core/sessions"
)

// Handler serves the profile endpoints
type Handler struct {
	service profiles.Service
}

// NewHandler creates a new profile handler
func NewHandler(service profiles.Service) *Handler {
	return &Handler{service: service}
}

type blockRequest struct {
	UserID string `json:"userId"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleBlock hides another user's content from the caller
// POST /profile/block
//
// Request body: { "userId": "..." }
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.UserID == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "userId is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	if err := h.service.BlockUser(r.Context(), sess, req.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnblock reverses a block
// POST /profile/unblock
func (h *Handler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.UserID == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "userId is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	if err := h.service.UnblockUser(r.Context(), sess, req.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBlocked lists the caller's blocked user ids
// GET /profile/blocked
func (h *Handler) HandleBlocked(w http.ResponseWriter, r *http.Request) {
	sess := sessions.For(middleware.GetUserID(r))
	blocked, err := h.service.BlockedUsers(r.Context(), sess)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if blocked == nil {
		blocked = []string{}
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"blockedUsers": blocked})
}

// HandleDeviceToken stores the caller's push notification token
// POST /profile/device-token
func (h *Handler) HandleDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Token == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "token is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	if err := h.service.RegisterDeviceToken(r.Context(), sess, req.Token); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profiles.ErrSelfBlock):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Cannot block yourself")
	default:
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
	}
}
