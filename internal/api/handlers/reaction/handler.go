package reaction

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers"
	"Vented/internal/api/middleware"
	"Vented/internal/core/reactions"
	"Vented/internal/core/sessions"
)

// Handler serves the reaction endpoints
type Handler struct {
	service reactions.Service
}

// NewHandler creates a new reaction handler
func NewHandler(service reactions.Service) *Handler {
	return &Handler{service: service}
}

type toggleRequest struct {
	Type string `json:"type"`
}

// HandleToggle toggles the caller's reaction on a vent
// POST /vents/{id}/reactions/toggle
//
// Request body: { "type": "like" | "hug" | "support" }
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Type == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "type is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	postID := chi.URLParam(r, "id")
	if err := h.service.ToggleReaction(r.Context(), sess, postID, req.Type); err != nil {
		h.writeServiceError(w, err)
		return
	}

	// Report where the toggle landed so clients don't have to guess.
	current, err := h.service.UserReaction(r.Context(), sess, postID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"type": current})
}

// HandleMine returns the caller's current reaction on a vent, "" for none
// GET /vents/{id}/reactions/me
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	sess := sessions.For(middleware.GetUserID(r))
	current, err := h.service.UserReaction(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"type": current})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reactions.ErrPostNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Vent not found")
	case errors.Is(err, reactions.ErrInvalidType):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Unknown reaction type")
	default:
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
	}
}
