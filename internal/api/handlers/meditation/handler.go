package meditation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers"
	"Vented/internal/core/meditations"
)

// Handler serves the meditation library endpoints
type Handler struct {
	service meditations.Service
}

// NewHandler creates a new meditation handler
func NewHandler(service meditations.Service) *Handler {
	return &Handler{service: service}
}

// HandleList returns the catalog grouped by category
// GET /meditations
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.service.List(r.Context())
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, grouped)
}

// HandleGet returns one meditation
// GET /meditations/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if meditations.IsNotFound(err) {
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Meditation not found")
		return
	}
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, m)
}
