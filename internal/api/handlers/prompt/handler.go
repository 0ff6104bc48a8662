package prompt

import (
	"net/http"

	"Vented/internal/api/handlers"
	"Vented/internal/core/prompts"
)

// Handler serves the writing prompt endpoint
type Handler struct {
	service prompts.Service
}

// NewHandler creates a new prompt handler
func NewHandler(service prompts.Service) *Handler {
	return &Handler{service: service}
}

// HandleRandom returns one arbitrary writing prompt, "" when none exist
// GET /prompts/random
func (h *Handler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"prompt": h.service.RandomPrompt(r.Context()),
	})
}
