package settings

import (
	"encoding/json"
	"net/http"
	"strings"

	"Vented/internal/api/handlers"
	"Vented/internal/prefs"
)

// Handler serves the local preference endpoints: theme and gratitude notes.
type Handler struct {
	prefs *prefs.Prefs
}

// NewHandler creates a new settings handler
func NewHandler(p *prefs.Prefs) *Handler {
	return &Handler{prefs: p}
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// HandleGetTheme returns the active theme
// GET /settings/theme
func (h *Handler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.Theme()
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"theme": theme})
}

// HandleSetTheme replaces the active theme
// PUT /settings/theme
func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Theme == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "theme is required")
		return
	}
	if err := h.prefs.SetTheme(req.Theme); err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotes returns all gratitude notes
// GET /settings/gratitude
func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.prefs.GratitudeNotes()
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

// HandleAddNote stores a gratitude note
// POST /settings/gratitude
func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "note is required")
		return
	}
	if err := h.prefs.AddGratitudeNote(req.Note); err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveNote deletes a gratitude note
// DELETE /settings/gratitude
func (h *Handler) HandleRemoveNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Note == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "note is required")
		return
	}
	if err := h.prefs.RemoveGratitudeNote(req.Note); err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
