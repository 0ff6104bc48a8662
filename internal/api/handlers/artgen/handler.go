package artgen

import (
	"encoding/json"
	"net/http"
	"strings"

	"Vented/internal/api/handlers"
	"Vented/internal/api/middleware"
	"Vented/internal/art"
	"Vented/internal/blobs"
)

// Handler turns a feeling into hosted art: it calls the image model and
// uploads the result to the blob store.
type Handler struct {
	generator *art.Generator
	blobs     blobs.Service
}

// NewHandler creates a new art handler. generator may be nil when no API
// key is configured; the endpoint then reports the feature as unavailable.
func NewHandler(generator *art.Generator, blobSvc blobs.Service) *Handler {
	return &Handler{generator: generator, blobs: blobSvc}
}

type generateRequest struct {
	Feeling string `json:"feeling"`
}

// HandleGenerate generates art for a feeling and returns its public URL
// POST /art/generate
//
// Request body: { "feeling": "..." }
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		handlers.WriteError(w, http.StatusServiceUnavailable, "Unavailable", "Art generation is not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Feeling) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "feeling is required")
		return
	}

	outcome, err := h.generator.Generate(r.Context(), req.Feeling)
	if err != nil {
		handlers.WriteError(w, http.StatusBadGateway, "UpstreamError", "Image generation failed")
		return
	}

	switch out := outcome.(type) {
	case art.Blocked:
		handlers.WriteError(w, http.StatusUnprocessableEntity, "Blocked", out.Reason)
	case art.Image:
		url, err := h.blobs.UploadImage(r.Context(), middleware.GetUserID(r), out.Data, out.MIMEType)
		if err != nil {
			handlers.WriteError(w, http.StatusBadGateway, "UpstreamError", "Failed to store generated image")
			return
		}
		handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"url": url})
	default:
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
	}
}
