package vent

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers"
	"Vented/internal/api/middleware"
	"Vented/internal/core/posts"
	"Vented/internal/core/sessions"
)

// Handler serves the vent CRUD endpoints
type Handler struct {
	service posts.Service
}

// NewHandler creates a new vent handler
func NewHandler(service posts.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Content  string   `json:"content"`
	Mood     string   `json:"mood"`
	ImageURL string   `json:"imageUrl"`
	Tags     []string `json:"tags"`
}

type editRequest struct {
	Content string `json:"content"`
}

// postResponse is the wire shape of a vent.
type postResponse struct {
	ID           string           `json:"id"`
	AuthorID     string           `json:"authorId"`
	Content      string           `json:"content"`
	Mood         string           `json:"mood,omitempty"`
	ImageURL     string           `json:"imageUrl,omitempty"`
	Tags         []string         `json:"tags"`
	Reactions    map[string]int64 `json:"reactions"`
	CommentCount int64            `json:"commentCount"`
	ReportCount  int64            `json:"reportCount"`
	CreatedAt    time.Time        `json:"createdAt"`
	EditedAt     *time.Time       `json:"lastEdited,omitempty"`
}

// ToResponse maps a post onto its wire shape.
func ToResponse(p *posts.Post) interface{} {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	reactions := p.Reactions
	if reactions == nil {
		reactions = map[string]int64{}
	}
	return postResponse{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Content:      p.Content,
		Mood:         p.Mood,
		ImageURL:     p.ImageURL,
		Tags:         tags,
		Reactions:    reactions,
		CommentCount: p.CommentCount,
		ReportCount:  p.ReportCount,
		CreatedAt:    p.CreatedAt,
		EditedAt:     p.EditedAt,
	}
}

// HandleCreate creates a vent
// POST /vents
//
// Request body: { "content": "...", "mood": "😊 Happy", "tags": [...], "imageUrl": "..." }
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "content is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	post, err := h.service.CreatePost(r.Context(), sess, posts.CreatePostRequest{
		Content:  req.Content,
		Mood:     req.Mood,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, ToResponse(post))
}

// HandleGet returns a single vent
// GET /vents/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, ToResponse(post))
}

// HandleEdit replaces a vent's content
// PATCH /vents/{id}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "content is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	if err := h.service.EditPost(r.Context(), sess, chi.URLParam(r, "id"), req.Content); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a vent
// DELETE /vents/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := sessions.For(middleware.GetUserID(r))
	if err := h.service.DeletePost(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReport flags a vent for moderation
// POST /vents/{id}/report
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReportPost(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case posts.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Vent not found")
	case errors.Is(err, posts.ErrInvalidMood):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Unknown mood")
	case errors.Is(err, posts.ErrNotAuthorized):
		handlers.WriteError(w, http.StatusForbidden, "Forbidden", "Only the author can modify a vent")
	default:
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
	}
}
