package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers"
	"Vented/internal/api/middleware"
	"Vented/internal/core/comments"
	"Vented/internal/core/posts"
	"Vented/internal/core/sessions"
)

// Handler serves the comment endpoints
type Handler struct {
	service comments.Service
}

// NewHandler creates a new comment handler
func NewHandler(service comments.Service) *Handler {
	return &Handler{service: service}
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID          string     `json:"id"`
	PostID      string     `json:"postId"`
	AuthorID    string     `json:"authorId"`
	Content     string     `json:"content"`
	ReportCount int64      `json:"reportCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	EditedAt    *time.Time `json:"lastEdited,omitempty"`
}

// ToResponse maps a comment onto its wire shape.
func ToResponse(c *comments.Comment) interface{} {
	return commentResponse{
		ID:          c.ID,
		PostID:      c.PostID,
		AuthorID:    c.AuthorID,
		Content:     c.Content,
		ReportCount: c.ReportCount,
		CreatedAt:   c.CreatedAt,
		EditedAt:    c.EditedAt,
	}
}

// HandleAdd adds a comment under a vent
// POST /vents/{id}/comments
//
// Request body: { "content": "..." }
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "content is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	c, err := h.service.AddComment(r.Context(), sess, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, ToResponse(c))
}

// HandleEdit replaces a comment's content
// PATCH /vents/{id}/comments/{cid}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "content is required")
		return
	}

	sess := sessions.For(middleware.GetUserID(r))
	err := h.service.EditComment(r.Context(), sess, chi.URLParam(r, "id"), chi.URLParam(r, "cid"), req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReport flags a comment for moderation
// POST /vents/{id}/comments/{cid}/report
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	err := h.service.ReportComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cid"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, comments.ErrParentNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Vent not found")
	case comments.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Comment not found")
	case errors.Is(err, posts.ErrNotAuthorized):
		handlers.WriteError(w, http.StatusForbidden, "Forbidden", "Only the author can modify a comment")
	default:
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "Something went wrong")
	}
}
