package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers/live"
	"Vented/internal/core/feed"
)

// RegisterLiveRoutes registers the WebSocket stream endpoints
func RegisterLiveRoutes(r chi.Router, feeds *feed.Factory, logger *slog.Logger) {
	h := live.NewHandler(feeds, logger)

	r.Get("/feed/live", h.HandleFeed)
	r.Get("/vents/{id}/comments/live", func(w http.ResponseWriter, req *http.Request) {
		h.HandleThread(w, req, chi.URLParam(req, "id"))
	})
}
