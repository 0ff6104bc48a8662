package routes

import (
	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers/profile"
	"Vented/internal/core/profiles"
)

// RegisterProfileRoutes registers the anonymous profile endpoints
func RegisterProfileRoutes(r chi.Router, profileSvc profiles.Service) {
	h := profile.NewHandler(profileSvc)

	r.Route("/profile", func(r chi.Router) {
		r.Get("/blocked", h.HandleBlocked)
		r.Post("/block", h.HandleBlock)
		r.Post("/unblock", h.HandleUnblock)
		r.Post("/device-token", h.HandleDeviceToken)
	})
}
