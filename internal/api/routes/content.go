package routes

import (
	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers/artgen"
	"Vented/internal/api/handlers/meditation"
	"Vented/internal/api/handlers/prompt"
	"Vented/internal/api/handlers/settings"
	"Vented/internal/art"
	"Vented/internal/blobs"
	"Vented/internal/core/meditations"
	"Vented/internal/core/prompts"
	"Vented/internal/prefs"
)

// RegisterPromptRoutes registers the writing prompt endpoint
func RegisterPromptRoutes(r chi.Router, promptSvc prompts.Service) {
	h := prompt.NewHandler(promptSvc)
	r.Get("/prompts/random", h.HandleRandom)
}

// RegisterArtRoutes registers the art generation endpoint. generator may be
// nil when no model API key is configured.
func RegisterArtRoutes(r chi.Router, generator *art.Generator, blobSvc blobs.Service) {
	h := artgen.NewHandler(generator, blobSvc)
	r.Post("/art/generate", h.HandleGenerate)
}

// RegisterMeditationRoutes registers the meditation library endpoints
func RegisterMeditationRoutes(r chi.Router, meditationSvc meditations.Service) {
	h := meditation.NewHandler(meditationSvc)
	r.Get("/meditations", h.HandleList)
	r.Get("/meditations/{id}", h.HandleGet)
}

// RegisterSettingsRoutes registers the local preference endpoints
func RegisterSettingsRoutes(r chi.Router, p *prefs.Prefs) {
	h := settings.NewHandler(p)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/theme", h.HandleGetTheme)
		r.Put("/theme", h.HandleSetTheme)
		r.Get("/gratitude", h.HandleListNotes)
		r.Post("/gratitude", h.HandleAddNote)
		r.Delete("/gratitude", h.HandleRemoveNote)
	})
}
