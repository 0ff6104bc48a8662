package routes

import (
	"github.com/go-chi/chi/v5"

	"Vented/internal/api/handlers/comment"
	"Vented/internal/api/handlers/reaction"
	"Vented/internal/api/handlers/vent"
	"Vented/internal/core/comments"
	"Vented/internal/core/posts"
	"Vented/internal/core/reactions"
)

// RegisterVentRoutes registers the vent, comment and reaction endpoints
func RegisterVentRoutes(r chi.Router, postSvc posts.Service, commentSvc comments.Service, reactionSvc reactions.Service) {
	ventHandler := vent.NewHandler(postSvc)
	commentHandler := comment.NewHandler(commentSvc)
	reactionHandler := reaction.NewHandler(reactionSvc)

	r.Route("/vents", func(r chi.Router) {
		r.Post("/", ventHandler.HandleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ventHandler.HandleGet)
			r.Patch("/", ventHandler.HandleEdit)
			r.Delete("/", ventHandler.HandleDelete)
			r.Post("/report", ventHandler.HandleReport)

			r.Post("/comments", commentHandler.HandleAdd)
			r.Patch("/comments/{cid}", commentHandler.HandleEdit)
			r.Post("/comments/{cid}/report", commentHandler.HandleReport)

			r.Post("/reactions/toggle", reactionHandler.HandleToggle)
			r.Get("/reactions/me", reactionHandler.HandleMine)
		})
	})
}
