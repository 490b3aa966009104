package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/revue/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events, which also accepts the
// token as ?access_token=.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		// Notes CRUD.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Post("/notes/move", h.MoveNote)
		r.Get("/notes/*", h.GetNote)
		r.Put("/notes/*", h.UpdateNote)
		r.Delete("/notes/*", h.DeleteNote)

		// Reviews.
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.Watchlist)
			r.Get("/status/*", h.ReviewStatus)
			r.Post("/mark/*", h.MarkReviewed)
			r.Delete("/mark/*", h.RemoveReview)
			r.Post("/snooze/*", h.Snooze)
			r.Put("/cadence/*", h.SetCadence)
			r.Post("/watch/*", h.Watch)
			r.Delete("/watch/*", h.Unwatch)
		})

		r.Get("/cadence/describe", h.DescribeCadence)
	})

	if sseHandler != nil {
		r.With(StreamAuthMiddleware(authEnabled, token)).Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
