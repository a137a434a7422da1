package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vocab-sprint/internal/app"
	"vocab-sprint/internal/auth"
)

// NewRouter wires the REST API and the event stream.
func NewRouter(game *app.GameService, identity *auth.Service) http.Handler {
	authHandler := NewAuthHandler(identity)
	sessions := NewSessionHandler(game)
	ws := NewWSHandler(game, identity)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(authHandler.RequireUser)
			sessions.RegisterRoutes(r)
		})
	})
	r.Get("/ws/sessions/{id}", ws.ServeWS)
	return r
}
