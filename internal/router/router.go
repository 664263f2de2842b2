package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"vidshelf-backend/internal/handlers"
	"vidshelf-backend/internal/middleware"
	"vidshelf-backend/internal/websocket"
)

func New(
	videoHandler *handlers.VideoHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{frontendURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler)

	// Comment rate limiter (30 req/min per IP)
	commentLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Video Routes ────
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.List)

			// Selection, resolved against the live collection
			r.Route("/current", func(r chi.Router) {
				r.Get("/", videoHandler.GetCurrent)
				r.Put("/", videoHandler.SetCurrent)
				r.Delete("/", videoHandler.ClearCurrent)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", videoHandler.Get)
				r.Put("/progress", videoHandler.UpdateProgress)
				r.Post("/watched", videoHandler.MarkWatched)

				r.Group(func(r chi.Router) {
					r.Use(commentLimiter.Middleware)
					r.Post("/comments", videoHandler.AddComment)
					r.Delete("/comments/{commentId}", videoHandler.DeleteComment)
				})
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
