package router

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/auth"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/config"
	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/handler"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB       database.Database
	Config   *config.Config
	Sessions *auth.Sessions
	Router   chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(db database.Database, cfg *config.Config, sessions *auth.Sessions, bill *billing.Service) *Server {
	s := &Server{DB: db, Config: cfg, Sessions: sessions}

	h := &handler.Handler{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Billing:  bill,
	}

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS.
	// Credentials are on because the session rides in a cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check (no auth required).
	r.Get("/health", s.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		// Signature-verified, so no session.
		r.Post("/stripe/webhook", h.StripeWebhook)

		// List degrades to an empty page without a session.
		r.Group(func(r chi.Router) {
			r.Use(api.OptionalSession(sessions))
			r.Get("/media", h.ListMedia)
		})

		r.Group(func(r chi.Router) {
			r.Use(api.RequireSession(sessions))

			r.Get("/auth/upload-limit", h.UploadLimit)
			r.Get("/upload-auth", h.UploadAuth)

			r.Post("/media", h.CreateMedia)
			r.Get("/media/{media_id}", h.GetMedia)
			r.Patch("/media/{media_id}", h.UpdateMedia)
			r.Patch("/media/{media_id}/transforms/{category}", h.PatchTransforms)
			r.Get("/media/{media_id}/preview", h.PreviewMedia)

			r.Get("/subscription", h.SubscriptionInfo)
			r.Post("/stripe/checkout", h.CreateCheckout)
		})
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("Health: failed to encode response: %v", err)
	}
}
