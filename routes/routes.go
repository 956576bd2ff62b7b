package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/research-assistant/app"
	"github.com/upb/research-assistant/handlers"
	"github.com/upb/research-assistant/middleware"
	"github.com/upb/research-assistant/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{handlers.CitationsHeader, middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.SQLDB(), deps.ProviderRegistry, deps.Corpus, deps.Audit, handlers.HealthInfo{
		Version:     app.Version,
		Environment: deps.Config.Environment,
		Model:       deps.Chat.Model(),
	}, deps.Logger)
	chat := handlers.NewChatHandler(deps.Chat, deps.Logger)
	documents := handlers.NewDocumentsHandler(deps.Corpus, deps.Engine, deps.Logger)
	turns := handlers.NewChatTurnsHandler(deps.Audit, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	limited := chi.Chain()
	if deps.RateLimiter != nil {
		limited = chi.Chain(middleware.NewRateLimitMiddleware(deps.RateLimiter, deps.Logger).Limit)
	}

	// The browser client posts to /api/chat
	r.With(limited...).Post("/api/chat", chat.HandleChat)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", health.HandleStatus)

		r.With(limited...).Post("/chat", chat.HandleChat)
		r.Get("/chat/turns", turns.HandleList)

		r.Get("/search", documents.HandleSearch)
		r.Get("/categories", documents.HandleCategories)
		r.Get("/documents", documents.HandleList)
		r.Get("/documents/{id}", documents.HandleGet)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
