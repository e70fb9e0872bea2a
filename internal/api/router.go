package api

import (
	"net/http"

	"github.com/dom/game-insights/internal/api/handlers"
	"github.com/dom/game-insights/internal/api/middleware"
	"github.com/dom/game-insights/internal/repository"
	"github.com/dom/game-insights/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, repos *repository.Repositories) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	gameHandler := handlers.NewGameHandler(repos.Game)
	analysisHandler := handlers.NewAnalysisHandler(services.Analysis, repos.Game, repos.EngagementScore)
	importHandler := handlers.NewSteamImportHandler(services.Import)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Post("/", gameHandler.Create)
			r.Get("/", gameHandler.GetAll)
			r.Get("/{id}", gameHandler.Get)
			r.Put("/{id}", gameHandler.Update)
			r.Delete("/{id}", gameHandler.Delete)
			r.Get("/{id}/scores", analysisHandler.GetScores)
			r.Post("/{id}/analyze", analysisHandler.Analyze)
		})

		r.Post("/steam/import", importHandler.Import)
	})

	return r
}
