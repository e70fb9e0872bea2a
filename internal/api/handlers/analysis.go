package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
	"github.com/dom/game-insights/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
	gameRepo        repository.GameRepository
	scoreRepo       repository.EngagementScoreRepository
}

func NewAnalysisHandler(analysisService *service.AnalysisService, gameRepo repository.GameRepository, scoreRepo repository.EngagementScoreRepository) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		gameRepo:        gameRepo,
		scoreRepo:       scoreRepo,
	}
}

// AnalysisResponse reports a pipeline run. Partial failures are still a 200:
// degraded stages show up in notes and as a zero or missing score, never as
// an error status.
type AnalysisResponse struct {
	GameID               string   `json:"gameId"`
	MainStoryAchievement *string  `json:"mainStoryAchievement"`
	HLTBMainStoryHours   *float64 `json:"hltbMainStoryHours"`
	EngagementScore      *float64 `json:"engagementScore"`
	Notes                []string `json:"notes"`
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	game, err := h.gameRepo.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("ERROR [analysis.load] gameID=%s: %v", id, err)
		http.Error(w, "Failed to load game", http.StatusInternalServerError)
		return
	}

	result, err := h.analysisService.Analyze(r.Context(), game)
	if err != nil {
		log.Printf("ERROR [analysis.Analyze] gameID=%s: %v", id, err)
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	resp := AnalysisResponse{
		GameID:             id.String(),
		HLTBMainStoryHours: result.MainStoryHours,
		EngagementScore:    result.EngagementScore,
		Notes:              result.Notes,
	}
	if result.MainStoryAchievement != nil {
		resp.MainStoryAchievement = &result.MainStoryAchievement.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	scores, err := h.scoreRepo.GetByGameID(r.Context(), id)
	if err != nil {
		log.Printf("ERROR [analysis.GetScores] gameID=%s: %v", id, err)
		http.Error(w, "Failed to get scores", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
