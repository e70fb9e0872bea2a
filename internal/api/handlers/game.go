package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GameHandler struct {
	gameRepo repository.GameRepository
}

func NewGameHandler(gameRepo repository.GameRepository) *GameHandler {
	return &GameHandler{gameRepo: gameRepo}
}

type CreateGameRequest struct {
	Title       string  `json:"title"`
	SteamAppID  *int64  `json:"steamAppId"`
	Genre       *string `json:"genre"`
	Platform    *string `json:"platform"`
	ReleaseDate *string `json:"releaseDate"`
	Description *string `json:"description"`
}

type UpdateGameRequest struct {
	Title       *string `json:"title"`
	Genre       *string `json:"genre"`
	Platform    *string `json:"platform"`
	ReleaseDate *string `json:"releaseDate"`
	Description *string `json:"description"`
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	game := &domain.Game{
		Title:       req.Title,
		SteamAppID:  req.SteamAppID,
		Genre:       req.Genre,
		Platform:    req.Platform,
		ReleaseDate: req.ReleaseDate,
		Description: req.Description,
	}
	if err := h.gameRepo.Create(r.Context(), game); err != nil {
		log.Printf("ERROR [game.Create]: %v", err)
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

func (h *GameHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("ERROR [game.GetAll]: %v", err)
		http.Error(w, "Failed to get games", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}

	var req UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		game.Title = *req.Title
	}
	if req.Genre != nil {
		game.Genre = req.Genre
	}
	if req.Platform != nil {
		game.Platform = req.Platform
	}
	if req.ReleaseDate != nil {
		game.ReleaseDate = req.ReleaseDate
	}
	if req.Description != nil {
		game.Description = req.Description
	}

	if err := h.gameRepo.Update(r.Context(), game); err != nil {
		log.Printf("ERROR [game.Update]: %v", err)
		http.Error(w, "Failed to update game", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	game, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	if err := h.gameRepo.Delete(r.Context(), game.ID); err != nil {
		log.Printf("ERROR [game.Delete]: %v", err)
		http.Error(w, "Failed to delete game", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) loadGame(w http.ResponseWriter, r *http.Request) (*domain.Game, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return nil, false
	}

	game, err := h.gameRepo.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Printf("ERROR [game.load] gameID=%s: %v", id, err)
		http.Error(w, "Failed to load game", http.StatusInternalServerError)
		return nil, false
	}
	return game, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
