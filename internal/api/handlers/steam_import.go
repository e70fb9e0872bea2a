package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/service"
)

type SteamImportHandler struct {
	// importService is nil when no Steam API key is configured.
	importService *service.ImportService
}

func NewSteamImportHandler(importService *service.ImportService) *SteamImportHandler {
	return &SteamImportHandler{importService: importService}
}

type SteamImportRequest struct {
	AppIDsText string `json:"appIdsText"`
}

func (h *SteamImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.importService == nil {
		http.Error(w, domain.ErrSteamKeyMissing.Error(), http.StatusServiceUnavailable)
		return
	}

	var req SteamImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.importService.ImportFromSteam(r.Context(), req.AppIDsText)
	if errors.Is(err, domain.ErrNoAppIDs) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("ERROR [steam.Import]: %v", err)
		http.Error(w, "Import failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
