package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dom/game-insights/internal/clients/steam"
	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SteamSource is the slice of the Steam client the importer needs.
type SteamSource interface {
	FetchAchievements(ctx context.Context, appID int64) (*steam.GameSchema, error)
	FetchGuides(ctx context.Context, appID int64) ([]steam.Guide, error)
}

// ImportResult is the per-app outcome of an import run. Status is "ok",
// "partial" (achievements landed but the guide search failed) or "error"
// (nothing was written for this app id).
type ImportResult struct {
	AppID             int64      `json:"appId"`
	GameID            *uuid.UUID `json:"gameId,omitempty"`
	CreatedGame       bool       `json:"createdGame"`
	AchievementsAdded int        `json:"achievementsAdded"`
	GuidesAdded       int        `json:"guidesAdded"`
	Status            string     `json:"status"`
	Error             string     `json:"error,omitempty"`
}

type ImportSummary struct {
	Results []ImportResult `json:"results"`
}

type ImportService struct {
	gameRepo    repository.GameRepository
	achieveRepo repository.AchievementRepository
	guideRepo   repository.GuideRepository
	recordRepo  repository.ImportRecordRepository
	steam       SteamSource
}

func NewImportService(repos *repository.Repositories, steamSource SteamSource) *ImportService {
	return &ImportService{
		gameRepo:    repos.Game,
		achieveRepo: repos.Achievement,
		guideRepo:   repos.Guide,
		recordRepo:  repos.ImportRecord,
		steam:       steamSource,
	}
}

// ParseAppIDs splits comma or newline separated app ids, dropping anything
// non-numeric and de-duplicating while preserving order.
func ParseAppIDs(text string) []int64 {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	seen := make(map[int64]bool)
	var appIDs []int64
	for _, token := range tokens {
		id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		appIDs = append(appIDs, id)
	}
	return appIDs
}

// ImportFromSteam imports achievements and guides for every app id in the
// input text. A failed achievement fetch skips the whole app id; a failed
// guide search downgrades it to "partial" but keeps the achievements. One
// ImportRecord row logs the run.
func (s *ImportService) ImportFromSteam(ctx context.Context, appIDsText string) (*ImportSummary, error) {
	appIDs := ParseAppIDs(appIDsText)
	if len(appIDs) == 0 {
		return nil, domain.ErrNoAppIDs
	}

	results := make([]ImportResult, 0, len(appIDs))
	for _, appID := range appIDs {
		results = append(results, s.importApp(ctx, appID))
	}

	if err := s.recordRun(ctx, appIDsText, results); err != nil {
		log.Printf("ERROR [import.record]: %v", err)
	}

	return &ImportSummary{Results: results}, nil
}

func (s *ImportService) importApp(ctx context.Context, appID int64) ImportResult {
	result := ImportResult{AppID: appID, Status: domain.ImportStatusOK}

	schema, err := s.steam.FetchAchievements(ctx, appID)
	if err != nil {
		result.Status = domain.ImportStatusError
		result.Error = err.Error()
		return result
	}

	game, createdGame, err := s.getOrCreateGame(ctx, appID, schema.GameName)
	if err != nil {
		result.Status = domain.ImportStatusError
		result.Error = err.Error()
		return result
	}
	result.GameID = &game.ID
	result.CreatedGame = createdGame

	added, err := s.mergeAchievements(ctx, game, schema.Achievements)
	if err != nil {
		result.Status = domain.ImportStatusError
		result.Error = err.Error()
		return result
	}
	result.AchievementsAdded = added

	guides, err := s.steam.FetchGuides(ctx, appID)
	if err != nil {
		result.Status = domain.ImportStatusPartial
		result.Error = err.Error()
		return result
	}

	guidesAdded, err := s.addGuides(ctx, game, guides)
	if err != nil {
		result.Status = domain.ImportStatusPartial
		result.Error = err.Error()
		return result
	}
	result.GuidesAdded = guidesAdded
	return result
}

func (s *ImportService) getOrCreateGame(ctx context.Context, appID int64, gameName string) (*domain.Game, bool, error) {
	game, err := s.gameRepo.GetBySteamAppID(ctx, appID)
	if err == nil {
		return game, false, nil
	}
	if !errors.Is(err, domain.ErrGameNotFound) {
		return nil, false, err
	}

	title := gameName
	if title == "" {
		title = fmt.Sprintf("App %d", appID)
	}
	description := "Imported from Steam"
	game = &domain.Game{
		SteamAppID:  &appID,
		Title:       title,
		Description: &description,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, false, err
	}
	return game, true, nil
}

// mergeAchievements inserts achievements the game does not have yet and
// refreshes description, points and completion rate on the ones it does,
// keyed by name.
func (s *ImportService) mergeAchievements(ctx context.Context, game *domain.Game, fetched []steam.Achievement) (int, error) {
	existing := make(map[string]*domain.Achievement, len(game.Achievements))
	for i := range game.Achievements {
		existing[game.Achievements[i].Name] = &game.Achievements[i]
	}

	var created []*domain.Achievement
	for _, item := range fetched {
		if current, ok := existing[item.Name]; ok {
			current.Description = item.Description
			current.Points = item.Points
			current.CompletionRate = item.CompletionRate
			if err := s.achieveRepo.Update(ctx, current); err != nil {
				return 0, err
			}
			continue
		}
		created = append(created, &domain.Achievement{
			GameID:         game.ID,
			Name:           item.Name,
			Description:    item.Description,
			Points:         item.Points,
			CompletionRate: item.CompletionRate,
		})
	}

	if err := s.achieveRepo.CreateMany(ctx, created); err != nil {
		return 0, err
	}
	return len(created), nil
}

// addGuides skips guides whose URL the game already has; URL is the natural
// de-duplication key for imported guides.
func (s *ImportService) addGuides(ctx context.Context, game *domain.Game, fetched []steam.Guide) (int, error) {
	existing := make(map[string]bool, len(game.Guides))
	for _, guide := range game.Guides {
		if guide.URL != nil {
			existing[*guide.URL] = true
		}
	}

	var created []*domain.Guide
	for _, item := range fetched {
		if existing[item.URL] {
			continue
		}
		url := item.URL
		guide := &domain.Guide{
			GameID:   game.ID,
			Title:    item.Title,
			URL:      &url,
			PostedAt: item.PostedAt,
		}
		if item.Author != "" {
			author := item.Author
			guide.Author = &author
		}
		created = append(created, guide)
		existing[item.URL] = true
	}

	if err := s.guideRepo.CreateMany(ctx, created); err != nil {
		return 0, err
	}
	return len(created), nil
}

func (s *ImportService) recordRun(ctx context.Context, appIDsText string, results []ImportResult) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return s.recordRepo.Create(ctx, &domain.ImportRecord{
		AppIDs:  appIDsText,
		Results: datatypes.JSON(payload),
	})
}
