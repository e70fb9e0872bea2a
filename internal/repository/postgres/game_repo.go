package postgres

import (
	"context"
	"errors"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *gameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	var game domain.Game
	err := r.db.WithContext(ctx).
		Preload("Achievements").
		Preload("Guides").
		Preload("Guides.ParsedContent").
		Preload("CompletionTimes").
		Preload("EngagementScores").
		First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) GetBySteamAppID(ctx context.Context, appID int64) (*domain.Game, error) {
	var game domain.Game
	err := r.db.WithContext(ctx).
		Preload("Achievements").
		Preload("Guides").
		First(&game, "steam_app_id = ?", appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) GetAll(ctx context.Context) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.db.WithContext(ctx).
		Preload("Achievements").
		Preload("Guides").
		Preload("Guides.ParsedContent").
		Preload("CompletionTimes").
		Preload("EngagementScores").
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Game{}, "id = ?", id).Error
}
