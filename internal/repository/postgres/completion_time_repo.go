package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type completionTimeRepository struct {
	db *gorm.DB
}

func NewCompletionTimeRepository(db *gorm.DB) *completionTimeRepository {
	return &completionTimeRepository{db: db}
}

func (r *completionTimeRepository) Upsert(ctx context.Context, gameID uuid.UUID, mainStoryHours *float64) error {
	row := &domain.CompletionTime{
		GameID:         gameID,
		MainStoryHours: mainStoryHours,
		LastUpdated:    time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"main_story_hours", "last_updated"}),
	}).Create(row).Error
}

func (r *completionTimeRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (*domain.CompletionTime, error) {
	var ct domain.CompletionTime
	err := r.db.WithContext(ctx).First(&ct, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
