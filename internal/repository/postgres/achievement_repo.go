package postgres

import (
	"context"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) CreateMany(ctx context.Context, achievements []*domain.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(achievements).Error
}

func (r *achievementRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.Achievement, error) {
	var achievements []*domain.Achievement
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("name").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *achievementRepository) Update(ctx context.Context, achievement *domain.Achievement) error {
	return r.db.WithContext(ctx).Save(achievement).Error
}

// SetMainStory rewrites the flags in one transaction so a crash can never
// leave two achievements marked as main-story completion.
func (r *achievementRepository) SetMainStory(ctx context.Context, gameID uuid.UUID, name *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Achievement{}).
			Where("game_id = ?", gameID).
			Update("is_main_story_completion", false).Error
		if err != nil {
			return err
		}
		if name == nil {
			return nil
		}
		return tx.Model(&domain.Achievement{}).
			Where("game_id = ? AND name = ?", gameID, *name).
			Update("is_main_story_completion", true).Error
	})
}
