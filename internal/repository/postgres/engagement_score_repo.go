package postgres

import (
	"context"
	"time"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type engagementScoreRepository struct {
	db *gorm.DB
}

func NewEngagementScoreRepository(db *gorm.DB) *engagementScoreRepository {
	return &engagementScoreRepository{db: db}
}

func (r *engagementScoreRepository) Append(ctx context.Context, score *domain.EngagementScore) error {
	if score.CalculatedAt.IsZero() {
		score.CalculatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *engagementScoreRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.EngagementScore, error) {
	var scores []*domain.EngagementScore
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("calculated_at DESC").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
