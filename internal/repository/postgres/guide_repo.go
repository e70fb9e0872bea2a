package postgres

import (
	"context"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type guideRepository struct {
	db *gorm.DB
}

func NewGuideRepository(db *gorm.DB) *guideRepository {
	return &guideRepository{db: db}
}

func (r *guideRepository) CreateMany(ctx context.Context, guides []*domain.Guide) error {
	if len(guides) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(guides).Error
}

func (r *guideRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.Guide, error) {
	var guides []*domain.Guide
	err := r.db.WithContext(ctx).
		Preload("ParsedContent").
		Where("game_id = ?", gameID).
		Order("created_at").
		Find(&guides).Error
	if err != nil {
		return nil, err
	}
	return guides, nil
}

func (r *guideRepository) SaveParsedContent(ctx context.Context, content *domain.ParsedGuideContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}
