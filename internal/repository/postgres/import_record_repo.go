package postgres

import (
	"context"

	"github.com/dom/game-insights/internal/domain"
	"gorm.io/gorm"
)

type importRecordRepository struct {
	db *gorm.DB
}

func NewImportRecordRepository(db *gorm.DB) *importRecordRepository {
	return &importRecordRepository{db: db}
}

func (r *importRecordRepository) Create(ctx context.Context, record *domain.ImportRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}
