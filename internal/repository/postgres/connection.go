package postgres

import (
	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.Game{},
		&domain.Achievement{},
		&domain.Guide{},
		&domain.ParsedGuideContent{},
		&domain.CompletionTime{},
		&domain.EngagementScore{},
		&domain.ImportRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Game:            NewGameRepository(db),
		Achievement:     NewAchievementRepository(db),
		Guide:           NewGuideRepository(db),
		CompletionTime:  NewCompletionTimeRepository(db),
		EngagementScore: NewEngagementScoreRepository(db),
		ImportRecord:    NewImportRecordRepository(db),
	}
}
