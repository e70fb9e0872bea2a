package repository

import (
	"context"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
)

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	// GetByID loads the game with achievements, guides (and their parsed
	// content), completion times and engagement scores eagerly loaded.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	GetBySteamAppID(ctx context.Context, appID int64) (*domain.Game, error)
	GetAll(ctx context.Context) ([]*domain.Game, error)
	Update(ctx context.Context, game *domain.Game) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AchievementRepository interface {
	CreateMany(ctx context.Context, achievements []*domain.Achievement) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.Achievement, error)
	Update(ctx context.Context, achievement *domain.Achievement) error
	// SetMainStory atomically rewrites the main-story flags across a game's
	// achievement list: the achievement whose name equals name becomes true,
	// every other one false. A nil name clears all flags.
	SetMainStory(ctx context.Context, gameID uuid.UUID, name *string) error
}

type GuideRepository interface {
	CreateMany(ctx context.Context, guides []*domain.Guide) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.Guide, error)
	SaveParsedContent(ctx context.Context, content *domain.ParsedGuideContent) error
}

type CompletionTimeRepository interface {
	// Upsert keeps at most one row per game; a nil hours value overwrites
	// any previous estimate.
	Upsert(ctx context.Context, gameID uuid.UUID, mainStoryHours *float64) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) (*domain.CompletionTime, error)
}

type EngagementScoreRepository interface {
	// Append inserts a new score row; scores are never updated in place.
	Append(ctx context.Context, score *domain.EngagementScore) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*domain.EngagementScore, error)
}

type ImportRecordRepository interface {
	Create(ctx context.Context, record *domain.ImportRecord) error
}

type Repositories struct {
	Game            GameRepository
	Achievement     AchievementRepository
	Guide           GuideRepository
	CompletionTime  CompletionTimeRepository
	EngagementScore EngagementScoreRepository
	ImportRecord    ImportRecordRepository
}
