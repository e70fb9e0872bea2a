package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/dom/game-insights/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameBuilder creates test games with a builder pattern
type GameBuilder struct {
	title        string
	steamAppID   *int64
	achievements []achievementSpec
	guides       []guideSpec
}

type achievementSpec struct {
	name           string
	description    string
	completionRate *float64
}

type guideSpec struct {
	title  string
	url    *string
	cached *string
}

// NewGameBuilder creates a new GameBuilder with default values
func NewGameBuilder() *GameBuilder {
	return &GameBuilder{
		title: fmt.Sprintf("testgame_%s", uuid.New().String()[:8]),
	}
}

// WithTitle sets the game title
func (b *GameBuilder) WithTitle(title string) *GameBuilder {
	b.title = title
	return b
}

// WithSteamAppID sets the Steam app id
func (b *GameBuilder) WithSteamAppID(appID int64) *GameBuilder {
	b.steamAppID = &appID
	return b
}

// WithAchievement adds an achievement; pass a nil rate for an unknown
// completion percent.
func (b *GameBuilder) WithAchievement(name, description string, rate *float64) *GameBuilder {
	b.achievements = append(b.achievements, achievementSpec{
		name:           name,
		description:    description,
		completionRate: rate,
	})
	return b
}

// WithGuide adds a guide with a URL and no cached content
func (b *GameBuilder) WithGuide(title, url string) *GameBuilder {
	b.guides = append(b.guides, guideSpec{title: title, url: &url})
	return b
}

// WithCachedGuide adds a guide whose parsed content is already stored
func (b *GameBuilder) WithCachedGuide(title, url, content string) *GameBuilder {
	b.guides = append(b.guides, guideSpec{title: title, url: &url, cached: &content})
	return b
}

// Build creates the game and its relations in the database
func (b *GameBuilder) Build(t *testing.T, db *gorm.DB) *domain.Game {
	t.Helper()

	game := &domain.Game{
		ID:         uuid.New(),
		Title:      b.title,
		SteamAppID: b.steamAppID,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	for _, spec := range b.achievements {
		desc := spec.description
		ach := &domain.Achievement{
			ID:             uuid.New(),
			GameID:         game.ID,
			Name:           spec.name,
			Description:    &desc,
			CompletionRate: spec.completionRate,
		}
		if err := db.Create(ach).Error; err != nil {
			t.Fatalf("failed to create achievement: %v", err)
		}
		game.Achievements = append(game.Achievements, *ach)
	}

	for _, spec := range b.guides {
		guide := &domain.Guide{
			ID:        uuid.New(),
			GameID:    game.ID,
			Title:     spec.title,
			URL:       spec.url,
			CreatedAt: time.Now(),
		}
		if err := db.Create(guide).Error; err != nil {
			t.Fatalf("failed to create guide: %v", err)
		}
		if spec.cached != nil {
			content := &domain.ParsedGuideContent{
				ID:      uuid.New(),
				GuideID: guide.ID,
				Content: *spec.cached,
			}
			if err := db.Create(content).Error; err != nil {
				t.Fatalf("failed to create parsed content: %v", err)
			}
			guide.ParsedContent = append(guide.ParsedContent, *content)
		}
		game.Guides = append(game.Guides, *guide)
	}

	return game
}

// FloatPtr is a convenience for optional rates and hours in tests
func FloatPtr(v float64) *float64 {
	return &v
}
