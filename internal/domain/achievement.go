package domain

import (
	"github.com/google/uuid"
)

// Achievement belongs to a Game. Name is the natural key used when merging
// re-imported Steam data. CompletionRate is the global completion percent
// (0-100) when Steam reports one. At most one achievement per game carries
// IsMainStoryCompletion after a classification run.
type Achievement struct {
	ID                    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID                uuid.UUID `json:"gameId" gorm:"type:uuid;not null;uniqueIndex:idx_game_achievement_name"`
	Name                  string    `json:"name" gorm:"not null;uniqueIndex:idx_game_achievement_name"`
	Description           *string   `json:"description"`
	Points                *int      `json:"points"`
	CompletionRate        *float64  `json:"completionRate"`
	IsMainStoryCompletion bool      `json:"isMainStoryCompletion" gorm:"not null;default:false"`
}
