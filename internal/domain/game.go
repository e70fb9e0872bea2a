package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is the aggregate root for everything the analysis pipeline touches.
// Games are created by the import flow or the REST API; the pipeline only
// reads and annotates them.
type Game struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SteamAppID  *int64    `json:"steamAppId" gorm:"uniqueIndex"`
	Title       string    `json:"title" gorm:"not null"`
	Genre       *string   `json:"genre"`
	Platform    *string   `json:"platform"`
	ReleaseDate *string   `json:"releaseDate"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`

	Achievements     []Achievement     `json:"achievements" gorm:"constraint:OnDelete:CASCADE"`
	Guides           []Guide           `json:"guides" gorm:"constraint:OnDelete:CASCADE"`
	CompletionTimes  []CompletionTime  `json:"completionTimes" gorm:"constraint:OnDelete:CASCADE"`
	EngagementScores []EngagementScore `json:"engagementScores" gorm:"constraint:OnDelete:CASCADE"`
}
