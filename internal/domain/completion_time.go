package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompletionTime holds the HowLongToBeat estimate for a Game. At most one
// logically current row exists per game: the pipeline upserts it instead of
// appending, and a nil MainStoryHours is a valid overwriting value.
type CompletionTime struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID             uuid.UUID `json:"gameId" gorm:"type:uuid;not null;uniqueIndex"`
	MainStoryHours     *float64  `json:"mainStoryHours"`
	ExtrasHours        *float64  `json:"extrasHours"`
	CompletionistHours *float64  `json:"completionistHours"`
	LastUpdated        time.Time `json:"lastUpdated" gorm:"not null"`
}
