package domain

import (
	"time"

	"github.com/google/uuid"
)

// EngagementScore is an append-only audit log: every analysis run adds
// exactly one row, even when the pipeline could only compute a zero score.
// Notes carries the semicolon-joined diagnostic trail of that run.
type EngagementScore struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID       uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	Score        float64   `json:"score" gorm:"not null"`
	Method       string    `json:"method"`
	CalculatedAt time.Time `json:"calculatedAt" gorm:"not null"`
	Notes        *string   `json:"notes"`
}
