package domain

import (
	"time"

	"github.com/google/uuid"
)

// Guide is a community guide attached to a Game. URL is the natural key
// for de-duplication during import; it may be null for manually entered
// guides that only carry text.
type Guide struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID    uuid.UUID  `json:"gameId" gorm:"type:uuid;not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	URL       *string    `json:"url"`
	Author    *string    `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
	PostedAt  *time.Time `json:"postedAt"`

	ParsedContent []ParsedGuideContent `json:"parsedContent" gorm:"constraint:OnDelete:CASCADE"`
}

// ParsedGuideContent caches the extracted text of a guide so re-analysis
// never refetches a page it has already parsed.
type ParsedGuideContent struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GuideID      uuid.UUID `json:"guideId" gorm:"type:uuid;not null;index"`
	Content      string    `json:"content" gorm:"not null"`
	SectionCount int       `json:"sectionCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
