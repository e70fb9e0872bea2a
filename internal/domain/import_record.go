package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Import statuses recorded per app id.
const (
	ImportStatusOK      = "ok"
	ImportStatusPartial = "partial"
	ImportStatusError   = "error"
)

// ImportRecord logs one Steam import request: the raw app-id input and the
// per-app outcome array as JSON.
type ImportRecord struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AppIDs    string         `json:"appIds" gorm:"not null"`
	Results   datatypes.JSON `json:"results" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt"`
}
