package model

import (
	"time"

	"github.com/google/uuid"
)

// AiUsage is append-only. It backs both the per-minute rate check and the
// daily cost cap, so rows are never updated or deleted.
type AiUsage struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index:idx_ai_usage_user_created"`
	Model        string    `gorm:"type:varchar(100);not null"`
	InputTokens  int       `gorm:"not null;default:0"`
	OutputTokens int       `gorm:"not null;default:0"`
	CostUsd      float64   `gorm:"type:numeric(12,6);not null;default:0"`
	CreatedAt    time.Time `gorm:"default:now();not null;index:idx_ai_usage_user_created"`
}

func (AiUsage) TableName() string {
	return "ai_usage"
}
