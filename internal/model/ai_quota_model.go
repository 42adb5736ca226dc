package model

import (
	"time"

	"github.com/google/uuid"
)

type AiQuota struct {
	UserId      uuid.UUID `gorm:"type:uuid;primaryKey"`
	PeriodStart time.Time `gorm:"not null"`
	CreditsLeft int       `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (AiQuota) TableName() string {
	return "ai_quotas"
}
