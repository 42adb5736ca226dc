package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SyncSession struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	Service            string         `gorm:"type:varchar(50);not null"`
	Status             string         `gorm:"type:varchar(50);not null;default:'started'"`
	CurrentStep        string         `gorm:"type:varchar(255)"`
	ProgressPercentage int            `gorm:"not null;default:0"`
	TotalItems         int            `gorm:"not null;default:0"`
	ImportedItems      int            `gorm:"not null;default:0"`
	FailedItems        int            `gorm:"not null;default:0"`
	ErrorDetails       datatypes.JSON `gorm:"type:jsonb"`
	StartedAt          time.Time      `gorm:"autoCreateTime"`
	CompletedAt        *time.Time
}

func (SyncSession) TableName() string {
	return "sync_sessions"
}
