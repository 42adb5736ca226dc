package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Job struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_jobs_user_status"`
	Type        string         `gorm:"type:varchar(50);not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"type:varchar(50);not null;default:'queued';index;index:idx_jobs_user_status"`
	Priority    string         `gorm:"type:varchar(20);not null;default:'medium'"`
	BatchId     *uuid.UUID     `gorm:"type:uuid;index"`
	Attempts    int            `gorm:"not null;default:0"`
	LastError   *string        `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}

func (Job) TableName() string {
	return "jobs"
}
