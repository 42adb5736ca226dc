package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RawEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_raw_events_user_provider_source"`
	Provider   string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_raw_events_user_provider_source"`
	SourceId   string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_raw_events_user_provider_source"`
	OccurredAt time.Time      `gorm:"not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	SourceMeta datatypes.JSON `gorm:"type:jsonb"`
	BatchId    *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (RawEvent) TableName() string {
	return "raw_events"
}
