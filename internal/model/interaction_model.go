package model

import (
	"time"

	"github.com/google/uuid"
)

type Interaction struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_interactions_user_source_source_id"`
	ContactId *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"type:varchar(50);not null"`
	Subject   string     `gorm:"type:varchar(500)"`
	BodyText  string     `gorm:"type:text"`
	Source    string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_interactions_user_source_source_id"`
	SourceId  string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_interactions_user_source_source_id"`
	BatchId   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Interaction) TableName() string {
	return "interactions"
}
