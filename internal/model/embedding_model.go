package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Embedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_embeddings_user_owner_hash_chunk"`
	OwnerType      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_embeddings_user_owner_hash_chunk"`
	OwnerId        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_embeddings_user_owner_hash_chunk;index"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text are 768-dim
	ContentHash    string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_embeddings_user_owner_hash_chunk;index"`
	ChunkIndex     int             `gorm:"not null;default:0;uniqueIndex:idx_embeddings_user_owner_hash_chunk"`
	Meta           datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (Embedding) TableName() string {
	return "embeddings"
}
