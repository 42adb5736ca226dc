package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EmbeddingOwnerInteraction = "interaction"
	EmbeddingOwnerNote        = "note"
)

type Embedding struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	OwnerType      string
	OwnerId        uuid.UUID
	Document       string
	EmbeddingValue []float32
	ContentHash    string
	ChunkIndex     int
	Meta           json.RawMessage
	CreatedAt      time.Time
}
