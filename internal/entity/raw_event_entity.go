package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawEvent is immutable once written. Uniqueness is (UserId, Provider,
// SourceId); a duplicate capture must no-op, not error.
type RawEvent struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Provider   string
	SourceId   string
	OccurredAt time.Time
	Payload    json.RawMessage
	SourceMeta json.RawMessage
	BatchId    *uuid.UUID
	CreatedAt  time.Time
}
