package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeNormalize = "normalize"
	JobTypeEmbed     = "embed"
	JobTypeSync      = "sync"

	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusError   = "error"

	JobPriorityHigh   = "high"
	JobPriorityMedium = "medium"
	JobPriorityLow    = "low"
)

func IsValidJobType(t string) bool {
	return t == JobTypeNormalize || t == JobTypeEmbed || t == JobTypeSync
}

type Job struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Type        string
	Payload     json.RawMessage
	Status      string
	Priority    string
	BatchId     *uuid.UUID
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}
