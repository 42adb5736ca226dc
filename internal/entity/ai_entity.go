package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiQuota holds one row per user. PeriodStart rolls forward to the first of
// the current month on read, resetting CreditsLeft to the monthly allotment.
type AiQuota struct {
	UserId      uuid.UUID
	PeriodStart time.Time
	CreditsLeft int
	UpdatedAt   time.Time
}

type AiUsage struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Model        string
	InputTokens  int
	OutputTokens int
	CostUsd      float64
	CreatedAt    time.Time
}
