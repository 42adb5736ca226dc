package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SyncStatusStarted    = "started"
	SyncStatusImporting  = "importing"
	SyncStatusProcessing = "processing"
	SyncStatusCompleted  = "completed"
	SyncStatusFailed     = "failed"
)

// SyncError is stored as JSON in the session's error_details column.
type SyncError struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type SyncSession struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	Service            string
	Status             string
	CurrentStep        string
	ProgressPercentage int
	TotalItems         int
	ImportedItems      int
	FailedItems        int
	ErrorDetails       *SyncError
	StartedAt          time.Time
	CompletedAt        *time.Time
}

// IsTerminal reports whether no further transitions may leave this state.
func (s *SyncSession) IsTerminal() bool {
	return s.Status == SyncStatusCompleted || s.Status == SyncStatusFailed
}
