package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSyncRequest struct {
	Service     string            `json:"service" validate:"required"`
	RunNow      bool              `json:"run_now"`
	Preferences map[string]string `json:"preferences"`
}

type StartSyncResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
}

type SyncSessionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	Service            string     `json:"service"`
	Status             string     `json:"status"`
	CurrentStep        string     `json:"current_step"`
	ProgressPercentage int        `json:"progress_percentage"`
	TotalItems         int        `json:"total_items"`
	ImportedItems      int        `json:"imported_items"`
	FailedItems        int        `json:"failed_items"`
	Error              string     `json:"error,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// SyncProgressMessage travels over the progress topic. Producers (pipeline,
// runner, sync orchestration) publish it; the progress consumer owns the
// sync_sessions writes. Totals are pointers so a producer can update only the
// fields it knows about.
type SyncProgressMessage struct {
	SessionId          uuid.UUID `json:"session_id"`
	UserId             uuid.UUID `json:"user_id"`
	Status             *string   `json:"status,omitempty"`
	CurrentStep        string    `json:"current_step"`
	ProgressPercentage int       `json:"progress_percentage"`
	TotalItems         *int      `json:"total_items,omitempty"`
	ImportedItems      *int      `json:"imported_items,omitempty"`
	FailedItems        *int      `json:"failed_items,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}
