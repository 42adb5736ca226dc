package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for everything published on the event bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "SYNC_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeSyncCompleted = "SYNC_COMPLETED"
	TypeSyncFailed    = "SYNC_FAILED"
	TypeJobExhausted  = "JOB_EXHAUSTED"
)

func NewSyncCompletedEvent(userId uuid.UUID, sessionId uuid.UUID, service string, imported int, failed int) Event {
	return BaseEvent{
		Type: TypeSyncCompleted,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"service":    service,
			"imported":   imported,
			"failed":     failed,
		},
		OccurredAt: time.Now(),
	}
}

func NewSyncFailedEvent(userId uuid.UUID, sessionId uuid.UUID, service string, reason string) Event {
	return BaseEvent{
		Type: TypeSyncFailed,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"service":    service,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewJobExhaustedEvent fires when a job has burned all its attempts and
// lands in the terminal error state.
func NewJobExhaustedEvent(userId uuid.UUID, jobId uuid.UUID, jobType string, lastError string) Event {
	return BaseEvent{
		Type: TypeJobExhausted,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"job_id":     jobId.String(),
			"job_type":   jobType,
			"last_error": lastError,
		},
		OccurredAt: time.Now(),
	}
}
