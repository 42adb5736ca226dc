package dto

import (
	"encoding/json"
	"fmt"

	"practicehub-be/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var payloadValidator = validator.New()

// Per-type payload schemas. Payloads are stored as opaque JSONB and decoded
// against the schema for their job type right before dispatch, so a malformed
// payload fails as a validation error instead of blowing up inside a handler.

type NormalizeJobPayload struct {
	RawEventId uuid.UUID `json:"raw_event_id" validate:"required"`
}

type EmbedJobPayload struct {
	OwnerType string    `json:"owner_type" validate:"required,oneof=interaction note"`
	OwnerId   uuid.UUID `json:"owner_id" validate:"required"`
}

type SyncJobPayload struct {
	SessionId   uuid.UUID         `json:"session_id" validate:"required"`
	Service     string            `json:"service" validate:"required"`
	Preferences map[string]string `json:"preferences"`
}

// DecodeJobPayload returns the typed payload for the job type, or an error
// when the payload does not satisfy the type's schema.
func DecodeJobPayload(jobType string, raw json.RawMessage) (interface{}, error) {
	var payload interface{}
	switch jobType {
	case entity.JobTypeNormalize:
		payload = &NormalizeJobPayload{}
	case entity.JobTypeEmbed:
		payload = &EmbedJobPayload{}
	case entity.JobTypeSync:
		payload = &SyncJobPayload{}
	default:
		return nil, fmt.Errorf("no payload schema for job type %q", jobType)
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", jobType, err)
	}
	if err := payloadValidator.Struct(payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", jobType, err)
	}
	return payload, nil
}

// Requests

type EnqueueOptions struct {
	Priority string     `json:"priority" validate:"omitempty,oneof=high medium low"`
	BatchId  *uuid.UUID `json:"batch_id"`
}

type EnqueueJobRequest struct {
	Type    string          `json:"type" validate:"required,oneof=normalize embed sync"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	EnqueueOptions
}

type EnqueueBatchItem struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
	EnqueueOptions
}

type EnqueueBatchRequest struct {
	Type  string             `json:"type" validate:"required,oneof=normalize embed sync"`
	Items []EnqueueBatchItem `json:"items" validate:"required,min=1,dive"`
}

type RunJobsRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Results

type JobError struct {
	JobId   uuid.UUID `json:"job_id"`
	Message string    `json:"message"`
}

// SweepResult reports a global ProcessPendingJobs pass.
type SweepResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// RunResult reports a synchronous per-user run.
type RunResult struct {
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []JobError `json:"errors"`
}

type EnqueueJobResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

type EnqueueBatchResponse struct {
	JobIds []uuid.UUID `json:"job_ids"`
}
