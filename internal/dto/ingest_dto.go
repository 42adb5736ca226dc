package dto

import "github.com/google/uuid"

// Stage results distinguish "created" from "already exists" so that callers
// (and tests) can observe idempotent re-processing directly.

type CaptureResult struct {
	RawEventId uuid.UUID `json:"raw_event_id"`
	Created    bool      `json:"created"`
}

type NormalizeResult struct {
	InteractionId uuid.UUID `json:"interaction_id"`
	Created       bool      `json:"created"`
}

type EmbedResult struct {
	OwnerId       uuid.UUID `json:"owner_id"`
	Chunks        int       `json:"chunks"`
	NewEmbeddings int       `json:"new_embeddings"`
	CacheHits     int       `json:"cache_hits"`
}

type SimilaritySearchRequest struct {
	Query     string  `json:"query" validate:"required"`
	OwnerType string  `json:"owner_type" validate:"omitempty,oneof=interaction note"`
	Limit     int     `json:"limit" validate:"omitempty,min=1,max=50"`
	Threshold float64 `json:"threshold" validate:"omitempty,min=0,max=1"`
}

type SimilarEmbedding struct {
	Id         uuid.UUID `json:"id"`
	OwnerType  string    `json:"owner_type"`
	OwnerId    uuid.UUID `json:"owner_id"`
	Document   string    `json:"document"`
	Similarity float64   `json:"similarity"`
}
