package contract

import (
	"context"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredEmbedding wraps an Embedding with its similarity score
type ScoredEmbedding struct {
	Embedding  *entity.Embedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type EmbeddingRepository interface {
	// CreateBulkIfAbsent inserts the rows, skipping any that collide on
	// (user_id, owner_type, content_hash, chunk_index). Returns the number
	// actually inserted so re-runs are observable as cache hits.
	CreateBulkIfAbsent(ctx context.Context, embeddings []*entity.Embedding) (inserted int64, err error)

	FindByContentHash(ctx context.Context, userId uuid.UUID, contentHash string) (*entity.Embedding, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByOwner(ctx context.Context, ownerType string, ownerId uuid.UUID) error

	// SearchSimilarWithScore returns embeddings with cosine similarity >=
	// threshold, highest first, truncated to limit. ownerType of "" matches
	// every owner type.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, userId uuid.UUID, ownerType string, limit int, threshold float64) ([]*ScoredEmbedding, error)
}
