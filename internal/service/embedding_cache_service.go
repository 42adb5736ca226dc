package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/repository/unitofwork"
	"practicehub-be/pkg/embedding"
	"practicehub-be/pkg/utils"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200

	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	// Flat price estimate per input token across embedding models.
	embedCostPerTokenUsd = 0.02 / 1_000_000
)

type IEmbeddingCacheService interface {
	// GenerateAndStore chunks the document, generates vectors for chunks
	// whose content hash is not already known, and persists the rows. Chunks
	// served from cache never touch the provider or the guardrail ledger.
	GenerateAndStore(ctx context.Context, userId uuid.UUID, ownerType string, ownerId uuid.UUID, document string, meta json.RawMessage) (*dto.EmbedResult, error)

	// FindSimilar embeds the query (one guarded call, cached by hash) and
	// returns stored embeddings above the similarity threshold.
	FindSimilar(ctx context.Context, userId uuid.UUID, query string, ownerType string, limit int, threshold float64) ([]*dto.SimilarEmbedding, error)

	// InvalidateOwner drops all stored embeddings for an owner, used before
	// a full re-embed of changed content.
	InvalidateOwner(ctx context.Context, ownerType string, ownerId uuid.UUID) error

	ContentHash(text string) string
}

type embeddingCacheService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.Provider
	guardrails IGuardrailService
	memCache   *gocache.Cache
	log        logger.ILogger
}

func NewEmbeddingCacheService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.Provider,
	guardrails IGuardrailService,
	log logger.ILogger,
) IEmbeddingCacheService {
	return &embeddingCacheService{
		uowFactory: uowFactory,
		provider:   provider,
		guardrails: guardrails,
		memCache:   gocache.New(30*time.Minute, 10*time.Minute),
		log:        log,
	}
}

func (s *embeddingCacheService) ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func estimateTokens(text string) int {
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

func (s *embeddingCacheService) cacheKey(userId uuid.UUID, contentHash string) string {
	return userId.String() + "|" + contentHash
}

// vectorForChunk resolves a vector cheapest-first: process cache, then the
// embeddings table, then one guarded provider call.
func (s *embeddingCacheService) vectorForChunk(ctx context.Context, userId uuid.UUID, chunk string, contentHash string, taskType string) (vector []float32, cacheHit bool, err error) {
	key := s.cacheKey(userId, contentHash)
	if cached, found := s.memCache.Get(key); found {
		return cached.([]float32), true, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.EmbeddingRepository().FindByContentHash(ctx, userId, contentHash)
	if err != nil {
		return nil, false, err
	}
	if stored != nil {
		s.memCache.Set(key, stored.EmbeddingValue, gocache.DefaultExpiration)
		return stored.EmbeddingValue, true, nil
	}

	var generated []float32
	reason, err := s.guardrails.WithGuardrails(ctx, userId, func(ctx context.Context) (*dto.AiUsageReport, error) {
		result, genErr := s.provider.Generate(ctx, chunk, taskType)
		if genErr != nil {
			return nil, genErr
		}
		generated = result.Values
		tokens := estimateTokens(chunk)
		return &dto.AiUsageReport{
			Model:       result.Model,
			InputTokens: tokens,
			CostUsd:     float64(tokens) * embedCostPerTokenUsd,
		}, nil
	})
	if err != nil {
		return nil, false, NewStageFailure(FailureTransient, err)
	}
	if reason != BlockNone {
		return nil, false, NewStageFailure(FailureBlocked, fmt.Errorf("embedding call blocked: %s", reason))
	}

	s.memCache.Set(key, generated, gocache.DefaultExpiration)
	return generated, false, nil
}

func (s *embeddingCacheService) GenerateAndStore(ctx context.Context, userId uuid.UUID, ownerType string, ownerId uuid.UUID, document string, meta json.RawMessage) (*dto.EmbedResult, error) {
	chunks := utils.SplitText(document, chunkSize, chunkOverlap)

	result := &dto.EmbedResult{OwnerId: ownerId, Chunks: len(chunks)}
	rows := make([]*entity.Embedding, 0, len(chunks))

	for i, chunk := range chunks {
		contentHash := s.ContentHash(chunk)

		vector, cacheHit, err := s.vectorForChunk(ctx, userId, chunk, contentHash, taskTypeDocument)
		if err != nil {
			return nil, err
		}
		if cacheHit {
			result.CacheHits++
		}

		rows = append(rows, &entity.Embedding{
			Id:             uuid.New(),
			UserId:         userId,
			OwnerType:      ownerType,
			OwnerId:        ownerId,
			Document:       chunk,
			EmbeddingValue: vector,
			ContentHash:    contentHash,
			ChunkIndex:     i,
			Meta:           meta,
			CreatedAt:      time.Now(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	inserted, err := uow.EmbeddingRepository().CreateBulkIfAbsent(ctx, rows)
	if err != nil {
		return nil, err
	}
	result.NewEmbeddings = int(inserted)

	s.log.Info("embedding", "stored embeddings", map[string]interface{}{
		"owner_type": ownerType,
		"owner_id":   ownerId.String(),
		"chunks":     result.Chunks,
		"new":        result.NewEmbeddings,
		"cache_hits": result.CacheHits,
	})

	return result, nil
}

func (s *embeddingCacheService) FindSimilar(ctx context.Context, userId uuid.UUID, query string, ownerType string, limit int, threshold float64) ([]*dto.SimilarEmbedding, error) {
	queryHash := s.ContentHash(query)
	vector, _, err := s.vectorForChunk(ctx, userId, query, queryHash, taskTypeQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.EmbeddingRepository().SearchSimilarWithScore(ctx, vector, userId, ownerType, limit, threshold)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SimilarEmbedding, len(scored))
	for i, hit := range scored {
		results[i] = &dto.SimilarEmbedding{
			Id:         hit.Embedding.Id,
			OwnerType:  hit.Embedding.OwnerType,
			OwnerId:    hit.Embedding.OwnerId,
			Document:   hit.Embedding.Document,
			Similarity: hit.Similarity,
		}
	}
	return results, nil
}

func (s *embeddingCacheService) InvalidateOwner(ctx context.Context, ownerType string, ownerId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().DeleteByOwner(ctx, ownerType, ownerId)
}
