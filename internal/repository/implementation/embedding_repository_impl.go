package implementation

import (
	"context"
	"errors"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/mapper"
	"practicehub-be/internal/model"
	"practicehub-be/internal/repository/contract"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingMapper
}

func NewEmbeddingRepository(db *gorm.DB) contract.EmbeddingRepository {
	return &EmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingMapper(),
	}
}

func (r *EmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmbeddingRepositoryImpl) CreateBulkIfAbsent(ctx context.Context, embeddings []*entity.Embedding) (int64, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}
	models := r.mapper.ToModels(embeddings)
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "owner_type"}, {Name: "owner_id"}, {Name: "content_hash"}, {Name: "chunk_index"}},
		DoNothing: true,
	}).Create(models)
	if tx.Error != nil {
		return 0, tx.Error
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return tx.RowsAffected, nil
}

func (r *EmbeddingRepositoryImpl) FindByContentHash(ctx context.Context, userId uuid.UUID, contentHash string) (*entity.Embedding, error) {
	var m model.Embedding
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_hash = ?", userId, contentHash).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	var m model.Embedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	var models []*model.Embedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Embedding{}).Count(&count).Error
	return count, err
}

func (r *EmbeddingRepositoryImpl) DeleteByOwner(ctx context.Context, ownerType string, ownerId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerId).
		Delete(&model.Embedding{}).Error
}

// SearchSimilarWithScore computes cosine similarity in the database:
// pgvector's <=> operator is cosine distance, so 1 - distance is the score.
func (r *EmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, userId uuid.UUID, ownerType string, limit int, threshold float64) ([]*contract.ScoredEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Embedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("embeddings").
		Select("embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)
	if ownerType != "" {
		query = query.Where("owner_type = ?", ownerType)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredEmbedding{
			Embedding:  r.mapper.ToEntity(&res.Embedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
