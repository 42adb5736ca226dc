package mapper

import (
	"encoding/json"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type EmbeddingMapper struct{}

func NewEmbeddingMapper() *EmbeddingMapper {
	return &EmbeddingMapper{}
}

func (m *EmbeddingMapper) ToEntity(e *model.Embedding) *entity.Embedding {
	if e == nil {
		return nil
	}

	return &entity.Embedding{
		Id:             e.Id,
		UserId:         e.UserId,
		OwnerType:      e.OwnerType,
		OwnerId:        e.OwnerId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ContentHash:    e.ContentHash,
		ChunkIndex:     e.ChunkIndex,
		Meta:           json.RawMessage(e.Meta),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *EmbeddingMapper) ToModel(e *entity.Embedding) *model.Embedding {
	if e == nil {
		return nil
	}

	return &model.Embedding{
		Id:             e.Id,
		UserId:         e.UserId,
		OwnerType:      e.OwnerType,
		OwnerId:        e.OwnerId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ContentHash:    e.ContentHash,
		ChunkIndex:     e.ChunkIndex,
		Meta:           datatypes.JSON(e.Meta),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *EmbeddingMapper) ToEntities(embeddings []*model.Embedding) []*entity.Embedding {
	entities := make([]*entity.Embedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *EmbeddingMapper) ToModels(embeddings []*entity.Embedding) []*model.Embedding {
	models := make([]*model.Embedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
