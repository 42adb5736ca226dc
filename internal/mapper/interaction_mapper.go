package mapper

import (
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"
)

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToEntity(e *model.Interaction) *entity.Interaction {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Interaction{
		Id:        e.Id,
		UserId:    e.UserId,
		ContactId: e.ContactId,
		Type:      e.Type,
		Subject:   e.Subject,
		BodyText:  e.BodyText,
		Source:    e.Source,
		SourceId:  e.SourceId,
		BatchId:   e.BatchId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *InteractionMapper) ToModel(e *entity.Interaction) *model.Interaction {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Interaction{
		Id:        e.Id,
		UserId:    e.UserId,
		ContactId: e.ContactId,
		Type:      e.Type,
		Subject:   e.Subject,
		BodyText:  e.BodyText,
		Source:    e.Source,
		SourceId:  e.SourceId,
		BatchId:   e.BatchId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *InteractionMapper) ToEntities(interactions []*model.Interaction) []*entity.Interaction {
	entities := make([]*entity.Interaction, len(interactions))
	for i, e := range interactions {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
