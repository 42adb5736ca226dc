package mapper

import (
	"encoding/json"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"

	"gorm.io/datatypes"
)

type RawEventMapper struct{}

func NewRawEventMapper() *RawEventMapper {
	return &RawEventMapper{}
}

func (m *RawEventMapper) ToEntity(e *model.RawEvent) *entity.RawEvent {
	if e == nil {
		return nil
	}

	return &entity.RawEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		Provider:   e.Provider,
		SourceId:   e.SourceId,
		OccurredAt: e.OccurredAt,
		Payload:    json.RawMessage(e.Payload),
		SourceMeta: json.RawMessage(e.SourceMeta),
		BatchId:    e.BatchId,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *RawEventMapper) ToModel(e *entity.RawEvent) *model.RawEvent {
	if e == nil {
		return nil
	}

	return &model.RawEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		Provider:   e.Provider,
		SourceId:   e.SourceId,
		OccurredAt: e.OccurredAt,
		Payload:    datatypes.JSON(e.Payload),
		SourceMeta: datatypes.JSON(e.SourceMeta),
		BatchId:    e.BatchId,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *RawEventMapper) ToEntities(events []*model.RawEvent) []*entity.RawEvent {
	entities := make([]*entity.RawEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
