package mapper

import (
	"encoding/json"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"

	"gorm.io/datatypes"
)

type JobMapper struct{}

func NewJobMapper() *JobMapper {
	return &JobMapper{}
}

func (m *JobMapper) ToEntity(j *model.Job) *entity.Job {
	if j == nil {
		return nil
	}

	return &entity.Job{
		Id:          j.Id,
		UserId:      j.UserId,
		Type:        j.Type,
		Payload:     json.RawMessage(j.Payload),
		Status:      j.Status,
		Priority:    j.Priority,
		BatchId:     j.BatchId,
		Attempts:    j.Attempts,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		ClaimedAt:   j.ClaimedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (m *JobMapper) ToModel(j *entity.Job) *model.Job {
	if j == nil {
		return nil
	}

	return &model.Job{
		Id:          j.Id,
		UserId:      j.UserId,
		Type:        j.Type,
		Payload:     datatypes.JSON(j.Payload),
		Status:      j.Status,
		Priority:    j.Priority,
		BatchId:     j.BatchId,
		Attempts:    j.Attempts,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		ClaimedAt:   j.ClaimedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (m *JobMapper) ToEntities(jobs []*model.Job) []*entity.Job {
	entities := make([]*entity.Job, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}
