package mapper

import (
	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"
)

type AiMapper struct{}

func NewAiMapper() *AiMapper {
	return &AiMapper{}
}

func (m *AiMapper) QuotaToEntity(q *model.AiQuota) *entity.AiQuota {
	if q == nil {
		return nil
	}
	return &entity.AiQuota{
		UserId:      q.UserId,
		PeriodStart: q.PeriodStart,
		CreditsLeft: q.CreditsLeft,
		UpdatedAt:   q.UpdatedAt,
	}
}

func (m *AiMapper) QuotaToModel(q *entity.AiQuota) *model.AiQuota {
	if q == nil {
		return nil
	}
	return &model.AiQuota{
		UserId:      q.UserId,
		PeriodStart: q.PeriodStart,
		CreditsLeft: q.CreditsLeft,
		UpdatedAt:   q.UpdatedAt,
	}
}

func (m *AiMapper) UsageToEntity(u *model.AiUsage) *entity.AiUsage {
	if u == nil {
		return nil
	}
	return &entity.AiUsage{
		Id:           u.Id,
		UserId:       u.UserId,
		Model:        u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CostUsd:      u.CostUsd,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *AiMapper) UsageToModel(u *entity.AiUsage) *model.AiUsage {
	if u == nil {
		return nil
	}
	return &model.AiUsage{
		Id:           u.Id,
		UserId:       u.UserId,
		Model:        u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CostUsd:      u.CostUsd,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *AiMapper) UsagesToEntities(usages []*model.AiUsage) []*entity.AiUsage {
	entities := make([]*entity.AiUsage, len(usages))
	for i, u := range usages {
		entities[i] = m.UsageToEntity(u)
	}
	return entities
}
