package implementation

import (
	"context"
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/mapper"
	"practicehub-be/internal/model"
	"practicehub-be/internal/repository/contract"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AiUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AiMapper
}

func NewAiUsageRepository(db *gorm.DB) contract.AiUsageRepository {
	return &AiUsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewAiMapper(),
	}
}

func (r *AiUsageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AiUsageRepositoryImpl) Create(ctx context.Context, usage *entity.AiUsage) error {
	m := r.mapper.UsageToModel(usage)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*usage = *r.mapper.UsageToEntity(m)
	return nil
}

func (r *AiUsageRepositoryImpl) CountSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AiUsage{}).
		Where("user_id = ? AND created_at > ?", userId, since).
		Count(&count).Error
	return count, err
}

func (r *AiUsageRepositoryImpl) SumCostSince(ctx context.Context, userId uuid.UUID, since time.Time) (float64, error) {
	var res struct {
		Total float64
	}
	err := r.db.WithContext(ctx).Model(&model.AiUsage{}).
		Select("COALESCE(SUM(cost_usd), 0) as total").
		Where("user_id = ? AND created_at >= ?", userId, since).
		Scan(&res).Error
	return res.Total, err
}

func (r *AiUsageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AiUsage, error) {
	var models []*model.AiUsage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.UsagesToEntities(models), nil
}
