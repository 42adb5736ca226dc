package implementation

import (
	"context"
	"errors"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/mapper"
	"practicehub-be/internal/model"
	"practicehub-be/internal/repository/contract"
	"practicehub-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RawEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RawEventMapper
}

func NewRawEventRepository(db *gorm.DB) contract.RawEventRepository {
	return &RawEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewRawEventMapper(),
	}
}

func (r *RawEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RawEventRepositoryImpl) CreateIfAbsent(ctx context.Context, event *entity.RawEvent) (bool, error) {
	m := r.mapper.ToModel(event)
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(m)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return false, nil
	}
	*event = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *RawEventRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RawEvent, error) {
	var m model.RawEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RawEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RawEvent, error) {
	var models []*model.RawEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *RawEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.RawEvent{}).Count(&count).Error
	return count, err
}
