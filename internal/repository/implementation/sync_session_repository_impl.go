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
)

type SyncSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncSessionMapper
}

func NewSyncSessionRepository(db *gorm.DB) contract.SyncSessionRepository {
	return &SyncSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncSessionMapper(),
	}
}

func (r *SyncSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SyncSessionRepositoryImpl) Create(ctx context.Context, session *entity.SyncSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyncSessionRepositoryImpl) Update(ctx context.Context, session *entity.SyncSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyncSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SyncSession, error) {
	var m model.SyncSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SyncSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncSession, error) {
	var models []*model.SyncSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SyncSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
