package implementation

import (
	"context"
	"errors"
	"sort"
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/mapper"
	"practicehub-be/internal/model"
	"practicehub-be/internal/repository/contract"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobMapper
}

func NewJobRepository(db *gorm.DB) contract.JobRepository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobMapper(),
	}
}

func (r *JobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) CreateBulk(ctx context.Context, jobs []*entity.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	models := make([]*model.Job, len(jobs))
	for i, j := range jobs {
		models[i] = r.mapper.ToModel(j)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*jobs[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *JobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	var m model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	var models []*model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JobRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Job{}).Count(&count).Error
	return count, err
}

// ClaimNext is the queue's linchpin: the inner SELECT locks candidate rows
// with SKIP LOCKED so concurrent claimants partition the queue instead of
// racing for the same rows, and the guarded UPDATE flips only rows that are
// still queued. RETURNING hands back exactly what this claimant won.
func (r *JobRepositoryImpl) ClaimNext(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Job, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		UPDATE jobs SET status = 'running', claimed_at = now()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = 'queued'`
	args := []interface{}{}
	if userId != uuid.Nil {
		query += ` AND user_id = ?`
		args = append(args, userId)
	}
	query += `
			ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`
	args = append(args, limit)

	var models []*model.Job
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		return nil, err
	}

	jobs := r.mapper.ToEntities(models)
	// RETURNING does not preserve the claim order
	sort.SliceStable(jobs, func(i, j int) bool {
		pi, pj := priorityRank(jobs[i].Priority), priorityRank(jobs[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func priorityRank(priority string) int {
	switch priority {
	case entity.JobPriorityHigh:
		return 0
	case entity.JobPriorityMedium:
		return 1
	default:
		return 2
	}
}

func (r *JobRepositoryImpl) MarkDone(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ? AND status = ?", id, entity.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":       entity.JobStatusDone,
			"completed_at": now,
		}).Error
}

func (r *JobRepositoryImpl) Fail(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) (bool, error) {
	var res struct {
		Status string
	}
	err := r.db.WithContext(ctx).Raw(`
		UPDATE jobs SET
			attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 < ? THEN 'queued' ELSE 'error' END,
			claimed_at = NULL,
			completed_at = CASE WHEN attempts + 1 < ? THEN NULL ELSE now() END
		WHERE id = ?
		RETURNING status`,
		errMsg, maxAttempts, maxAttempts, id,
	).Scan(&res).Error
	if err != nil {
		return false, err
	}
	return res.Status == entity.JobStatusQueued, nil
}

func (r *JobRepositoryImpl) FailPermanent(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.JobStatusError,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   errMsg,
			"completed_at": now,
		}).Error
}
