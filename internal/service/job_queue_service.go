package service

import (
	"context"
	"encoding/json"
	"time"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"
	"practicehub-be/internal/repository/unitofwork"
	"practicehub-be/pkg/events"
	pkgNats "practicehub-be/pkg/nats"

	"github.com/google/uuid"
)

type IJobQueueService interface {
	Enqueue(ctx context.Context, userId uuid.UUID, req *dto.EnqueueJobRequest) (*dto.EnqueueJobResponse, error)
	EnqueueBatch(ctx context.Context, userId uuid.UUID, req *dto.EnqueueBatchRequest) (*dto.EnqueueBatchResponse, error)

	// EnqueueTyped is the programmatic path used by the pipeline itself.
	// The payload struct is marshalled and validated against the job type's
	// schema before the row is written.
	EnqueueTyped(ctx context.Context, userId uuid.UUID, jobType string, payload interface{}, opts dto.EnqueueOptions) (*entity.Job, error)

	// ClaimNext hands out up to limit queued jobs, marking them running.
	// uuid.Nil claims across all users.
	ClaimNext(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Job, error)

	MarkDone(ctx context.Context, jobId uuid.UUID) error

	// MarkFailed routes the failure by kind: retryable kinds consume an
	// attempt and may requeue, permanent kinds park the job immediately.
	MarkFailed(ctx context.Context, job *entity.Job, failure error) (requeued bool, err error)

	GetJob(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*entity.Job, error)
	ListJobs(ctx context.Context, userId uuid.UUID, status string) ([]*entity.Job, error)

	// CountActiveInBatch reports jobs in the batch still queued or running.
	CountActiveInBatch(ctx context.Context, batchId uuid.UUID) (int64, error)
}

type jobQueueService struct {
	uowFactory     unitofwork.RepositoryFactory
	maxAttempts    int
	eventPublisher *pkgNats.Publisher
}

func NewJobQueueService(
	uowFactory unitofwork.RepositoryFactory,
	maxAttempts int,
	eventPublisher *pkgNats.Publisher,
) IJobQueueService {
	return &jobQueueService{
		uowFactory:     uowFactory,
		maxAttempts:    maxAttempts,
		eventPublisher: eventPublisher,
	}
}

func (s *jobQueueService) buildJob(userId uuid.UUID, jobType string, payload json.RawMessage, opts dto.EnqueueOptions) (*entity.Job, error) {
	if _, err := dto.DecodeJobPayload(jobType, payload); err != nil {
		return nil, NewStageFailure(FailureValidation, err)
	}

	priority := opts.Priority
	if priority == "" {
		priority = entity.JobPriorityMedium
	}

	return &entity.Job{
		Id:        uuid.New(),
		UserId:    userId,
		Type:      jobType,
		Payload:   payload,
		Status:    entity.JobStatusQueued,
		Priority:  priority,
		BatchId:   opts.BatchId,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (s *jobQueueService) Enqueue(ctx context.Context, userId uuid.UUID, req *dto.EnqueueJobRequest) (*dto.EnqueueJobResponse, error) {
	job, err := s.buildJob(userId, req.Type, req.Payload, req.EnqueueOptions)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JobRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	return &dto.EnqueueJobResponse{JobId: job.Id}, nil
}

func (s *jobQueueService) EnqueueBatch(ctx context.Context, userId uuid.UUID, req *dto.EnqueueBatchRequest) (*dto.EnqueueBatchResponse, error) {
	jobs := make([]*entity.Job, 0, len(req.Items))
	for _, item := range req.Items {
		job, err := s.buildJob(userId, req.Type, item.Payload, item.EnqueueOptions)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JobRepository().CreateBulk(ctx, jobs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(jobs))
	for i, job := range jobs {
		ids[i] = job.Id
	}
	return &dto.EnqueueBatchResponse{JobIds: ids}, nil
}

func (s *jobQueueService) EnqueueTyped(ctx context.Context, userId uuid.UUID, jobType string, payload interface{}, opts dto.EnqueueOptions) (*entity.Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	job, err := s.buildJob(userId, jobType, raw, opts)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JobRepository().Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobQueueService) ClaimNext(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Job, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.JobRepository().ClaimNext(ctx, userId, limit)
}

func (s *jobQueueService) MarkDone(ctx context.Context, jobId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.JobRepository().MarkDone(ctx, jobId)
}

func (s *jobQueueService) MarkFailed(ctx context.Context, job *entity.Job, failure error) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	kind := KindOf(failure)

	if kind.Retryable() {
		requeued, err := uow.JobRepository().Fail(ctx, job.Id, failure.Error(), s.maxAttempts)
		if err != nil {
			return false, err
		}
		if !requeued {
			s.publishExhausted(ctx, job, failure)
		}
		return requeued, nil
	}

	if err := uow.JobRepository().FailPermanent(ctx, job.Id, failure.Error()); err != nil {
		return false, err
	}
	s.publishExhausted(ctx, job, failure)
	return false, nil
}

func (s *jobQueueService) publishExhausted(ctx context.Context, job *entity.Job, failure error) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewJobExhaustedEvent(job.UserId, job.Id, job.Type, failure.Error())
	// Event delivery is best effort, the job row already records the error.
	_ = s.eventPublisher.Publish(ctx, evt)
}

func (s *jobQueueService) GetJob(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*entity.Job, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.JobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.UserOwnedBy{UserID: userId},
	)
}

func (s *jobQueueService) CountActiveInBatch(ctx context.Context, batchId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var total int64
	for _, status := range []string{entity.JobStatusQueued, entity.JobStatusRunning} {
		count, err := uow.JobRepository().Count(ctx,
			specification.ByBatch{BatchID: batchId},
			specification.ByStatus{Status: status},
		)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (s *jobQueueService) ListJobs(ctx context.Context, userId uuid.UUID, status string) ([]*entity.Job, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	return uow.JobRepository().FindAll(ctx, specs...)
}
