package service

import (
	"context"
	"fmt"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// JobHandler executes one claimed job. The payload has already passed schema
// validation for the job's type.
type JobHandler func(ctx context.Context, job *entity.Job) error

// BatchFinalizer runs after a batch-correlated job settles, giving the sync
// orchestrator a chance to close out the session.
type BatchFinalizer func(ctx context.Context, userId uuid.UUID, batchId uuid.UUID) error

type IJobRunnerService interface {
	RegisterHandler(jobType string, handler JobHandler)
	SetBatchFinalizer(finalizer BatchFinalizer)

	// ProcessPendingJobs claims up to limit queued jobs across all users and
	// runs them. One bad job never stops the sweep.
	ProcessPendingJobs(ctx context.Context, limit int) (*dto.SweepResult, error)

	// ProcessUserJobs claims up to limit of one user's queued jobs and runs
	// each exactly once. Requeued failures and jobs that handlers enqueue
	// along the way stay queued for a later pass, the runner never retries
	// within a single pass.
	ProcessUserJobs(ctx context.Context, userId uuid.UUID, limit int) (*dto.RunResult, error)
}

type jobRunnerService struct {
	jobQueue  IJobQueueService
	handlers  map[string]JobHandler
	finalizer BatchFinalizer
	log       logger.ILogger
}

func NewJobRunnerService(jobQueue IJobQueueService, log logger.ILogger) IJobRunnerService {
	return &jobRunnerService{
		jobQueue: jobQueue,
		handlers: make(map[string]JobHandler),
		log:      log,
	}
}

func (s *jobRunnerService) RegisterHandler(jobType string, handler JobHandler) {
	s.handlers[jobType] = handler
}

func (s *jobRunnerService) SetBatchFinalizer(finalizer BatchFinalizer) {
	s.finalizer = finalizer
}

// settleBatch fires the finalizer once the job is no longer active.
func (s *jobRunnerService) settleBatch(ctx context.Context, job *entity.Job) {
	if s.finalizer == nil || job.BatchId == nil {
		return
	}
	if err := s.finalizer(ctx, job.UserId, *job.BatchId); err != nil {
		s.log.Warn("job_runner", "batch finalize failed", map[string]interface{}{
			"job_id":   job.Id.String(),
			"batch_id": (*job.BatchId).String(),
			"error":    err.Error(),
		})
	}
}

// runOne dispatches a single claimed job and settles its status. The
// returned bool reports success, the error is the handler failure (already
// recorded on the job row).
func (s *jobRunnerService) runOne(ctx context.Context, job *entity.Job) (bool, error) {
	if _, err := dto.DecodeJobPayload(job.Type, job.Payload); err != nil {
		failure := NewStageFailure(FailureValidation, err)
		if _, markErr := s.jobQueue.MarkFailed(ctx, job, failure); markErr != nil {
			return false, markErr
		}
		s.settleBatch(ctx, job)
		return false, failure
	}

	handler, ok := s.handlers[job.Type]
	if !ok {
		failure := NewStageFailure(FailureFatal, fmt.Errorf("no handler registered for job type %q", job.Type))
		if _, markErr := s.jobQueue.MarkFailed(ctx, job, failure); markErr != nil {
			return false, markErr
		}
		s.settleBatch(ctx, job)
		return false, failure
	}

	err := handler(ctx, job)
	if err != nil && KindOf(err) != FailureDuplicate {
		requeued, markErr := s.jobQueue.MarkFailed(ctx, job, err)
		if markErr != nil {
			return false, markErr
		}
		s.log.Warn("job_runner", "job failed", map[string]interface{}{
			"job_id":   job.Id.String(),
			"job_type": job.Type,
			"kind":     string(KindOf(err)),
			"requeued": requeued,
			"error":    err.Error(),
		})
		if !requeued {
			s.settleBatch(ctx, job)
		}
		return false, err
	}

	if err := s.jobQueue.MarkDone(ctx, job.Id); err != nil {
		return false, err
	}
	s.settleBatch(ctx, job)
	return true, nil
}

func (s *jobRunnerService) ProcessPendingJobs(ctx context.Context, limit int) (*dto.SweepResult, error) {
	jobs, err := s.jobQueue.ClaimNext(ctx, uuid.Nil, limit)
	if err != nil {
		return nil, err
	}

	result := &dto.SweepResult{}
	for _, job := range jobs {
		ok, _ := s.runOne(ctx, job)
		result.Processed++
		if !ok {
			result.Failed++
		}
	}

	if result.Processed > 0 {
		s.log.Info("job_runner", "sweep finished", map[string]interface{}{
			"processed": result.Processed,
			"failed":    result.Failed,
		})
	}
	return result, nil
}

func (s *jobRunnerService) ProcessUserJobs(ctx context.Context, userId uuid.UUID, limit int) (*dto.RunResult, error) {
	jobs, err := s.jobQueue.ClaimNext(ctx, userId, limit)
	if err != nil {
		return nil, err
	}

	result := &dto.RunResult{}
	for _, job := range jobs {
		ok, runErr := s.runOne(ctx, job)
		if ok {
			result.Succeeded++
			continue
		}
		result.Failed++
		if runErr != nil {
			result.Errors = append(result.Errors, dto.JobError{
				JobId:   job.Id,
				Message: runErr.Error(),
			})
		}
	}
	return result, nil
}
