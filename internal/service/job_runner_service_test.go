package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFixture struct {
	store    *fakeStore
	jobQueue IJobQueueService
	runner   IJobRunnerService
}

func newRunnerFixture(maxAttempts int) *runnerFixture {
	store := newFakeStore()
	jobQueue := NewJobQueueService(newFakeUowFactory(store), maxAttempts, nil)
	return &runnerFixture{
		store:    store,
		jobQueue: jobQueue,
		runner:   NewJobRunnerService(jobQueue, noopLogger{}),
	}
}

func (f *runnerFixture) enqueue(t *testing.T, userId uuid.UUID, jobType string, payload interface{}, opts dto.EnqueueOptions) *entity.Job {
	t.Helper()
	job, err := f.jobQueue.EnqueueTyped(context.Background(), userId, jobType, payload, opts)
	require.NoError(t, err)
	return job
}

func TestProcessPendingJobsDispatchesByType(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(3)

	var handled []uuid.UUID
	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		handled = append(handled, job.Id)
		return nil
	})

	job := f.enqueue(t, uuid.New(), entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []uuid.UUID{job.Id}, handled)
	assert.Equal(t, entity.JobStatusDone, f.store.jobs[0].Status)
	assert.NotNil(t, f.store.jobs[0].CompletedAt)
}

func TestRunnerParksJobWithoutHandler(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(5)

	f.enqueue(t, uuid.New(), entity.JobTypeEmbed,
		&dto.EmbedJobPayload{OwnerType: entity.EmbeddingOwnerInteraction, OwnerId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	job := f.store.jobs[0]
	assert.Equal(t, entity.JobStatusError, job.Status, "missing handler is fatal, no retries")
	assert.Equal(t, 0, job.Attempts)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "no handler registered")
}

func TestRunnerParksMalformedPayloadBeforeDispatch(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(5)

	called := false
	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		called = true
		return nil
	})

	// Corrupt the stored payload after enqueue validation passed.
	job := f.enqueue(t, uuid.New(), entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	job.Payload = []byte(`{"raw_event_id":"not-a-uuid"}`)

	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, called, "handler never sees a payload that fails its schema")
	assert.Equal(t, entity.JobStatusError, f.store.jobs[0].Status)
}

func TestRunnerRequeuesTransientFailures(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(2)

	attempts := 0
	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		attempts++
		return errors.New("upstream unavailable")
	})
	f.enqueue(t, uuid.New(), entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	_, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusQueued, f.store.jobs[0].Status, "first failure requeues")

	_, err = f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusError, f.store.jobs[0].Status, "attempt budget exhausted")
	assert.Equal(t, 2, attempts)

	// Parked jobs stay parked.
	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestRunnerTreatsDuplicateAsSuccess(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(3)

	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		return NewStageFailure(FailureDuplicate, errors.New("already normalized"))
	})
	f.enqueue(t, uuid.New(), entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, entity.JobStatusDone, f.store.jobs[0].Status)
}

func TestRunnerIsolatesBadJobsInSweep(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(1)

	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		return nil
	})

	userId := uuid.New()
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	// No embed handler registered, this one fails.
	f.enqueue(t, userId, entity.JobTypeEmbed,
		&dto.EmbedJobPayload{OwnerType: entity.EmbeddingOwnerInteraction, OwnerId: uuid.New()}, dto.EnqueueOptions{})
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, entity.JobStatusDone, f.store.jobs[0].Status)
	assert.Equal(t, entity.JobStatusError, f.store.jobs[1].Status)
	assert.Equal(t, entity.JobStatusDone, f.store.jobs[2].Status)
}

func TestBatchFinalizerFiresOnlyWhenJobsSettle(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(2)

	var mu sync.Mutex
	finalized := make(map[uuid.UUID]int)
	f.runner.SetBatchFinalizer(func(ctx context.Context, userId uuid.UUID, batchId uuid.UUID) error {
		mu.Lock()
		defer mu.Unlock()
		finalized[batchId]++
		return nil
	})

	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		return nil
	})
	f.runner.RegisterHandler(entity.JobTypeEmbed, func(ctx context.Context, job *entity.Job) error {
		return errors.New("provider down")
	})

	userId := uuid.New()
	batchId := uuid.New()
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()},
		dto.EnqueueOptions{BatchId: &batchId})
	f.enqueue(t, userId, entity.JobTypeEmbed,
		&dto.EmbedJobPayload{OwnerType: entity.EmbeddingOwnerInteraction, OwnerId: uuid.New()},
		dto.EnqueueOptions{BatchId: &batchId})
	// No batch, no finalizer call.
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	_, err := f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized[batchId], "requeued embed job is still active, only the done job settled")

	_, err = f.runner.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, finalized[batchId], "embed job parked after its last attempt")
	assert.Len(t, finalized, 1)
}

func TestProcessUserJobsLeavesChainedWorkForNextPass(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(3)
	userId := uuid.New()

	// The normalize handler fans out an embed job, mirroring the pipeline.
	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		_, err := f.jobQueue.EnqueueTyped(ctx, job.UserId, entity.JobTypeEmbed,
			&dto.EmbedJobPayload{OwnerType: entity.EmbeddingOwnerInteraction, OwnerId: uuid.New()},
			dto.EnqueueOptions{BatchId: job.BatchId})
		return err
	})
	embedRuns := 0
	f.runner.RegisterHandler(entity.JobTypeEmbed, func(ctx context.Context, job *entity.Job) error {
		embedRuns++
		return nil
	})

	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	// Other users' jobs stay untouched.
	other := f.enqueue(t, uuid.New(), entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessUserJobs(ctx, userId, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded, "only the jobs claimed this pass are counted")
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, embedRuns, "fanned out embeds wait for the next pass")

	result, err = f.runner.ProcessUserJobs(ctx, userId, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, embedRuns)
	assert.Equal(t, entity.JobStatusQueued, other.Status)
}

func TestProcessUserJobsDoesNotRetryWithinAPass(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(3)
	userId := uuid.New()

	handlerRuns := 0
	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		handlerRuns++
		return errors.New("upstream unavailable")
	})
	f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessUserJobs(ctx, userId, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed, "one job fails once, not once per attempt")
	assert.Equal(t, 1, handlerRuns)
	assert.Equal(t, 1, f.store.jobs[0].Attempts)
	assert.Equal(t, entity.JobStatusQueued, f.store.jobs[0].Status, "the requeue waits for a later pass")
}

func TestProcessUserJobsReportsErrors(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(1)
	userId := uuid.New()

	f.runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		return NewStageFailure(FailureValidation, errors.New("raw event missing"))
	})
	job := f.enqueue(t, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})

	result, err := f.runner.ProcessUserJobs(ctx, userId, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, job.Id, result.Errors[0].JobId)
	assert.Contains(t, result.Errors[0].Message, "raw event missing")
}
