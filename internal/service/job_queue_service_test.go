package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizePayload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(&dto.NormalizeJobPayload{RawEventId: uuid.New()})
	require.NoError(t, err)
	return raw
}

func TestEnqueueValidatesPayloadAgainstSchema(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)
	userId := uuid.New()

	resp, err := svc.Enqueue(ctx, userId, &dto.EnqueueJobRequest{
		Type:    entity.JobTypeNormalize,
		Payload: normalizePayload(t),
	})
	require.NoError(t, err)
	require.Len(t, store.jobs, 1)

	job := store.jobs[0]
	assert.Equal(t, resp.JobId, job.Id)
	assert.Equal(t, entity.JobStatusQueued, job.Status)
	assert.Equal(t, entity.JobPriorityMedium, job.Priority, "priority defaults to medium")
	assert.Equal(t, userId, job.UserId)

	// Schema violation never reaches storage.
	_, err = svc.Enqueue(ctx, userId, &dto.EnqueueJobRequest{
		Type:    entity.JobTypeEmbed,
		Payload: json.RawMessage(`{"owner_type":"contact","owner_id":"` + uuid.New().String() + `"}`),
	})
	require.Error(t, err)
	assert.Equal(t, FailureValidation, KindOf(err))
	assert.Len(t, store.jobs, 1)
}

func TestEnqueueBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)
	batchId := uuid.New()

	items := make([]dto.EnqueueBatchItem, 3)
	for i := range items {
		items[i] = dto.EnqueueBatchItem{
			Payload:        normalizePayload(t),
			EnqueueOptions: dto.EnqueueOptions{BatchId: &batchId, Priority: entity.JobPriorityHigh},
		}
	}

	resp, err := svc.EnqueueBatch(ctx, uuid.New(), &dto.EnqueueBatchRequest{
		Type:  entity.JobTypeNormalize,
		Items: items,
	})
	require.NoError(t, err)
	assert.Len(t, resp.JobIds, 3)
	require.Len(t, store.jobs, 3)
	for _, job := range store.jobs {
		assert.Equal(t, entity.JobPriorityHigh, job.Priority)
		require.NotNil(t, job.BatchId)
		assert.Equal(t, batchId, *job.BatchId)
	}
}

func TestClaimNextScopes(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)

	alice := uuid.New()
	bob := uuid.New()
	for _, userId := range []uuid.UUID{alice, alice, bob} {
		_, err := svc.EnqueueTyped(ctx, userId, entity.JobTypeNormalize,
			&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
		require.NoError(t, err)
	}

	claimed, err := svc.ClaimNext(ctx, alice, 10)
	require.NoError(t, err)
	assert.Len(t, claimed, 2, "user scoped claim skips other users")
	for _, job := range claimed {
		assert.Equal(t, entity.JobStatusRunning, job.Status)
	}

	// uuid.Nil claims globally; already running jobs are not handed out again.
	claimed, err = svc.ClaimNext(ctx, uuid.Nil, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, bob, claimed[0].UserId)
}

func TestMarkFailedRetriesTransientUntilAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 2, nil)

	job, err := svc.EnqueueTyped(ctx, uuid.New(), entity.JobTypeNormalize,
		&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)

	requeued, err := svc.MarkFailed(ctx, job, errors.New("connection refused"))
	require.NoError(t, err)
	assert.True(t, requeued)

	stored := store.jobs[0]
	assert.Equal(t, entity.JobStatusQueued, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.LastError)
	assert.Contains(t, *stored.LastError, "connection refused")

	requeued, err = svc.MarkFailed(ctx, job, errors.New("connection refused"))
	require.NoError(t, err)
	assert.False(t, requeued)
	assert.Equal(t, entity.JobStatusError, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
}

func TestMarkFailedParksPermanentKindsImmediately(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 5, nil)

	job, err := svc.EnqueueTyped(ctx, uuid.New(), entity.JobTypeNormalize,
		&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)

	failure := NewStageFailure(FailureValidation, fmt.Errorf("payload does not match schema"))
	requeued, err := svc.MarkFailed(ctx, job, failure)
	require.NoError(t, err)
	assert.False(t, requeued, "validation failures never retry")
	assert.Equal(t, entity.JobStatusError, store.jobs[0].Status)
	assert.Equal(t, 0, store.jobs[0].Attempts, "no attempt budget consumed")
}

func TestMarkFailedParksBlockedWithReason(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)

	job, err := svc.EnqueueTyped(ctx, uuid.New(), entity.JobTypeEmbed,
		&dto.EmbedJobPayload{OwnerType: entity.EmbeddingOwnerInteraction, OwnerId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)

	failure := NewStageFailure(FailureBlocked, fmt.Errorf("embedding call blocked: rate_limited"))
	requeued, err := svc.MarkFailed(ctx, job, failure)
	require.NoError(t, err)
	assert.False(t, requeued, "guardrail blocks never auto-retry")
	assert.Equal(t, entity.JobStatusError, store.jobs[0].Status)
	assert.Equal(t, 0, store.jobs[0].Attempts, "no attempt budget consumed")
	require.NotNil(t, store.jobs[0].LastError)
	assert.Contains(t, *store.jobs[0].LastError, "rate_limited", "the block reason surfaces on the job row")
}

func TestCountActiveInBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)
	userId := uuid.New()
	batchId := uuid.New()

	var jobs []*entity.Job
	for i := 0; i < 3; i++ {
		job, err := svc.EnqueueTyped(ctx, userId, entity.JobTypeNormalize,
			&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{BatchId: &batchId})
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	// A job outside the batch never counts.
	_, err := svc.EnqueueTyped(ctx, userId, entity.JobTypeNormalize,
		&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)

	active, err := svc.CountActiveInBatch(ctx, batchId)
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)

	// Claiming keeps the job active, settling removes it.
	_, err = svc.ClaimNext(ctx, userId, 1)
	require.NoError(t, err)
	active, err = svc.CountActiveInBatch(ctx, batchId)
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)

	require.NoError(t, svc.MarkDone(ctx, jobs[0].Id))
	_, err = svc.MarkFailed(ctx, jobs[1], NewStageFailure(FailureFatal, errors.New("boom")))
	require.NoError(t, err)

	active, err = svc.CountActiveInBatch(ctx, batchId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestListJobsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewJobQueueService(newFakeUowFactory(store), 3, nil)
	userId := uuid.New()

	job, err := svc.EnqueueTyped(ctx, userId, entity.JobTypeNormalize,
		&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)
	_, err = svc.EnqueueTyped(ctx, userId, entity.JobTypeNormalize,
		&dto.NormalizeJobPayload{RawEventId: uuid.New()}, dto.EnqueueOptions{})
	require.NoError(t, err)
	require.NoError(t, svc.MarkDone(ctx, job.Id))

	all, err := svc.ListJobs(ctx, userId, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := svc.ListJobs(ctx, userId, entity.JobStatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, job.Id, done[0].Id)

	fetched, err := svc.GetJob(ctx, userId, job.Id)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	// Another user cannot see the job.
	fetched, err = svc.GetJob(ctx, uuid.New(), job.Id)
	require.NoError(t, err)
	assert.Nil(t, fetched)
}
