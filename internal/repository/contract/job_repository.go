package contract

import (
	"context"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	CreateBulk(ctx context.Context, jobs []*entity.Job) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ClaimNext atomically transitions up to limit queued jobs to running and
	// returns them. The transition is a guarded update at the storage layer
	// (FOR UPDATE SKIP LOCKED), so two concurrent claimants can never receive
	// the same job. Pass uuid.Nil as userId for a global claim.
	ClaimNext(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Job, error)

	// MarkDone transitions running -> done. The row is retained for audit.
	MarkDone(ctx context.Context, id uuid.UUID) error

	// Fail increments attempts and either requeues (attempts < maxAttempts)
	// or parks the job in error status. Returns true when the job was
	// requeued for another attempt.
	Fail(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) (bool, error)

	// FailPermanent parks the job in error status without a requeue, used for
	// validation and configuration failures that retrying cannot fix.
	FailPermanent(ctx context.Context, id uuid.UUID, errMsg string) error
}
