package unitofwork

import (
	"context"

	"practicehub-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	JobRepository() contract.JobRepository
	RawEventRepository() contract.RawEventRepository
	InteractionRepository() contract.InteractionRepository
	EmbeddingRepository() contract.EmbeddingRepository
	SyncSessionRepository() contract.SyncSessionRepository
	AiQuotaRepository() contract.AiQuotaRepository
	AiUsageRepository() contract.AiUsageRepository
}
