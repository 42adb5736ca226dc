package contract

import (
	"context"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"
)

type SyncSessionRepository interface {
	Create(ctx context.Context, session *entity.SyncSession) error
	Update(ctx context.Context, session *entity.SyncSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SyncSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncSession, error)
}
