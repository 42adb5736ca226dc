package contract

import (
	"context"
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AiUsageRepository interface {
	Create(ctx context.Context, usage *entity.AiUsage) error
	CountSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error)
	SumCostSince(ctx context.Context, userId uuid.UUID, since time.Time) (float64, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AiUsage, error)
}
