package contract

import (
	"context"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"
)

type RawEventRepository interface {
	// CreateIfAbsent inserts the event unless a row with the same
	// (user_id, provider, source_id) already exists. The duplicate case is
	// swallowed by ON CONFLICT DO NOTHING and reported as created=false.
	CreateIfAbsent(ctx context.Context, event *entity.RawEvent) (created bool, err error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RawEvent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RawEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
