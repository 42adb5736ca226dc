package contract

import (
	"context"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/specification"
)

type InteractionRepository interface {
	// CreateIfAbsent inserts the interaction unless (user_id, source,
	// source_id) already exists; a losing race is reported as created=false,
	// never as an error.
	CreateIfAbsent(ctx context.Context, interaction *entity.Interaction) (created bool, err error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
