package contract

import (
	"context"
	"time"

	"practicehub-be/internal/entity"

	"github.com/google/uuid"
)

type AiQuotaRepository interface {
	// EnsureCurrentPeriod upserts the user's quota row. When the stored
	// period_start is older than periodStart, the row is rolled forward and
	// credits_left reset to monthlyCredits; otherwise the row is untouched.
	// Always returns the current row.
	EnsureCurrentPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time, monthlyCredits int) (*entity.AiQuota, error)

	// SpendCredit atomically decrements credits_left, guarded by
	// credits_left > 0. spent=false means the user is out of credits; the
	// counter never goes negative.
	SpendCredit(ctx context.Context, userId uuid.UUID) (creditsLeft int, spent bool, err error)

	Find(ctx context.Context, userId uuid.UUID) (*entity.AiQuota, error)
}
