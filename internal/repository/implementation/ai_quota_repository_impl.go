package implementation

import (
	"context"
	"errors"
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/mapper"
	"practicehub-be/internal/model"
	"practicehub-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AiQuotaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AiMapper
}

func NewAiQuotaRepository(db *gorm.DB) contract.AiQuotaRepository {
	return &AiQuotaRepositoryImpl{
		db:     db,
		mapper: mapper.NewAiMapper(),
	}
}

// EnsureCurrentPeriod performs the lazy monthly rollover: the upsert only
// resets credits when the stored period predates the current one, so no
// scheduled job is needed for correctness.
func (r *AiQuotaRepositoryImpl) EnsureCurrentPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time, monthlyCredits int) (*entity.AiQuota, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO ai_quotas (user_id, period_start, credits_left, updated_at)
		VALUES (?, ?, ?, now())
		ON CONFLICT (user_id) DO UPDATE SET
			period_start = EXCLUDED.period_start,
			credits_left = EXCLUDED.credits_left,
			updated_at = now()
		WHERE ai_quotas.period_start < EXCLUDED.period_start`,
		userId, periodStart, monthlyCredits,
	).Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, userId)
}

func (r *AiQuotaRepositoryImpl) SpendCredit(ctx context.Context, userId uuid.UUID) (int, bool, error) {
	var res struct {
		CreditsLeft int
	}
	tx := r.db.WithContext(ctx).Raw(`
		UPDATE ai_quotas SET credits_left = credits_left - 1, updated_at = now()
		WHERE user_id = ? AND credits_left > 0
		RETURNING credits_left`,
		userId,
	).Scan(&res)
	if tx.Error != nil {
		return 0, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, false, nil
	}
	return res.CreditsLeft, true, nil
}

func (r *AiQuotaRepositoryImpl) Find(ctx context.Context, userId uuid.UUID) (*entity.AiQuota, error) {
	var m model.AiQuota
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.QuotaToEntity(&m), nil
}
