package service

import (
	"context"
	"time"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/repository/specification"
	"practicehub-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// BlockReason is why a guarded call was refused. Blocks are expected
// outcomes, they travel as values and never as errors.
type BlockReason string

const (
	BlockNone          BlockReason = ""
	BlockQuotaExceeded BlockReason = "quota_exceeded"
	BlockRateLimited   BlockReason = "rate_limited"
	BlockCostCapped    BlockReason = "cost_capped"
)

// MeteredCall performs one paid provider call and reports its usage.
// A nil report with nil error means the call was served without spending
// anything (e.g. a cache hit), so nothing is logged.
type MeteredCall func(ctx context.Context) (*dto.AiUsageReport, error)

type IGuardrailService interface {
	// EnsureMonthlyQuota lazily rolls the user's quota forward to the
	// current calendar month, resetting credits on the first touch of a new
	// period. There is no scheduled reset job.
	EnsureMonthlyQuota(ctx context.Context, userId uuid.UUID) (*entity.AiQuota, error)

	CheckRateLimit(ctx context.Context, userId uuid.UUID) (bool, error)
	UnderDailyCostCap(ctx context.Context, userId uuid.UUID) (bool, error)
	TrySpendCredit(ctx context.Context, userId uuid.UUID) (creditsLeft int, spent bool, err error)
	LogUsage(ctx context.Context, userId uuid.UUID, report *dto.AiUsageReport) error

	// WithGuardrails runs call behind the full ledger: monthly quota, then
	// per-minute rate, then daily cost cap, then the credit spend. The first
	// failing gate returns its reason and the call never runs; a user who is
	// over quota and over the rate window sees quota_exceeded. Usage is
	// logged whenever the call reports it, even when the call itself errors.
	WithGuardrails(ctx context.Context, userId uuid.UUID, call MeteredCall) (BlockReason, error)

	UsageSummary(ctx context.Context, userId uuid.UUID) (*dto.UsageSummaryResponse, error)
}

type guardrailService struct {
	uowFactory        unitofwork.RepositoryFactory
	monthlyCredits    int
	requestsPerMinute int
	dailyCostCapUsd   float64
	log               logger.ILogger
}

func NewGuardrailService(
	uowFactory unitofwork.RepositoryFactory,
	monthlyCredits int,
	requestsPerMinute int,
	dailyCostCapUsd float64,
	log logger.ILogger,
) IGuardrailService {
	return &guardrailService{
		uowFactory:        uowFactory,
		monthlyCredits:    monthlyCredits,
		requestsPerMinute: requestsPerMinute,
		dailyCostCapUsd:   dailyCostCapUsd,
		log:               log,
	}
}

func currentPeriodStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *guardrailService) EnsureMonthlyQuota(ctx context.Context, userId uuid.UUID) (*entity.AiQuota, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	periodStart := currentPeriodStart(time.Now().UTC())
	return uow.AiQuotaRepository().EnsureCurrentPeriod(ctx, userId, periodStart, s.monthlyCredits)
}

func (s *guardrailService) CheckRateLimit(ctx context.Context, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	since := time.Now().Add(-time.Minute)
	count, err := uow.AiUsageRepository().CountSince(ctx, userId, since)
	if err != nil {
		return false, err
	}
	return count < int64(s.requestsPerMinute), nil
}

func (s *guardrailService) UnderDailyCostCap(ctx context.Context, userId uuid.UUID) (bool, error) {
	if s.dailyCostCapUsd <= 0 {
		return true, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	spent, err := uow.AiUsageRepository().SumCostSince(ctx, userId, midnight)
	if err != nil {
		return false, err
	}
	return spent < s.dailyCostCapUsd, nil
}

func (s *guardrailService) TrySpendCredit(ctx context.Context, userId uuid.UUID) (int, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AiQuotaRepository().SpendCredit(ctx, userId)
}

func (s *guardrailService) LogUsage(ctx context.Context, userId uuid.UUID, report *dto.AiUsageReport) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	usage := &entity.AiUsage{
		Id:           uuid.New(),
		UserId:       userId,
		Model:        report.Model,
		InputTokens:  report.InputTokens,
		OutputTokens: report.OutputTokens,
		CostUsd:      report.CostUsd,
		CreatedAt:    time.Now(),
	}
	return uow.AiUsageRepository().Create(ctx, usage)
}

func (s *guardrailService) WithGuardrails(ctx context.Context, userId uuid.UUID, call MeteredCall) (BlockReason, error) {
	quota, err := s.EnsureMonthlyQuota(ctx, userId)
	if err != nil {
		return BlockNone, err
	}
	if quota.CreditsLeft <= 0 {
		s.log.Warn("guardrail", "paid call refused", map[string]interface{}{
			"user_id": userId.String(),
			"reason":  string(BlockQuotaExceeded),
		})
		return BlockQuotaExceeded, nil
	}

	allowed, err := s.CheckRateLimit(ctx, userId)
	if err != nil {
		return BlockNone, err
	}
	if !allowed {
		s.log.Warn("guardrail", "paid call refused", map[string]interface{}{
			"user_id": userId.String(),
			"reason":  string(BlockRateLimited),
		})
		return BlockRateLimited, nil
	}

	underCap, err := s.UnderDailyCostCap(ctx, userId)
	if err != nil {
		return BlockNone, err
	}
	if !underCap {
		s.log.Warn("guardrail", "paid call refused", map[string]interface{}{
			"user_id": userId.String(),
			"reason":  string(BlockCostCapped),
		})
		return BlockCostCapped, nil
	}

	_, spent, err := s.TrySpendCredit(ctx, userId)
	if err != nil {
		return BlockNone, err
	}
	if !spent {
		s.log.Warn("guardrail", "paid call refused", map[string]interface{}{
			"user_id": userId.String(),
			"reason":  string(BlockQuotaExceeded),
		})
		return BlockQuotaExceeded, nil
	}

	report, callErr := call(ctx)
	if report != nil {
		if logErr := s.LogUsage(ctx, userId, report); logErr != nil {
			s.log.Error("guardrail", "failed to log ai usage", map[string]interface{}{
				"user_id": userId.String(),
				"error":   logErr.Error(),
			})
		}
	}

	return BlockNone, callErr
}

func (s *guardrailService) UsageSummary(ctx context.Context, userId uuid.UUID) (*dto.UsageSummaryResponse, error) {
	quota, err := s.EnsureMonthlyQuota(ctx, userId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	lastMinute, err := uow.AiUsageRepository().CountSince(ctx, userId, now.Add(-time.Minute))
	if err != nil {
		return nil, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	costToday, err := uow.AiUsageRepository().SumCostSince(ctx, userId, midnight)
	if err != nil {
		return nil, err
	}

	recent, err := uow.AiUsageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 20, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.UsageEntry, len(recent))
	for i, usage := range recent {
		entries[i] = dto.UsageEntry{
			Model:        usage.Model,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			CostUsd:      usage.CostUsd,
			CreatedAt:    usage.CreatedAt,
		}
	}

	return &dto.UsageSummaryResponse{
		CreditsLeft:        quota.CreditsLeft,
		PeriodStart:        quota.PeriodStart,
		RequestsLastMinute: lastMinute,
		CostTodayUsd:       costToday,
		Recent:             entries,
	}, nil
}
