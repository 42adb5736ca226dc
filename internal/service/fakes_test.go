package service

import (
	"context"
	"math"
	"sync"
	"time"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/repository/contract"
	"practicehub-be/internal/repository/specification"
	"practicehub-be/internal/repository/unitofwork"
	"practicehub-be/pkg/embedding"

	"github.com/google/uuid"
)

// In-memory doubles for the repository layer. They interpret the small set of
// specifications the services actually build, which keeps the service tests
// off the database while still exercising the real query intent.

type fakeStore struct {
	mu           sync.Mutex
	jobs         []*entity.Job
	rawEvents    []*entity.RawEvent
	interactions []*entity.Interaction
	embeddings   []*entity.Embedding
	sessions     []*entity.SyncSession
	quotas       map[uuid.UUID]*entity.AiQuota
	usage        []*entity.AiUsage
}

func newFakeStore() *fakeStore {
	return &fakeStore{quotas: make(map[uuid.UUID]*entity.AiQuota)}
}

type fakeUowFactory struct {
	store *fakeStore
}

func newFakeUowFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeUowFactory{store: store}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) JobRepository() contract.JobRepository {
	return &fakeJobRepo{store: u.store}
}

func (u *fakeUow) RawEventRepository() contract.RawEventRepository {
	return &fakeRawEventRepo{store: u.store}
}

func (u *fakeUow) InteractionRepository() contract.InteractionRepository {
	return &fakeInteractionRepo{store: u.store}
}

func (u *fakeUow) EmbeddingRepository() contract.EmbeddingRepository {
	return &fakeEmbeddingRepo{store: u.store}
}

func (u *fakeUow) SyncSessionRepository() contract.SyncSessionRepository {
	return &fakeSyncSessionRepo{store: u.store}
}

func (u *fakeUow) AiQuotaRepository() contract.AiQuotaRepository {
	return &fakeAiQuotaRepo{store: u.store}
}

func (u *fakeUow) AiUsageRepository() contract.AiUsageRepository {
	return &fakeAiUsageRepo{store: u.store}
}

// paginationOf extracts a Pagination spec when present.
func paginationOf(specs []specification.Specification) (specification.Pagination, bool) {
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			return p, true
		}
	}
	return specification.Pagination{}, false
}

// Jobs

type fakeJobRepo struct {
	store *fakeStore
}

func jobMatches(job *entity.Job, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if job.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if job.UserId != s.UserID {
				return false
			}
		case specification.ByStatus:
			if job.Status != s.Status {
				return false
			}
		case specification.ByBatch:
			if job.BatchId == nil || *job.BatchId != s.BatchID {
				return false
			}
		case specification.CreatedAfter:
			if !job.CreatedAt.After(s.Time) {
				return false
			}
		}
	}
	return true
}

func (r *fakeJobRepo) Create(ctx context.Context, job *entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jobs = append(r.store.jobs, job)
	return nil
}

func (r *fakeJobRepo) CreateBulk(ctx context.Context, jobs []*entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jobs = append(r.store.jobs, jobs...)
	return nil
}

func (r *fakeJobRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, job := range r.store.jobs {
		if jobMatches(job, specs) {
			return job, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Job
	for _, job := range r.store.jobs {
		if jobMatches(job, specs) {
			out = append(out, job)
		}
	}
	if p, ok := paginationOf(specs); ok && p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (r *fakeJobRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	jobs, _ := r.FindAll(ctx, specs...)
	return int64(len(jobs)), nil
}

func (r *fakeJobRepo) ClaimNext(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var claimed []*entity.Job
	now := time.Now()
	for _, job := range r.store.jobs {
		if len(claimed) >= limit {
			break
		}
		if job.Status != entity.JobStatusQueued {
			continue
		}
		if userId != uuid.Nil && job.UserId != userId {
			continue
		}
		job.Status = entity.JobStatusRunning
		job.ClaimedAt = &now
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (r *fakeJobRepo) findById(id uuid.UUID) *entity.Job {
	for _, job := range r.store.jobs {
		if job.Id == id {
			return job
		}
	}
	return nil
}

func (r *fakeJobRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job := r.findById(id); job != nil {
		now := time.Now()
		job.Status = entity.JobStatusDone
		job.CompletedAt = &now
	}
	return nil
}

func (r *fakeJobRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	job := r.findById(id)
	if job == nil {
		return false, nil
	}
	job.Attempts++
	job.LastError = &errMsg
	if job.Attempts < maxAttempts {
		job.Status = entity.JobStatusQueued
		job.ClaimedAt = nil
		return true, nil
	}
	now := time.Now()
	job.Status = entity.JobStatusError
	job.CompletedAt = &now
	return false, nil
}

func (r *fakeJobRepo) FailPermanent(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job := r.findById(id); job != nil {
		now := time.Now()
		job.Status = entity.JobStatusError
		job.LastError = &errMsg
		job.CompletedAt = &now
	}
	return nil
}

// Raw events

type fakeRawEventRepo struct {
	store *fakeStore
}

func rawEventMatches(event *entity.RawEvent, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if event.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if event.UserId != s.UserID {
				return false
			}
		case specification.ByBatch:
			if event.BatchId == nil || *event.BatchId != s.BatchID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "provider":
				if event.Provider != s.Value {
					return false
				}
			case "source_id":
				if event.SourceId != s.Value {
					return false
				}
			}
		}
	}
	return true
}

func (r *fakeRawEventRepo) CreateIfAbsent(ctx context.Context, event *entity.RawEvent) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.rawEvents {
		if existing.UserId == event.UserId && existing.Provider == event.Provider && existing.SourceId == event.SourceId {
			return false, nil
		}
	}
	r.store.rawEvents = append(r.store.rawEvents, event)
	return true, nil
}

func (r *fakeRawEventRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RawEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, event := range r.store.rawEvents {
		if rawEventMatches(event, specs) {
			return event, nil
		}
	}
	return nil, nil
}

func (r *fakeRawEventRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RawEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.RawEvent
	for _, event := range r.store.rawEvents {
		if rawEventMatches(event, specs) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeRawEventRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	events, _ := r.FindAll(ctx, specs...)
	return int64(len(events)), nil
}

// Interactions

type fakeInteractionRepo struct {
	store *fakeStore
}

func interactionMatches(interaction *entity.Interaction, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if interaction.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if interaction.UserId != s.UserID {
				return false
			}
		case specification.BySourceKey:
			if interaction.Source != s.Source || interaction.SourceId != s.SourceID {
				return false
			}
		}
	}
	return true
}

func (r *fakeInteractionRepo) CreateIfAbsent(ctx context.Context, interaction *entity.Interaction) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.interactions {
		if existing.UserId == interaction.UserId && existing.Source == interaction.Source && existing.SourceId == interaction.SourceId {
			return false, nil
		}
	}
	r.store.interactions = append(r.store.interactions, interaction)
	return true, nil
}

func (r *fakeInteractionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, interaction := range r.store.interactions {
		if interactionMatches(interaction, specs) {
			return interaction, nil
		}
	}
	return nil, nil
}

func (r *fakeInteractionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Interaction
	for _, interaction := range r.store.interactions {
		if interactionMatches(interaction, specs) {
			out = append(out, interaction)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	interactions, _ := r.FindAll(ctx, specs...)
	return int64(len(interactions)), nil
}

// Embeddings

type fakeEmbeddingRepo struct {
	store *fakeStore
}

func embeddingMatches(row *entity.Embedding, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if row.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if row.UserId != s.UserID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "owner_type":
				if row.OwnerType != s.Value {
					return false
				}
			case "owner_id":
				if row.OwnerId != s.Value {
					return false
				}
			}
		}
	}
	return true
}

func (r *fakeEmbeddingRepo) CreateBulkIfAbsent(ctx context.Context, embeddings []*entity.Embedding) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var inserted int64
	for _, row := range embeddings {
		collision := false
		for _, existing := range r.store.embeddings {
			if existing.UserId == row.UserId && existing.OwnerType == row.OwnerType &&
				existing.OwnerId == row.OwnerId &&
				existing.ContentHash == row.ContentHash && existing.ChunkIndex == row.ChunkIndex {
				collision = true
				break
			}
		}
		if collision {
			continue
		}
		r.store.embeddings = append(r.store.embeddings, row)
		inserted++
	}
	return inserted, nil
}

func (r *fakeEmbeddingRepo) FindByContentHash(ctx context.Context, userId uuid.UUID, contentHash string) (*entity.Embedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, row := range r.store.embeddings {
		if row.UserId == userId && row.ContentHash == contentHash {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, row := range r.store.embeddings {
		if embeddingMatches(row, specs) {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeEmbeddingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Embedding
	for _, row := range r.store.embeddings {
		if embeddingMatches(row, specs) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, _ := r.FindAll(ctx, specs...)
	return int64(len(rows)), nil
}

func (r *fakeEmbeddingRepo) DeleteByOwner(ctx context.Context, ownerType string, ownerId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.embeddings[:0]
	for _, row := range r.store.embeddings {
		if row.OwnerType == ownerType && row.OwnerId == ownerId {
			continue
		}
		kept = append(kept, row)
	}
	r.store.embeddings = kept
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, vector []float32, userId uuid.UUID, ownerType string, limit int, threshold float64) ([]*contract.ScoredEmbedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var scored []*contract.ScoredEmbedding
	for _, row := range r.store.embeddings {
		if row.UserId != userId {
			continue
		}
		if ownerType != "" && row.OwnerType != ownerType {
			continue
		}
		similarity := cosineSimilarity(vector, row.EmbeddingValue)
		if similarity < threshold {
			continue
		}
		scored = append(scored, &contract.ScoredEmbedding{Embedding: row, Similarity: similarity})
	}

	for i := 0; i < len(scored); i++ {
		for j := i + 1; j < len(scored); j++ {
			if scored[j].Similarity > scored[i].Similarity {
				scored[i], scored[j] = scored[j], scored[i]
			}
		}
	}
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Sync sessions. FindOne hands back a copy so mutations only land through
// Update, matching how rows scan out of the database.

type fakeSyncSessionRepo struct {
	store *fakeStore
}

func sessionMatches(session *entity.SyncSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if session.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

func (r *fakeSyncSessionRepo) Create(ctx context.Context, session *entity.SyncSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *session
	r.store.sessions = append(r.store.sessions, &copied)
	return nil
}

func (r *fakeSyncSessionRepo) Update(ctx context.Context, session *entity.SyncSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, existing := range r.store.sessions {
		if existing.Id == session.Id {
			copied := *session
			r.store.sessions[i] = &copied
			return nil
		}
	}
	return nil
}

func (r *fakeSyncSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SyncSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if sessionMatches(session, specs) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSyncSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.SyncSession
	for _, session := range r.store.sessions {
		if sessionMatches(session, specs) {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Quotas

type fakeAiQuotaRepo struct {
	store *fakeStore
}

func (r *fakeAiQuotaRepo) EnsureCurrentPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time, monthlyCredits int) (*entity.AiQuota, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[userId]
	if !ok {
		quota = &entity.AiQuota{
			UserId:      userId,
			PeriodStart: periodStart,
			CreditsLeft: monthlyCredits,
			UpdatedAt:   time.Now(),
		}
		r.store.quotas[userId] = quota
	} else if quota.PeriodStart.Before(periodStart) {
		quota.PeriodStart = periodStart
		quota.CreditsLeft = monthlyCredits
		quota.UpdatedAt = time.Now()
	}

	copied := *quota
	return &copied, nil
}

func (r *fakeAiQuotaRepo) SpendCredit(ctx context.Context, userId uuid.UUID) (int, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[userId]
	if !ok || quota.CreditsLeft <= 0 {
		left := 0
		if ok {
			left = quota.CreditsLeft
		}
		return left, false, nil
	}
	quota.CreditsLeft--
	return quota.CreditsLeft, true, nil
}

func (r *fakeAiQuotaRepo) Find(ctx context.Context, userId uuid.UUID) (*entity.AiQuota, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	quota, ok := r.store.quotas[userId]
	if !ok {
		return nil, nil
	}
	copied := *quota
	return &copied, nil
}

// Usage ledger

type fakeAiUsageRepo struct {
	store *fakeStore
}

func (r *fakeAiUsageRepo) Create(ctx context.Context, usage *entity.AiUsage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.usage = append(r.store.usage, usage)
	return nil
}

func (r *fakeAiUsageRepo) CountSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, usage := range r.store.usage {
		if usage.UserId == userId && usage.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAiUsageRepo) SumCostSince(ctx context.Context, userId uuid.UUID, since time.Time) (float64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var sum float64
	for _, usage := range r.store.usage {
		if usage.UserId == userId && usage.CreatedAt.After(since) {
			sum += usage.CostUsd
		}
	}
	return sum, nil
}

func (r *fakeAiUsageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AiUsage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.AiUsage
	for _, usage := range r.store.usage {
		keep := true
		for _, spec := range specs {
			if s, ok := spec.(specification.UserOwnedBy); ok && usage.UserId != s.UserID {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, usage)
		}
	}
	if p, ok := paginationOf(specs); ok && p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

// Collaborator doubles

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakeEmbeddingProvider struct {
	mu     sync.Mutex
	calls  int
	vector []float32
	err    error
}

func (p *fakeEmbeddingProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	vector := p.vector
	if vector == nil {
		vector = []float32{1, 0, 0}
	}
	return &embedding.Result{Values: vector, Model: "fake-embed"}, nil
}

func (p *fakeEmbeddingProvider) Model() string { return "fake-embed" }

func (p *fakeEmbeddingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeEmailService struct {
	mu       sync.Mutex
	reports  []string
	failures []string
}

func (s *fakeEmailService) SendSyncReport(toEmail string, service string, total int, imported int, failed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, toEmail)
	return nil
}

func (s *fakeEmailService) SendSyncFailure(toEmail string, service string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, toEmail)
	return nil
}
