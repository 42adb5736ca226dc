package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/pkg/mailer"
	"practicehub-be/pkg/events"
	pkgNats "practicehub-be/pkg/nats"
	"practicehub-be/pkg/provider"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ISyncService orchestrates a full import run: create the session, pull
// events from the external service, capture them, and fan the rest of the
// pipeline out as normalize/embed jobs correlated by the session id.
type ISyncService interface {
	StartSync(ctx context.Context, userId uuid.UUID, req *dto.StartSyncRequest) (*dto.StartSyncResponse, error)

	// ExecuteSync runs the capture phase for a session. It is the handler
	// body for sync jobs and the inline path for run_now.
	ExecuteSync(ctx context.Context, userId uuid.UUID, payload *dto.SyncJobPayload) error

	// FinalizeBatchIfDone completes the session once no job in its batch is
	// queued or running. Called after each pipeline job settles.
	FinalizeBatchIfDone(ctx context.Context, userId uuid.UUID, batchId uuid.UUID) error

	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SyncSessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SyncSessionResponse, error)
}

type syncService struct {
	sessions       ISyncSessionService
	jobQueue       IJobQueueService
	ingestion      IIngestionService
	publisher      IPublisherService
	registry       *provider.Registry
	eventPublisher *pkgNats.Publisher
	emailService   mailer.IEmailService
	prefsCache     *gocache.Cache
	failureCache   *gocache.Cache
	log            logger.ILogger
}

func NewSyncService(
	sessions ISyncSessionService,
	jobQueue IJobQueueService,
	ingestion IIngestionService,
	publisher IPublisherService,
	registry *provider.Registry,
	eventPublisher *pkgNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) ISyncService {
	return &syncService{
		sessions:       sessions,
		jobQueue:       jobQueue,
		ingestion:      ingestion,
		publisher:      publisher,
		registry:       registry,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		prefsCache:     gocache.New(24*time.Hour, time.Hour),
		failureCache:   gocache.New(24*time.Hour, time.Hour),
		log:            log,
	}
}

func (s *syncService) StartSync(ctx context.Context, userId uuid.UUID, req *dto.StartSyncRequest) (*dto.StartSyncResponse, error) {
	if _, err := s.registry.Resolve(req.Service); err != nil {
		return nil, NewStageFailure(FailureValidation, err)
	}

	session, err := s.sessions.CreateSession(ctx, userId, req.Service)
	if err != nil {
		return nil, err
	}

	payload := &dto.SyncJobPayload{
		SessionId:   session.Id,
		Service:     req.Service,
		Preferences: req.Preferences,
	}

	if req.RunNow {
		if err := s.ExecuteSync(ctx, userId, payload); err != nil {
			return nil, err
		}
	} else {
		_, err = s.jobQueue.EnqueueTyped(ctx, userId, entity.JobTypeSync, payload, dto.EnqueueOptions{
			Priority: entity.JobPriorityHigh,
			BatchId:  &session.Id,
		})
		if err != nil {
			return nil, err
		}
	}

	return &dto.StartSyncResponse{SessionId: session.Id, Status: session.Status}, nil
}

func (s *syncService) publishProgress(ctx context.Context, msg *dto.SyncProgressMessage) {
	if err := s.publisher.PublishProgress(ctx, msg); err != nil {
		s.log.Warn("sync", "failed to publish progress", map[string]interface{}{
			"session_id": msg.SessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (s *syncService) failSync(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, service string, cause error) error {
	if err := s.sessions.FailSession(ctx, sessionId, cause.Error()); err != nil {
		s.log.Error("sync", "failed to mark session failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewSyncFailedEvent(userId, sessionId, service, cause.Error()))
	}
	// The session is terminal; retrying the job would replay into a dead
	// session, so the failure parks the job too.
	return NewStageFailure(FailureFatal, cause)
}

func (s *syncService) ExecuteSync(ctx context.Context, userId uuid.UUID, payload *dto.SyncJobPayload) error {
	sessionId := payload.SessionId

	if payload.Preferences != nil {
		s.prefsCache.Set(sessionId.String(), payload.Preferences, gocache.DefaultExpiration)
	}

	session, err := s.sessions.GetSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return NewStageFailure(FailureValidation, fmt.Errorf("sync session %s not found", sessionId))
	}
	if session.IsTerminal() {
		// Replay of an already settled session is a no-op.
		return nil
	}

	source, err := s.registry.Resolve(payload.Service)
	if err != nil {
		return s.failSync(ctx, userId, sessionId, payload.Service, err)
	}

	importing := entity.SyncStatusImporting
	s.publishProgress(ctx, &dto.SyncProgressMessage{
		SessionId:          sessionId,
		UserId:             userId,
		Status:             &importing,
		CurrentStep:        "fetching events",
		ProgressPercentage: 5,
		OccurredAt:         time.Now(),
	})

	externalEvents, err := source.FetchEvents(ctx, userId, payload.Preferences)
	if err != nil {
		return s.failSync(ctx, userId, sessionId, payload.Service, fmt.Errorf("fetch events: %w", err))
	}

	total := len(externalEvents)
	if total == 0 {
		s.log.Info("sync", "no events to import", map[string]interface{}{
			"session_id": sessionId.String(),
			"service":    payload.Service,
		})
		return s.completeSession(ctx, userId, sessionId, payload.Service, 0, 0, 0)
	}

	imported := 0
	failed := 0
	capturedIds := make([]uuid.UUID, 0, total)
	var captureErrors []string

	for i := range externalEvents {
		event := &externalEvents[i]

		capture, err := s.ingestion.CaptureEvent(ctx, userId, payload.Service, event, &sessionId)
		if err != nil {
			failed++
			if len(captureErrors) < 5 {
				captureErrors = append(captureErrors, fmt.Sprintf("%q: %v", event.SourceId, err))
			}
			s.log.Warn("sync", "event capture failed", map[string]interface{}{
				"session_id": sessionId.String(),
				"source_id":  event.SourceId,
				"error":      err.Error(),
			})
		} else {
			imported++
			if capture.Created {
				capturedIds = append(capturedIds, capture.RawEventId)
			}
		}

		pct := 5 + (i+1)*70/total
		s.publishProgress(ctx, &dto.SyncProgressMessage{
			SessionId:          sessionId,
			UserId:             userId,
			CurrentStep:        fmt.Sprintf("importing %d/%d", i+1, total),
			ProgressPercentage: pct,
			TotalItems:         &total,
			ImportedItems:      &imported,
			FailedItems:        &failed,
			OccurredAt:         time.Now(),
		})
	}

	if imported == 0 {
		return s.failSync(ctx, userId, sessionId, payload.Service, fmt.Errorf("all %d events failed to import", total))
	}
	if failed > 0 {
		// Kept for the completion summary once the batch settles.
		s.failureCache.Set(sessionId.String(), strings.Join(captureErrors, "; "), gocache.DefaultExpiration)
	}

	for _, rawEventId := range capturedIds {
		_, err := s.jobQueue.EnqueueTyped(ctx, userId, entity.JobTypeNormalize, &dto.NormalizeJobPayload{
			RawEventId: rawEventId,
		}, dto.EnqueueOptions{BatchId: &sessionId})
		if err != nil {
			return s.failSync(ctx, userId, sessionId, payload.Service, fmt.Errorf("enqueue normalize: %w", err))
		}
	}

	processing := entity.SyncStatusProcessing
	s.publishProgress(ctx, &dto.SyncProgressMessage{
		SessionId:          sessionId,
		UserId:             userId,
		Status:             &processing,
		CurrentStep:        "processing events",
		ProgressPercentage: 80,
		TotalItems:         &total,
		ImportedItems:      &imported,
		FailedItems:        &failed,
		OccurredAt:         time.Now(),
	})

	if len(capturedIds) == 0 {
		// Every event was a re-import; nothing left to process.
		return s.completeSession(ctx, userId, sessionId, payload.Service, total, imported, failed)
	}

	return nil
}

func (s *syncService) FinalizeBatchIfDone(ctx context.Context, userId uuid.UUID, batchId uuid.UUID) error {
	active, err := s.jobQueue.CountActiveInBatch(ctx, batchId)
	if err != nil {
		return err
	}
	if active > 0 {
		return nil
	}

	session, err := s.sessions.GetSession(ctx, userId, batchId)
	if err != nil || session == nil || session.IsTerminal() {
		return err
	}

	return s.completeSession(ctx, userId, batchId, session.Service, session.TotalItems, session.ImportedItems, session.FailedItems)
}

// failureSummary describes what a partially successful run lost. Falls back
// to counts alone when the capture detail expired or lives in another process.
func (s *syncService) failureSummary(sessionId uuid.UUID, total int, failed int) string {
	if failed == 0 {
		return ""
	}
	summary := fmt.Sprintf("%d of %d events failed to import", failed, total)
	if cached, found := s.failureCache.Get(sessionId.String()); found {
		if detail, ok := cached.(string); ok && detail != "" {
			summary = summary + ": " + detail
		}
		s.failureCache.Delete(sessionId.String())
	}
	return summary
}

func (s *syncService) completeSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, service string, total int, imported int, failed int) error {
	if err := s.sessions.CompleteSession(ctx, sessionId, total, imported, failed, s.failureSummary(sessionId, total, failed)); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewSyncCompletedEvent(userId, sessionId, service, imported, failed))
	}

	s.sendReportIfRequested(sessionId, service, total, imported, failed)

	s.log.Info("sync", "session completed", map[string]interface{}{
		"session_id": sessionId.String(),
		"service":    service,
		"total":      total,
		"imported":   imported,
		"failed":     failed,
	})
	return nil
}

func (s *syncService) sendReportIfRequested(sessionId uuid.UUID, service string, total int, imported int, failed int) {
	cached, found := s.prefsCache.Get(sessionId.String())
	if !found {
		return
	}
	prefs, ok := cached.(map[string]string)
	if !ok {
		return
	}
	toEmail, ok := prefs["notify_email"]
	if !ok || toEmail == "" || s.emailService == nil {
		return
	}

	if err := s.emailService.SendSyncReport(toEmail, service, total, imported, failed); err != nil {
		s.log.Warn("sync", "failed to send sync report", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
	s.prefsCache.Delete(sessionId.String())
}

func (s *syncService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SyncSessionResponse, error) {
	session, err := s.sessions.GetSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return toSessionResponse(session), nil
}

func (s *syncService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SyncSessionResponse, error) {
	sessions, err := s.sessions.ListSessions(ctx, userId)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.SyncSessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = toSessionResponse(session)
	}
	return responses, nil
}

func toSessionResponse(session *entity.SyncSession) *dto.SyncSessionResponse {
	resp := &dto.SyncSessionResponse{
		Id:                 session.Id,
		Service:            session.Service,
		Status:             session.Status,
		CurrentStep:        session.CurrentStep,
		ProgressPercentage: session.ProgressPercentage,
		TotalItems:         session.TotalItems,
		ImportedItems:      session.ImportedItems,
		FailedItems:        session.FailedItems,
		StartedAt:          session.StartedAt,
		CompletedAt:        session.CompletedAt,
	}
	if session.ErrorDetails != nil {
		resp.Error = session.ErrorDetails.Error
	}
	return resp
}
