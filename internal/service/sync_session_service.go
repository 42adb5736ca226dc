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

type ISyncSessionService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, service string) (*entity.SyncSession, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.SyncSession, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SyncSession, error)

	// ApplyProgress folds one progress message into the session row.
	// Messages arriving after the session reached a terminal state are
	// dropped, terminal sessions never change again.
	ApplyProgress(ctx context.Context, msg *dto.SyncProgressMessage) error

	// CompleteSession marks the session completed. A non-empty errorSummary
	// records what went wrong on a partial success (failed > 0).
	CompleteSession(ctx context.Context, sessionId uuid.UUID, total int, imported int, failed int, errorSummary string) error
	FailSession(ctx context.Context, sessionId uuid.UUID, reason string) error
}

type syncSessionService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewSyncSessionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISyncSessionService {
	return &syncSessionService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *syncSessionService) CreateSession(ctx context.Context, userId uuid.UUID, service string) (*entity.SyncSession, error) {
	session := &entity.SyncSession{
		Id:                 uuid.New(),
		UserId:             userId,
		Service:            service,
		Status:             entity.SyncStatusStarted,
		CurrentStep:        "starting",
		ProgressPercentage: 0,
		StartedAt:          time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SyncSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *syncSessionService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.SyncSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SyncSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
}

func (s *syncSessionService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SyncSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SyncSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
}

func (s *syncSessionService) ApplyProgress(ctx context.Context, msg *dto.SyncProgressMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SyncSessionRepository().FindOne(ctx, specification.ByID{ID: msg.SessionId})
	if err != nil {
		return err
	}
	if session == nil {
		s.log.Warn("sync_session", "progress for unknown session", map[string]interface{}{
			"session_id": msg.SessionId.String(),
		})
		return nil
	}
	if session.IsTerminal() {
		return nil
	}

	if msg.Status != nil {
		session.Status = *msg.Status
	}
	if msg.CurrentStep != "" {
		session.CurrentStep = msg.CurrentStep
	}
	session.ProgressPercentage = msg.ProgressPercentage
	if msg.TotalItems != nil {
		session.TotalItems = *msg.TotalItems
	}
	if msg.ImportedItems != nil {
		session.ImportedItems = *msg.ImportedItems
	}
	if msg.FailedItems != nil {
		session.FailedItems = *msg.FailedItems
	}

	return uow.SyncSessionRepository().Update(ctx, session)
}

func (s *syncSessionService) CompleteSession(ctx context.Context, sessionId uuid.UUID, total int, imported int, failed int, errorSummary string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SyncSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil || session.IsTerminal() {
		return nil
	}

	now := time.Now()
	session.Status = entity.SyncStatusCompleted
	session.CurrentStep = "completed"
	session.ProgressPercentage = 100
	session.TotalItems = total
	session.ImportedItems = imported
	session.FailedItems = failed
	session.CompletedAt = &now
	if errorSummary != "" {
		session.ErrorDetails = &entity.SyncError{
			Error:     errorSummary,
			Timestamp: now,
		}
	}

	return uow.SyncSessionRepository().Update(ctx, session)
}

func (s *syncSessionService) FailSession(ctx context.Context, sessionId uuid.UUID, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SyncSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil || session.IsTerminal() {
		return nil
	}

	now := time.Now()
	session.Status = entity.SyncStatusFailed
	session.CurrentStep = "failed"
	session.ErrorDetails = &entity.SyncError{
		Error:     reason,
		Timestamp: now,
	}
	session.CompletedAt = &now

	return uow.SyncSessionRepository().Update(ctx, session)
}
