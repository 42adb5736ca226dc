package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/repository/specification"
	"practicehub-be/internal/repository/unitofwork"
	"practicehub-be/pkg/provider"

	"github.com/google/uuid"
)

// IIngestionService is the three stage pipeline: capture writes the immutable
// raw event, normalize projects it into an interaction, embed turns the
// interaction into vectors. Every stage is idempotent per source identity.
type IIngestionService interface {
	CaptureEvent(ctx context.Context, userId uuid.UUID, providerName string, event *provider.ExternalEvent, batchId *uuid.UUID) (*dto.CaptureResult, error)
	NormalizeEvent(ctx context.Context, userId uuid.UUID, rawEventId uuid.UUID, batchId *uuid.UUID) (*dto.NormalizeResult, error)
	EmbedInteraction(ctx context.Context, userId uuid.UUID, ownerType string, ownerId uuid.UUID) (*dto.EmbedResult, error)
}

type ingestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	jobQueue       IJobQueueService
	embeddingCache IEmbeddingCacheService
	log            logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	jobQueue IJobQueueService,
	embeddingCache IEmbeddingCacheService,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:     uowFactory,
		jobQueue:       jobQueue,
		embeddingCache: embeddingCache,
		log:            log,
	}
}

func (s *ingestionService) CaptureEvent(ctx context.Context, userId uuid.UUID, providerName string, event *provider.ExternalEvent, batchId *uuid.UUID) (*dto.CaptureResult, error) {
	if event.SourceId == "" {
		return nil, NewStageFailure(FailureValidation, fmt.Errorf("event from %s has no source id", providerName))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, NewStageFailure(FailureValidation, err)
	}

	var sourceMeta json.RawMessage
	if event.Metadata != nil {
		sourceMeta, err = json.Marshal(event.Metadata)
		if err != nil {
			return nil, NewStageFailure(FailureValidation, err)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	rawEvent := &entity.RawEvent{
		Id:         uuid.New(),
		UserId:     userId,
		Provider:   providerName,
		SourceId:   event.SourceId,
		OccurredAt: occurredAt,
		Payload:    payload,
		SourceMeta: sourceMeta,
		BatchId:    batchId,
		CreatedAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	created, err := uow.RawEventRepository().CreateIfAbsent(ctx, rawEvent)
	if err != nil {
		return nil, err
	}

	if !created {
		// Re-capture of a known event. Resolve the existing row so the
		// caller still gets a usable id.
		existing, err := uow.RawEventRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.Filter("provider", providerName),
			specification.Filter("source_id", event.SourceId),
		)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &dto.CaptureResult{RawEventId: existing.Id, Created: false}, nil
		}
	}

	return &dto.CaptureResult{RawEventId: rawEvent.Id, Created: created}, nil
}

func interactionTypeForKind(kind string) string {
	switch kind {
	case entity.InteractionTypeEmail, entity.InteractionTypeMeeting, entity.InteractionTypeNote:
		return kind
	default:
		return entity.InteractionTypeNote
	}
}

func (s *ingestionService) NormalizeEvent(ctx context.Context, userId uuid.UUID, rawEventId uuid.UUID, batchId *uuid.UUID) (*dto.NormalizeResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rawEvent, err := uow.RawEventRepository().FindOne(ctx,
		specification.ByID{ID: rawEventId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if rawEvent == nil {
		return nil, NewStageFailure(FailureValidation, fmt.Errorf("raw event %s not found", rawEventId))
	}

	// Lookup first: a prior normalize of this event short-circuits before
	// any parsing happens.
	existing, err := uow.InteractionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.BySourceKey{Source: rawEvent.Provider, SourceID: rawEvent.SourceId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.NormalizeResult{InteractionId: existing.Id, Created: false}, nil
	}

	var event provider.ExternalEvent
	if err := json.Unmarshal(rawEvent.Payload, &event); err != nil {
		return nil, NewStageFailure(FailureValidation, fmt.Errorf("raw event %s has malformed payload: %w", rawEventId, err))
	}

	interaction := &entity.Interaction{
		Id:        uuid.New(),
		UserId:    userId,
		Type:      interactionTypeForKind(event.Kind),
		Subject:   event.Subject,
		BodyText:  event.Body,
		Source:    rawEvent.Provider,
		SourceId:  rawEvent.SourceId,
		BatchId:   batchId,
		CreatedAt: time.Now(),
	}

	created, err := uow.InteractionRepository().CreateIfAbsent(ctx, interaction)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race to a concurrent normalize of the same event.
		winner, err := uow.InteractionRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.BySourceKey{Source: rawEvent.Provider, SourceID: rawEvent.SourceId},
		)
		if err != nil {
			return nil, err
		}
		if winner != nil {
			return &dto.NormalizeResult{InteractionId: winner.Id, Created: false}, nil
		}
		return nil, fmt.Errorf("interaction for raw event %s vanished after conflict", rawEventId)
	}

	// Chain the embed stage under the same batch so session progress can
	// attribute it.
	_, err = s.jobQueue.EnqueueTyped(ctx, userId, entity.JobTypeEmbed, &dto.EmbedJobPayload{
		OwnerType: entity.EmbeddingOwnerInteraction,
		OwnerId:   interaction.Id,
	}, dto.EnqueueOptions{BatchId: batchId})
	if err != nil {
		s.log.Error("ingestion", "failed to enqueue embed job", map[string]interface{}{
			"interaction_id": interaction.Id.String(),
			"error":          err.Error(),
		})
		return nil, err
	}

	return &dto.NormalizeResult{InteractionId: interaction.Id, Created: true}, nil
}

func (s *ingestionService) EmbedInteraction(ctx context.Context, userId uuid.UUID, ownerType string, ownerId uuid.UUID) (*dto.EmbedResult, error) {
	if ownerType != entity.EmbeddingOwnerInteraction {
		return nil, NewStageFailure(FailureValidation, fmt.Errorf("unsupported embedding owner type %q", ownerType))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	interaction, err := uow.InteractionRepository().FindOne(ctx,
		specification.ByID{ID: ownerId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if interaction == nil {
		return nil, NewStageFailure(FailureValidation, fmt.Errorf("interaction %s not found", ownerId))
	}

	document := interaction.BodyText
	if interaction.Subject != "" {
		document = fmt.Sprintf("Subject: %s\n\n%s", interaction.Subject, interaction.BodyText)
	}

	meta, err := json.Marshal(map[string]interface{}{
		"interaction_type": interaction.Type,
		"source":           interaction.Source,
	})
	if err != nil {
		return nil, err
	}

	return s.embeddingCache.GenerateAndStore(ctx, userId, entity.EmbeddingOwnerInteraction, interaction.Id, document, meta)
}
