package service

import (
	"context"
	"encoding/json"
	"time"

	"practicehub-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishProgress(ctx context.Context, msg *dto.SyncProgressMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}

func (p *publisherService) PublishProgress(ctx context.Context, progress *dto.SyncProgressMessage) error {
	if progress.OccurredAt.IsZero() {
		progress.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return p.Publish(ctx, payload)
}

// NewProgressMessage builds the common case of a step/percentage update.
func NewProgressMessage(userId uuid.UUID, sessionId uuid.UUID, step string, percentage int) *dto.SyncProgressMessage {
	return &dto.SyncProgressMessage{
		SessionId:          sessionId,
		UserId:             userId,
		CurrentStep:        step,
		ProgressPercentage: percentage,
		OccurredAt:         time.Now(),
	}
}
