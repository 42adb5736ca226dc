package service

import (
	"context"
	"encoding/json"

	"practicehub-be/internal/dto"
	"practicehub-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ProgressBroadcaster pushes a progress payload to a user's live
// connections. Implemented by the websocket hub.
type ProgressBroadcaster interface {
	Send(userId uuid.UUID, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the progress topic. It is the only writer of
// progress into sync_sessions; producers just publish.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	sessions    ISyncSessionService
	broadcaster ProgressBroadcaster
	log         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessions ISyncSessionService,
	broadcaster ProgressBroadcaster,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		sessions:    sessions,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var progress dto.SyncProgressMessage
	if err := json.Unmarshal(msg.Payload, &progress); err != nil {
		cs.log.Error("consumer", "failed to unmarshal progress message", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed messages are acked, retrying cannot fix them.
		msg.Ack()
		return
	}

	if err := cs.sessions.ApplyProgress(ctx, &progress); err != nil {
		cs.log.Error("consumer", "failed to apply progress", map[string]interface{}{
			"session_id": progress.SessionId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.broadcaster != nil && progress.UserId != uuid.Nil {
		cs.broadcaster.Send(progress.UserId, msg.Payload)
	}

	msg.Ack()
}
