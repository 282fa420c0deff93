package service

import (
	"context"
	"encoding/json"
	"time"

	"contract-redline-be/internal/pkg/logger"
	"contract-redline-be/pkg/events"
	natsbus "contract-redline-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService drains the in-process event bus in the background.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService relays analysis events from the watermill channel to
// NATS so external systems (reporting, audit) can subscribe without
// coupling to this process. A missing NATS connection degrades to
// log-only.
type consumerService struct {
	subscriber message.Subscriber
	natsPub    *natsbus.Publisher
	logger     logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, natsPub *natsbus.Publisher, sysLogger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		natsPub:    natsPub,
		logger:     sysLogger,
	}
}

func (s *consumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, events.TopicAnalysisCompleted)
	if err != nil {
		return err
	}

	for msg := range messages {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (s *consumerService) handle(ctx context.Context, msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Warn("consumer", "malformed analysis event payload", map[string]interface{}{
			"message_id": msg.UUID,
		})
		return
	}

	s.logger.Info("consumer", "analysis completed", payload)

	if s.natsPub == nil {
		return
	}
	event := events.BaseEvent{
		Type:       "ANALYSIS_COMPLETED",
		Data:       payload,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.logger.Warn("consumer", "failed to relay event to NATS", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
	}
}
