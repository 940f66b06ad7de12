package service

import (
	"context"
	"encoding/json"

	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher is the subset of the NATS publisher the services need.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IPublisherService interface {
	// Publish puts event on the in-process topic and, when a NATS publisher
	// is configured, on the durable bus as well.
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	bus       EventPublisher
	logger    logger.ILogger
}

// NewPublisherService builds the publisher. bus may be nil.
func NewPublisherService(topicName string, publisher message.Publisher, bus EventPublisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		bus:       bus,
		logger:    log,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(events.Envelope(event))
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		return err
	}

	if ps.bus != nil && events.IsLifecycle(event.EventType()) {
		if err := ps.bus.Publish(ctx, event); err != nil {
			ps.logger.Warn("PublisherService", "Failed to publish event to NATS", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
	return nil
}
