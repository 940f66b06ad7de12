package service

import (
	"context"
	"encoding/json"

	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const previewModule = "PreviewService"

// PreviewDelivery pushes frames to connected preview clients. The websocket
// hub implements it.
type PreviewDelivery interface {
	Broadcast(kind string, data interface{})
}

type IPreviewService interface {
	Consume(ctx context.Context) error
}

type previewService struct {
	subscriber message.Subscriber
	topicName  string
	delivery   PreviewDelivery
	activity   IActivityService
	logger     logger.ILogger
}

// NewPreviewService forwards every event on topicName to delivery. When
// activity is set, lifecycle events are also recorded there; this is how the
// feed is filled when no NATS bus is configured.
func NewPreviewService(
	subscriber message.Subscriber,
	topicName string,
	delivery PreviewDelivery,
	activity IActivityService,
	log logger.ILogger,
) IPreviewService {
	return &previewService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		activity:   activity,
		logger:     log,
	}
}

func (ps *previewService) Consume(ctx context.Context) error {
	messages, err := ps.subscriber.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ps *previewService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		ps.logger.Error(previewModule, "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// A payload that does not parse never will.
		msg.Ack()
		return
	}

	if ps.delivery != nil {
		ps.delivery.Broadcast(event.Type, event.Data)
	}

	if ps.activity != nil && events.IsLifecycle(event.Type) {
		if err := ps.activity.Record(ctx, event); err != nil {
			ps.logger.Warn(previewModule, "Failed to record activity", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
