package service

import (
	"context"
	"sync"

	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/pkg/events"
	pktNats "flex-designer-be/pkg/nats"
)

const (
	activityModule = "ActivityService"

	// DefaultActivityCapacity bounds the recent-activity feed.
	DefaultActivityCapacity = 50
)

type IActivityService interface {
	// Start subscribes to the event bus. Without a bus it does nothing.
	Start() error
	// Record appends event to the feed.
	Record(ctx context.Context, event events.Event) error
	// Recent returns up to limit entries, newest first. limit <= 0 returns all.
	Recent(limit int) []*dto.ActivityResponse
}

type activityService struct {
	subscriber *pktNats.Subscriber
	durable    string

	mu      sync.RWMutex
	entries []*dto.ActivityResponse
	next    int
	full    bool

	logger logger.ILogger
}

// NewActivityService keeps the last capacity design lifecycle events. sub may
// be nil.
func NewActivityService(sub *pktNats.Subscriber, durable string, capacity int, log logger.ILogger) IActivityService {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &activityService{
		subscriber: sub,
		durable:    durable,
		entries:    make([]*dto.ActivityResponse, capacity),
		logger:     log,
	}
}

func (s *activityService) Start() error {
	if s.subscriber == nil {
		return nil
	}
	subject := pktNats.SubjectPrefix + ">"
	if err := s.subscriber.Subscribe(subject, s.durable, s.Record); err != nil {
		s.logger.Error(activityModule, "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info(activityModule, "Activity feed listening", map[string]interface{}{"subject": subject})
	return nil
}

func (s *activityService) Record(_ context.Context, event events.Event) error {
	entry := &dto.ActivityResponse{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	}

	s.mu.Lock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()

	s.logger.Debug(activityModule, "Activity recorded", map[string]interface{}{"type": entry.Type})
	return nil
}

func (s *activityService) Recent(limit int) []*dto.ActivityResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*dto.ActivityResponse, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}
