package events

import "time"

// Design lifecycle event codes.
const (
	DesignSaved      = "DESIGN_SAVED"
	DesignDeleted    = "DESIGN_DELETED"
	DesignRenamed    = "DESIGN_RENAMED"
	DesignDuplicated = "DESIGN_DUPLICATED"
	DocumentChanged  = "DOCUMENT_CHANGED"
	DocumentReplaced = "DOCUMENT_REPLACED"

	// DocumentSnapshot is the frame a preview client receives on connect.
	DocumentSnapshot = "DOCUMENT_SNAPSHOT"
)

// IsLifecycle reports whether eventType concerns a saved design rather than
// the live document. Only lifecycle events leave the process.
func IsLifecycle(eventType string) bool {
	switch eventType {
	case DesignSaved, DesignDeleted, DesignRenamed, DesignDuplicated:
		return true
	}
	return false
}

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DESIGN_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// New stamps an event with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope copies any Event into a BaseEvent suitable for encoding.
func Envelope(e Event) BaseEvent {
	return BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}
