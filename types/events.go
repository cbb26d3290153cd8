package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/FreightDesk/freight-desk-backend/errors"
)

type EventType string

const (
	CategoryLoad  = "LOAD"
	CategoryQuote = "QUOTE"
	CategoryEmail = "EMAIL"
)

const (
	// Load lifecycle events
	EventTypeLoadCreated     EventType = CategoryLoad + "_CREATED"
	EventTypeLoadUpdated     EventType = CategoryLoad + "_UPDATED"
	EventTypeLoadReady       EventType = CategoryLoad + "_READY"
	EventTypeLoadNeedsReview EventType = CategoryLoad + "_NEEDS_REVIEW"
	EventTypeLoadCancelled   EventType = CategoryLoad + "_CANCELLED"

	// Quote events
	EventTypeQuoteGenerated EventType = CategoryQuote + "_GENERATED"

	// Email workflow events
	EventTypeClarificationRequested EventType = CategoryEmail + "_CLARIFICATION_REQUESTED"
	EventTypeEmailFilteredOut       EventType = CategoryEmail + "_FILTERED_OUT"
)

// BaseEvent carries the fields common to every published event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	LoadID    string    `json:"loadId"`
	BrokerID  string    `json:"brokerId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// EventMetadata for tracking and debugging.
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	CausationID   string            `json:"causationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// EventPublisher fans load lifecycle events out to subscribers. The
// subscriberID distinguishes multiple listeners on the same load.
type EventPublisher interface {
	Publish(ctx context.Context, loadID string, event Event) error
	PublishBatch(ctx context.Context, loadID string, events []Event) error
	Subscribe(ctx context.Context, loadID string, subscriberID string, filters ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, loadID string, subscriberID string) error
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.LoadID == "" {
		return errors.ValidationFailed("invalid event", "load ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}
