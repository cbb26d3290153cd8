// Package events implements load lifecycle event publishing over Redis
// Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/google/uuid"
)

// PublishEventWithContext is a helper to publish events with consistent
// structure. It constructs a standard types.Event and publishes it using the
// provided publisher.
func PublishEventWithContext(publisher types.EventPublisher, ctx context.Context, eventType types.EventType, loadID string, brokerID string, data map[string]interface{}, source string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			LoadID:    loadID,
			BrokerID:  brokerID,
			Timestamp: time.Now(),
			Version:   1,
		},
		Metadata: types.EventMetadata{
			Source: source,
		},
		Payload: payload,
	}

	if err := publisher.Publish(ctx, loadID, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
