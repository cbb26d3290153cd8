package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// MockPublisher implements types.EventPublisher for testing.
type MockPublisher struct {
	mu            sync.RWMutex
	events        map[string][]types.Event // key: loadID
	subscriptions map[string]chan types.Event
	closed        bool
}

var _ types.EventPublisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new mock publisher for testing.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events:        make(map[string][]types.Event),
		subscriptions: make(map[string]chan types.Event),
	}
}

// Publish records an event and notifies subscribers.
func (m *MockPublisher) Publish(ctx context.Context, loadID string, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("publisher is closed")
	}

	m.events[loadID] = append(m.events[loadID], event)

	if ch, exists := m.subscriptions[loadID]; exists {
		select {
		case ch <- event:
		default:
			// Channel is full or closed, skip
		}
	}

	return nil
}

// PublishBatch records multiple events.
func (m *MockPublisher) PublishBatch(ctx context.Context, loadID string, events []types.Event) error {
	for _, event := range events {
		if err := m.Publish(ctx, loadID, event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe creates a subscription for testing.
func (m *MockPublisher) Subscribe(ctx context.Context, loadID string, subscriberID string, filters ...types.EventType) (<-chan types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("publisher is closed")
	}

	if _, exists := m.subscriptions[loadID]; exists {
		return nil, fmt.Errorf("subscription already exists")
	}

	ch := make(chan types.Event, 100)
	m.subscriptions[loadID] = ch
	return ch, nil
}

// Unsubscribe removes a subscription.
func (m *MockPublisher) Unsubscribe(ctx context.Context, loadID string, subscriberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, exists := m.subscriptions[loadID]
	if !exists {
		return fmt.Errorf("no subscription found")
	}
	close(ch)
	delete(m.subscriptions, loadID)
	return nil
}

// PublishedEvents returns the events recorded for a load.
func (m *MockPublisher) PublishedEvents(loadID string) []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Event, len(m.events[loadID]))
	copy(out, m.events[loadID])
	return out
}

// AllEvents returns every recorded event keyed by load.
func (m *MockPublisher) AllEvents() map[string][]types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]types.Event, len(m.events))
	for k, v := range m.events {
		out[k] = append([]types.Event{}, v...)
	}
	return out
}

// Close marks the publisher closed; further operations fail.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for key, ch := range m.subscriptions {
		close(ch)
		delete(m.subscriptions, key)
	}
}
