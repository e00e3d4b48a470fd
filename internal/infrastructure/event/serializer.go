package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/mfgops/backend/internal/domain/shared"
)

// EventSerializer turns domain events into outbox payloads and back. Every
// type that can reach the outbox is registered up front; the publisher refuses
// anything else so an undecodable row is never written.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// Register binds eventType to the struct T whose pointer implements
// shared.DomainEvent.
//
//	event.Register[purchasing.PurchaseOrderCreatedEvent](s, purchasing.EventTypePurchaseOrderCreated)
func Register[T any, P interface {
	*T
	shared.DomainEvent
}](s *EventSerializer, eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = func() shared.DomainEvent { return P(new(T)) }
}

// Serialize encodes a registered event
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if !s.IsRegistered(event.EventType()) {
		return nil, fmt.Errorf("event type %s is not registered", event.EventType())
	}
	return json.Marshal(event)
}

// Deserialize decodes an outbox payload. The type stored in the payload must
// agree with the row's event type.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	if got := event.EventType(); got != eventType {
		return nil, fmt.Errorf("payload carries event type %q, row says %q", got, eventType)
	}
	return event, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// Types lists the registered event types in order
func (s *EventSerializer) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
