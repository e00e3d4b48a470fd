package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event. A non-nil error means the event was not
	// fully applied and must be delivered again.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes domain events to the outbox inside the caller's
// transaction. txProvider is the *gorm.DB transaction handle.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, txProvider any, events ...DomainEvent) error
}
