package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop. The outbox entry stays
// retryable and is picked up after the next start.
var ErrBusStopped = errors.New("event bus is stopped")

// anyEvent keys the handlers that receive every event type
const anyEvent = "*"

// InMemoryEventBus delivers events to subscribed handlers in the calling
// goroutine. Handlers of one event run in subscription order.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
	stopped  atomic.Bool
	inflight sync.WaitGroup
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers handler for eventTypes, or for the handler's own
// EventTypes when none are given. A handler with no types receives all events.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	if len(eventTypes) == 0 {
		eventTypes = []string{anyEvent}
	}

	b.mu.Lock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.mu.Unlock()

	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, hs := range b.handlers {
		kept := hs[:0:0]
		for _, h := range hs {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(b.handlers, t)
		} else {
			b.handlers[t] = kept
		}
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	specific, all := b.handlers[eventType], b.handlers[anyEvent]
	out := make([]shared.EventHandler, 0, len(specific)+len(all))
	return append(append(out, specific...), all...)
}

// Publish runs every matching handler. A failing handler does not stop the
// others; the failures are joined so the caller can retry the delivery.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	var errs []error
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("handler", fmt.Sprintf("%T", handler)),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// dispatch runs one handler and turns a panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %T panicked on %s: %v", handler, event.EventType(), r)
		}
	}()
	return handler.Handle(ctx, event)
}

// Start reopens a stopped bus
func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop rejects new publishes and waits for running ones
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
