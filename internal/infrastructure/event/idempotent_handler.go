package event

import (
	"context"
	"fmt"

	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler run outcomes passed to a HandlerObserver
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// HandlerObserver is told how each wrapped handler run ended
type HandlerObserver interface {
	ObserveHandled(ctx context.Context, handler, eventType, outcome string)
}

// IdempotentHandler skips events its wrapped handler already applied. The
// key is written only after a successful run, so a failed event stays open
// for the outbox retry.
type IdempotentHandler struct {
	inner    shared.EventHandler
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
	logger   *zap.Logger
	observer HandlerObserver
	name     string
}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

func WithHandlerObserver(observer HandlerObserver) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.observer = observer }
}

// WithHandlerName sets the key namespace. It defaults to the wrapped
// handler's type name.
func WithHandlerName(name string) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.name = name }
}

func NewIdempotentHandler(
	inner shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		inner:  inner,
		store:  store,
		config: shared.DefaultIdempotencyConfig(),
		logger: logger,
		name:   fmt.Sprintf("%T", inner),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.inner.EventTypes()
}

// Handle runs the wrapped handler unless the event's key is recorded
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.run(ctx, event)
	}

	key := h.name + ":" + event.EventID().String()
	log := h.logger.With(zap.String("key", key), zap.String("event_type", event.EventType()))

	switch done, err := h.store.IsProcessed(ctx, key); {
	case err != nil:
		// handlers below are safe to re-run; an unreachable store only costs work
		log.Warn("idempotency lookup failed, running handler", zap.Error(err))
	case done:
		h.observe(ctx, event, OutcomeDuplicate)
		log.Debug("event already applied")
		return nil
	}

	if err := h.run(ctx, event); err != nil {
		return err
	}
	if _, err := h.store.MarkProcessed(ctx, key, h.config.TTL); err != nil {
		log.Warn("recording applied event failed", zap.Error(err))
	}
	return nil
}

func (h *IdempotentHandler) run(ctx context.Context, event shared.DomainEvent) error {
	if err := h.inner.Handle(ctx, event); err != nil {
		h.observe(ctx, event, OutcomeFailed)
		return err
	}
	h.observe(ctx, event, OutcomeApplied)
	return nil
}

func (h *IdempotentHandler) observe(ctx context.Context, event shared.DomainEvent, outcome string) {
	if h.observer != nil {
		h.observer.ObserveHandled(ctx, h.name, event.EventType(), outcome)
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// WrapHandlersWithIdempotency wraps each handler with the same store and options
func WrapHandlersWithIdempotency(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		wrapped = append(wrapped, NewIdempotentHandler(h, store, logger, opts...))
	}
	return wrapped
}
