package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string { return []string{"TestEvent"} }

func TestInMemoryEventBus_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	orders := newTestHandler("OrderCreated")
	both := newTestHandler("OrderCreated", "ProductCreated")
	everything := newTestHandler()
	bus.Subscribe(orders)
	bus.Subscribe(both)
	bus.Subscribe(everything)

	order := newTestEvent("OrderCreated", uuid.New())
	product := newTestEvent("ProductCreated", uuid.New())
	other := newTestEvent("CompanyUpdated", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), order, product, other))

	assert.Equal(t, []shared.DomainEvent{order}, orders.getHandled())
	assert.Equal(t, []shared.DomainEvent{order, product}, both.getHandled())
	assert.Equal(t, []shared.DomainEvent{order, product, other}, everything.getHandled())
}

func TestInMemoryEventBus_SubscribeOverridesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderCreated")
	bus.Subscribe(h, "ProductCreated")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated", uuid.New())))
	assert.Empty(t, h.getHandled())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ProductCreated", uuid.New())))
	assert.Len(t, h.getHandled(), 1)
}

func TestInMemoryEventBus_Failures(t *testing.T) {
	materialErr := errors.New("material missing")
	productErr := errors.New("product missing")

	t.Run("one failing handler does not block the rest", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("TestEvent")
		failing.setError(materialErr)
		healthy := newTestHandler("TestEvent")
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New()))

		assert.ErrorIs(t, err, materialErr)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("errors are joined", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		a := newTestHandler("TestEvent")
		a.setError(materialErr)
		b := newTestHandler("TestEvent")
		b.setError(productErr)
		bus.Subscribe(a)
		bus.Subscribe(b)

		err := bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New()))

		assert.ErrorIs(t, err, materialErr)
		assert.ErrorIs(t, err, productErr)
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		after := newTestHandler("TestEvent")
		bus.Subscribe(panickingHandler{})
		bus.Subscribe(after)

		err := bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New()))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Len(t, after.getHandled(), 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	kept := newTestHandler("OrderCreated")
	dropped := newTestHandler("OrderCreated", "ProductCreated")
	bus.Subscribe(kept)
	bus.Subscribe(dropped)

	bus.Unsubscribe(dropped)
	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("OrderCreated", uuid.New()),
		newTestEvent("ProductCreated", uuid.New()),
	))

	assert.Len(t, kept.getHandled(), 1)
	assert.Empty(t, dropped.getHandled())
}

func TestInMemoryEventBus_StopRejectsPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("TestEvent")
	bus.Subscribe(h)
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))

	err := bus.Publish(ctx, newTestEvent("TestEvent", uuid.New()))
	assert.ErrorIs(t, err, ErrBusStopped)
	assert.Empty(t, h.getHandled())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent", uuid.New())))
	assert.Len(t, h.getHandled(), 1)
}
