package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxProcessorConfig tunes the delivery loop
type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// Sent entries older than CleanupRetention are deleted every
	// CleanupInterval when CleanupEnabled is set.
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
	// ClaimTimeout is how long an entry may sit in processing before it is
	// handed to another processor.
	ClaimTimeout time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
		ClaimTimeout:     5 * time.Minute,
	}
}

func (c OutboxProcessorConfig) withDefaults() OutboxProcessorConfig {
	d := DefaultOutboxProcessorConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.CleanupRetention <= 0 {
		c.CleanupRetention = d.CleanupRetention
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.ClaimTimeout <= 0 {
		c.ClaimTimeout = d.ClaimTimeout
	}
	return c
}

// DeliveryObserver is told about every delivery attempt.
type DeliveryObserver interface {
	ObserveDelivery(ctx context.Context, eventType string, err error, dead bool)
}

// OutboxProcessor polls the outbox and hands each claimed entry to the bus.
// Several processors may share a database: MarkProcessing decides which one
// delivers an entry.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	observer   DeliveryObserver
	now        func() time.Time

	cancel context.CancelFunc
	done   sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     config.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetObserver attaches a delivery observer, e.g. the telemetry counters.
func (p *OutboxProcessor) SetObserver(observer DeliveryObserver) {
	p.observer = observer
}

// Start runs the poll loop until Stop or until ctx ends
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done.Add(1)
	go p.run(ctx)
	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("cleanup", p.config.CleanupEnabled),
	)
	return nil
}

// Stop cancels the loop and waits for the batch in flight
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	finished := make(chan struct{})
	go func() {
		p.done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) run(ctx context.Context) {
	defer p.done.Done()

	p.releaseStale(ctx)

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()
	housekeeping := time.NewTicker(p.config.CleanupInterval)
	defer housekeeping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			// a full batch means more is waiting
			for p.ProcessBatch(ctx) >= p.config.BatchSize && ctx.Err() == nil {
			}
		case <-housekeeping.C:
			p.releaseStale(ctx)
			if p.config.CleanupEnabled {
				p.cleanup(ctx)
			}
		}
	}
}

// ProcessBatch claims and delivers up to one batch of new entries and one of
// entries due for retry. It returns how many entries it claimed.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) int {
	claimed := 0
	sources := []struct {
		name string
		find func() ([]*shared.OutboxEntry, error)
	}{
		{"pending", func() ([]*shared.OutboxEntry, error) {
			return p.repo.FindPending(ctx, p.config.BatchSize)
		}},
		{"retryable", func() ([]*shared.OutboxEntry, error) {
			return p.repo.FindRetryable(ctx, p.now(), p.config.BatchSize)
		}},
	}
	for _, src := range sources {
		entries, err := src.find()
		if err != nil {
			p.logger.Error("outbox scan failed", zap.String("scan", src.name), zap.Error(err))
			return claimed
		}
		claimed += p.deliverAll(ctx, entries)
	}
	return claimed
}

func (p *OutboxProcessor) deliverAll(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	owned, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("claiming outbox entries failed", zap.Int("count", len(ids)), zap.Error(err))
		return 0
	}
	for _, entry := range owned {
		p.deliver(ctx, entry)
	}
	return len(owned)
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) {
	log := p.logger.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)

	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.bus.Publish(ctx, event)
	}
	if err != nil {
		log.Error("event delivery failed", zap.Int("attempt", entry.RetryCount+1), zap.Error(err))
		p.recordFailure(ctx, log, entry, err)
		return
	}

	entry.MarkSent()
	p.observe(ctx, entry, nil)
	if err := p.repo.Update(ctx, entry); err != nil {
		// the entry is redelivered after the claim goes stale; handlers are idempotent
		log.Error("marking entry sent failed", zap.Error(err))
		return
	}
	log.Debug("event delivered")
}

// recordFailure schedules the next attempt or dead-letters the entry
func (p *OutboxProcessor) recordFailure(ctx context.Context, log *zap.Logger, entry *shared.OutboxEntry, cause error) {
	entry.MarkFailed(cause.Error())
	p.observe(ctx, entry, cause)
	if entry.IsDead() {
		log.Warn("event dead-lettered",
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.String("tenant_id", entry.TenantID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("saving failed attempt failed", zap.Error(err))
	}
}

func (p *OutboxProcessor) observe(ctx context.Context, entry *shared.OutboxEntry, err error) {
	if p.observer != nil {
		p.observer.ObserveDelivery(ctx, entry.EventType, err, entry.IsDead())
	}
}

func (p *OutboxProcessor) releaseStale(ctx context.Context) {
	released, err := p.repo.ReleaseStale(ctx, p.now().Add(-p.config.ClaimTimeout))
	if err != nil {
		p.logger.Error("releasing stale outbox claims failed", zap.Error(err))
		return
	}
	if released > 0 {
		p.logger.Warn("released stale outbox claims", zap.Int64("count", released))
	}
}

// cleanup deletes sent entries past the retention window
func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := p.now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("outbox cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("outbox cleaned up", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
