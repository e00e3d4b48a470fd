package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxService lets a tenant inspect and requeue its dead-lettered events
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, logger: logger}
}

// OutboxEntryDTO is an outbox row as shown to admins. Payload is the stored
// event JSON.
type OutboxEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
	LastError     string          `json:"last_error,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// OutboxStatsDTO counts entries per status over all tenants
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetDeadLetterEntries pages through the tenant's dead entries, newest first
func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, tenantID uuid.UUID, filter OutboxFilter) (shared.Paginated[OutboxEntryDTO], error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()

	entries, total, err := s.repo.FindDeadForTenant(ctx, tenantID, f.Page, f.PageSize)
	if err != nil {
		s.logger.Error("listing dead outbox entries failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return shared.Paginated[OutboxEntryDTO]{}, shared.WrapDomainError("INTERNAL_ERROR", "Failed to retrieve dead letter entries", err)
	}

	items := make([]OutboxEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, toOutboxEntryDTO(e))
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func (s *OutboxService) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry requeues a dead entry with a fresh retry budget. Entries in
// any other state are rejected with INVALID_STATE.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, tenantID, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.Requeue() != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Only dead entries can be retried, entry is "+string(entry.Status))
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("requeue of outbox entry failed", zap.String("id", id.String()), zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to retry entry", err)
	}

	s.logger.Info("dead outbox entry requeued",
		zap.String("id", id.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("event_type", entry.EventType),
	)
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// GetStats backs the health endpoint. It carries no tenant data.
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("counting outbox entries failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get outbox stats")
	}

	stats := &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func toOutboxEntryDTO(e *shared.OutboxEntry) OutboxEntryDTO {
	dto := OutboxEntryDTO{
		ID:            e.ID,
		TenantID:      e.TenantID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if json.Valid(e.Payload) {
		dto.Payload = json.RawMessage(e.Payload)
	}
	return dto
}
