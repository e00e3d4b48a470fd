package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepoForService is a mock implementation for testing OutboxService
type mockOutboxRepoForService struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newMockOutboxRepoForService() *mockOutboxRepoForService {
	return &mockOutboxRepoForService{
		entries: make(map[uuid.UUID]*shared.OutboxEntry),
	}
}

func (r *mockOutboxRepoForService) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepoForService) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepoForService) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *mockOutboxRepoForService) FindDeadForTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead && e.TenantID == tenantID {
			result = append(result, e)
		}
	}
	total := int64(len(result))

	start := (page - 1) * pageSize
	if start >= len(result) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *mockOutboxRepoForService) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shared.OutboxEntry, error) {
	if e, ok := r.entries[id]; ok && e.TenantID == tenantID {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *mockOutboxRepoForService) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *mockOutboxRepoForService) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepoForService) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	return 0, nil
}

func (r *mockOutboxRepoForService) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *mockOutboxRepoForService) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func deadEntry(tenantID uuid.UUID) *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       uuid.New(),
		EventType:     "PurchaseOrderCreated",
		AggregateID:   uuid.New(),
		AggregateType: "PurchaseOrder",
		Status:        shared.OutboxStatusDead,
		RetryCount:    5,
		MaxRetries:    5,
		LastError:     "raw material not found",
		Payload:       []byte(`{"type":"PurchaseOrderCreated"}`),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())
	tenantID := uuid.New()

	for i := 0; i < 5; i++ {
		e := deadEntry(tenantID)
		repo.entries[e.ID] = e
	}
	other := deadEntry(uuid.New())
	repo.entries[other.ID] = other
	pending := &shared.OutboxEntry{ID: uuid.New(), TenantID: tenantID, Status: shared.OutboxStatusPending}
	repo.entries[pending.ID] = pending

	result, err := service.GetDeadLetterEntries(context.Background(), tenantID, OutboxFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 3, result.TotalPages)

	for _, entry := range result.Items {
		assert.Equal(t, "DEAD", entry.Status)
		assert.Equal(t, tenantID, entry.TenantID)
		assert.JSONEq(t, `{"type":"PurchaseOrderCreated"}`, string(entry.Payload))
	}
}

func TestOutboxService_GetDeadLetterEntries_ClampsPaging(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())

	result, err := service.GetDeadLetterEntries(context.Background(), uuid.New(), OutboxFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, shared.MaxPageSize, result.PageSize)
	assert.Empty(t, result.Items)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())
	e := deadEntry(uuid.New())
	repo.entries[e.ID] = e

	result, err := service.RetryDeadEntry(context.Background(), e.TenantID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
	assert.Equal(t, 0, result.RetryCount)
	assert.Empty(t, result.LastError)
}

func TestOutboxService_RetryDeadEntry_OtherTenant(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())
	e := deadEntry(uuid.New())
	repo.entries[e.ID] = e

	_, err := service.RetryDeadEntry(context.Background(), uuid.New(), e.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.OutboxStatusDead, e.Status)
}

func TestOutboxService_RetryDeadEntry_NotDead(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())
	tenantID := uuid.New()
	entry := &shared.OutboxEntry{ID: uuid.New(), TenantID: tenantID, Status: shared.OutboxStatusPending}
	repo.entries[entry.ID] = entry

	_, err := service.RetryDeadEntry(context.Background(), tenantID, entry.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOutboxService_GetStats(t *testing.T) {
	repo := newMockOutboxRepoForService()
	service := NewOutboxService(repo, zap.NewNop())

	statuses := []shared.OutboxStatus{
		shared.OutboxStatusPending,
		shared.OutboxStatusPending,
		shared.OutboxStatusProcessing,
		shared.OutboxStatusSent,
		shared.OutboxStatusSent,
		shared.OutboxStatusSent,
		shared.OutboxStatusFailed,
		shared.OutboxStatusDead,
	}

	for _, status := range statuses {
		entry := &shared.OutboxEntry{
			ID:     uuid.New(),
			Status: status,
		}
		repo.entries[entry.ID] = entry
	}

	stats, err := service.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Processing)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(8), stats.Total)
}
