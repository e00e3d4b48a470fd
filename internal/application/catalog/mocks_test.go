package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product, events ...shared.DomainEvent) error {
	return m.Called(ctx, product, events).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product, events ...shared.DomainEvent) error {
	return m.Called(ctx, product, events).Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error {
	return m.Called(ctx, tenantID, id, events).Error(0)
}

func (m *MockProductRepository) GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockProductRepository) ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, key, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RecordUsage(ctx context.Context, log *catalog.UsageLog) (bool, error) {
	args := m.Called(ctx, log)
	return args.Bool(0), args.Error(1)
}

// MockRawMaterialRepository is a mock implementation of RawMaterialRepository
type MockRawMaterialRepository struct {
	mock.Mock
}

func (m *MockRawMaterialRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.RawMaterial, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.RawMaterial), args.Error(1)
}

func (m *MockRawMaterialRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.RawMaterial, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RawMaterial), args.Error(1)
}

func (m *MockRawMaterialRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.RawMaterial, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RawMaterial), args.Error(1)
}

func (m *MockRawMaterialRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRawMaterialRepository) Create(ctx context.Context, material *catalog.RawMaterial) error {
	return m.Called(ctx, material).Error(0)
}

func (m *MockRawMaterialRepository) Update(ctx context.Context, material *catalog.RawMaterial) error {
	return m.Called(ctx, material).Error(0)
}

func (m *MockRawMaterialRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockRawMaterialRepository) GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockRawMaterialRepository) ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, key, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRawMaterialRepository) RecordUsage(ctx context.Context, log *catalog.UsageLog, actualPrice *decimal.Decimal) (bool, error) {
	args := m.Called(ctx, log, actualPrice)
	return args.Bool(0), args.Error(1)
}

// MockUsageLogRepository is a mock implementation of UsageLogRepository
type MockUsageLogRepository struct {
	mock.Mock
}

func (m *MockUsageLogRepository) ListByOwner(ctx context.Context, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID, filter shared.Filter) ([]catalog.UsageLog, error) {
	args := m.Called(ctx, tenantID, owner, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.UsageLog), args.Error(1)
}

func (m *MockUsageLogRepository) CountByOwner(ctx context.Context, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, owner, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
