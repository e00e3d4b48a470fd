package purchasing

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder, events ...shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Update(ctx context.Context, order *purchasing.PurchaseOrder, events ...shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) PatchStatus(ctx context.Context, tenantID, id uuid.UUID, patch purchasing.StatusPatch, events ...shared.DomainEvent) error {
	args := m.Called(ctx, tenantID, id, patch, events)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error {
	args := m.Called(ctx, tenantID, id, events)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) StatusSummary(ctx context.Context, tenantID uuid.UUID, kind purchasing.Kind) (purchasing.StatusSummary, error) {
	args := m.Called(ctx, tenantID, kind)
	return args.Get(0).(purchasing.StatusSummary), args.Error(1)
}

func (m *MockPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, kind purchasing.Kind) (string, error) {
	args := m.Called(ctx, tenantID, kind)
	return args.String(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, orderNumber)
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

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
