package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RawMaterialService handles raw material operations
type RawMaterialService struct {
	materialRepo catalog.RawMaterialRepository
	usageRepo    catalog.UsageLogRepository
	logger       *zap.Logger
}

// NewRawMaterialService creates a new RawMaterialService
func NewRawMaterialService(
	materialRepo catalog.RawMaterialRepository,
	usageRepo catalog.UsageLogRepository,
	logger *zap.Logger,
) *RawMaterialService {
	return &RawMaterialService{
		materialRepo: materialRepo,
		usageRepo:    usageRepo,
		logger:       logger,
	}
}

// Create creates a raw material with the next display code
func (s *RawMaterialService) Create(ctx context.Context, tenantID, userID uuid.UUID, req RawMaterialRequest) (*RawMaterialResponse, error) {
	if err := s.ensureNameFree(ctx, tenantID, req.Name, nil); err != nil {
		return nil, err
	}
	code, err := s.materialRepo.GenerateCode(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	material, err := catalog.NewRawMaterial(tenantID, code, req.ToInput())
	if err != nil {
		return nil, err
	}
	material.SetCreatedBy(userID)

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, err
	}
	s.logger.Info("raw material created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("raw_material_id", material.ID.String()),
		zap.String("code", material.Code),
	)

	response := ToRawMaterialResponse(material)
	return &response, nil
}

// GetByID retrieves a raw material
func (s *RawMaterialService) GetByID(ctx context.Context, tenantID, materialID uuid.UUID) (*RawMaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}
	response := ToRawMaterialResponse(material)
	return &response, nil
}

// List retrieves a page of raw materials
func (s *RawMaterialService) List(ctx context.Context, tenantID uuid.UUID, filter RawMaterialListFilter) ([]RawMaterialResponse, int64, error) {
	domainFilter := filter.ToFilter()

	materials, err := s.materialRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.materialRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RawMaterialResponse, len(materials))
	for i := range materials {
		responses[i] = ToRawMaterialResponse(&materials[i])
	}
	return responses, total, nil
}

// Update replaces the editable fields in place
func (s *RawMaterialService) Update(ctx context.Context, tenantID, materialID uuid.UUID, req RawMaterialRequest) (*RawMaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}
	if catalog.NameKey(req.Name) != material.NameKey() {
		if err := s.ensureNameFree(ctx, tenantID, req.Name, &material.ID); err != nil {
			return nil, err
		}
	}
	if err := material.Update(req.ToInput()); err != nil {
		return nil, err
	}
	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, err
	}
	response := ToRawMaterialResponse(material)
	return &response, nil
}

// Delete removes a raw material. Products and orders keep their copied
// names and prices.
func (s *RawMaterialService) Delete(ctx context.Context, tenantID, materialID uuid.UUID) error {
	return s.materialRepo.DeleteForTenant(ctx, tenantID, materialID)
}

// AdjustStock restocks or consumes a raw material
func (s *RawMaterialService) AdjustStock(ctx context.Context, tenantID, materialID uuid.UUID, req StockAdjustmentRequest) (*RawMaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case StockActionRestock:
		err = material.Restock(req.Quantity.Decimal())
	case StockActionConsume:
		err = material.Consume(req.Quantity.Decimal(), req.Wastage.Decimal())
	default:
		err = shared.NewDomainError("INVALID_INPUT", "Stock action must be restock or consume")
	}
	if err != nil {
		return nil, err
	}

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, err
	}
	s.logger.Info("raw material stock adjusted",
		zap.String("raw_material_id", material.ID.String()),
		zap.String("action", req.Action),
		zap.String("quantity", req.Quantity.String()),
		zap.String("wastage", req.Wastage.String()),
		zap.String("available", material.AvailableQuantity().String()),
	)

	response := ToRawMaterialResponse(material)
	return &response, nil
}

// ListUsage pages through the usage logs of a raw material
func (s *RawMaterialService) ListUsage(ctx context.Context, tenantID, materialID uuid.UUID, filter UsageListFilter) ([]UsageLogResponse, int64, error) {
	if _, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID); err != nil {
		return nil, 0, err
	}
	return listUsage(ctx, s.usageRepo, tenantID, catalog.OwnerRawMaterial, materialID, filter)
}

func (s *RawMaterialService) ensureNameFree(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.materialRepo.ExistsByNameKey(ctx, tenantID, catalog.NameKey(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Raw material with this name already exists")
	}
	return nil
}
