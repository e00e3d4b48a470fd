package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	materialRepo catalog.RawMaterialRepository
	usageRepo    catalog.UsageLogRepository
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	materialRepo catalog.RawMaterialRepository,
	usageRepo catalog.UsageLogRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		materialRepo: materialRepo,
		usageRepo:    usageRepo,
		logger:       logger,
	}
}

// Create creates a new product in On-Hold status with the next display code.
// The bill of materials is logged against each raw material asynchronously.
func (s *ProductService) Create(ctx context.Context, tenantID, userID uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrLineCount, len(req.Materials))
	defer span.End()

	if err := s.ensureNameFree(ctx, tenantID, req.Name, nil); err != nil {
		return nil, err
	}
	in := req.ToInput()
	if err := s.resolveMaterials(ctx, tenantID, in.Materials); err != nil {
		return nil, err
	}

	code, err := s.productRepo.GenerateCode(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	product, err := catalog.NewProduct(tenantID, code, in)
	if err != nil {
		return nil, err
	}
	product.SetCreatedBy(userID)

	if err := s.productRepo.Create(ctx, product, product.GetDomainEvents()...); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	product.ClearDomainEvents()

	telemetry.SetAttributes(span, telemetry.SpanAttrOwnerID, product.ID.String())
	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by its ID within a tenant
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := filter.ToFilter()

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update replaces a product's fields and bill of materials
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product.IsLocked() {
		return nil, catalog.ErrProductLocked
	}
	if catalog.NameKey(req.Name) != product.NameKey() {
		if err := s.ensureNameFree(ctx, tenantID, req.Name, &product.ID); err != nil {
			return nil, err
		}
	}
	in := req.ToInput()
	if err := s.resolveMaterials(ctx, tenantID, in.Materials); err != nil {
		return nil, err
	}

	if err := product.Update(in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product, product.GetDomainEvents()...); err != nil {
		return nil, err
	}
	product.ClearDomainEvents()

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateStatus changes the approval status. Products with logged usage are frozen.
func (s *ProductService) UpdateStatus(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductStatusRequest) (*ProductResponse, error) {
	status, err := catalog.ParseProductStatus(req.Status)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	changed, err := product.SetStatus(status)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.productRepo.Update(ctx, product, product.GetDomainEvents()...); err != nil {
			return nil, err
		}
		product.ClearDomainEvents()
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product that has no usage logged against it
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if err := product.MarkDeleted(); err != nil {
		return err
	}
	return s.productRepo.DeleteForTenant(ctx, tenantID, productID, product.GetDomainEvents()...)
}

// Pricing returns the suggested price breakdown
func (s *ProductService) Pricing(ctx context.Context, tenantID, productID uuid.UUID) (*ProductPricingResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return &ProductPricingResponse{
		ProductID: product.ID,
		Code:      product.Code,
		Breakdown: product.Pricing(),
	}, nil
}

// ListUsage pages through the usage logs of a product
func (s *ProductService) ListUsage(ctx context.Context, tenantID, productID uuid.UUID, filter UsageListFilter) ([]UsageLogResponse, int64, error) {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return nil, 0, err
	}
	return listUsage(ctx, s.usageRepo, tenantID, catalog.OwnerProduct, productID, filter)
}

func (s *ProductService) ensureNameFree(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsByNameKey(ctx, tenantID, catalog.NameKey(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this name already exists")
	}
	return nil
}

// resolveMaterials checks that every referenced raw material exists and fills
// in names left blank on the form.
func (s *ProductService) resolveMaterials(ctx context.Context, tenantID uuid.UUID, materials []catalog.ProductMaterialInput) error {
	if len(materials) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(materials))
	seen := make(map[uuid.UUID]bool, len(materials))
	for _, m := range materials {
		if !seen[m.RawMaterialID] {
			seen[m.RawMaterialID] = true
			ids = append(ids, m.RawMaterialID)
		}
	}
	found, err := s.materialRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*catalog.RawMaterial, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for i := range materials {
		rm, ok := byID[materials[i].RawMaterialID]
		if !ok {
			return shared.NewDomainError("INVALID_MATERIAL", fmt.Sprintf("materials[%d]: raw material not found", i))
		}
		if strings.TrimSpace(materials[i].Name) == "" {
			materials[i].Name = rm.Name
		}
	}
	return nil
}

func listUsage(ctx context.Context, repo catalog.UsageLogRepository, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID, filter UsageListFilter) ([]UsageLogResponse, int64, error) {
	domainFilter := filter.ToFilter()
	logs, err := repo.ListByOwner(ctx, tenantID, owner, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.CountByOwner(ctx, tenantID, owner, ownerID)
	if err != nil {
		return nil, 0, err
	}
	return toUsageLogResponses(logs), total, nil
}
