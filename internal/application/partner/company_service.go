package partner

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// CompanyService handles company directory operations
type CompanyService struct {
	companyRepo partner.CompanyRepository
	objects     storage.ObjectStorage
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo partner.CompanyRepository, objects storage.ObjectStorage, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		objects:     objects,
		logger:      logger,
	}
}

// Create registers a company. A tenant has at most one own company.
func (s *CompanyService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CompanyRequest) (*CompanyResponse, error) {
	if req.IsOwn {
		exists, err := s.companyRepo.ExistsOwn(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, partner.ErrOwnCompanyExists
		}
	}

	company, err := partner.NewCompany(tenantID, req.ToInput(), req.IsOwn)
	if err != nil {
		return nil, err
	}
	company.SetCreatedBy(userID)

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	company.ClearDomainEvents()

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID retrieves a company with a fresh logo link
func (s *CompanyService) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	s.attachLogoURL(ctx, company, &response)
	return &response, nil
}

// GetOwn retrieves the tenant's own company profile
func (s *CompanyService) GetOwn(ctx context.Context, tenantID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindOwn(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	s.attachLogoURL(ctx, company, &response)
	return &response, nil
}

// List retrieves a page of companies
func (s *CompanyService) List(ctx context.Context, tenantID uuid.UUID, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	domainFilter := filter.ToFilter()

	companies, err := s.companyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.companyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = ToCompanyResponse(&companies[i])
	}
	return responses, total, nil
}

// Update edits a company in place. Orders keep the details they copied.
func (s *CompanyService) Update(ctx context.Context, tenantID, companyID uuid.UUID, req CompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	if err := company.Update(req.ToInput()); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	company.ClearDomainEvents()

	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete removes a company and, best effort, its logo
func (s *CompanyService) Delete(ctx context.Context, tenantID, companyID uuid.UUID) error {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return err
	}
	if err := s.companyRepo.DeleteForTenant(ctx, tenantID, companyID); err != nil {
		return err
	}
	if company.LogoKey != "" {
		s.removeObject(ctx, company.LogoKey)
	}
	return nil
}

// UploadLogo stores a new logo and drops the one it replaces
func (s *CompanyService) UploadLogo(ctx context.Context, tenantID, companyID uuid.UUID, req UploadLogoRequest, body io.Reader) (*CompanyResponse, error) {
	if err := storage.CheckImage(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	key := storage.CompanyLogoKey(tenantID, companyID, req.FileName)
	if _, err := s.objects.Upload(ctx, key, body, req.Size, req.ContentType); err != nil {
		return nil, err
	}
	prev := company.SetLogo(key)
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	if prev != "" && prev != key {
		s.removeObject(ctx, prev)
	}

	response := ToCompanyResponse(company)
	s.attachLogoURL(ctx, company, &response)
	return &response, nil
}

func (s *CompanyService) attachLogoURL(ctx context.Context, company *partner.Company, response *CompanyResponse) {
	if company.LogoKey == "" {
		return
	}
	url, _, err := s.objects.GenerateDownloadURL(ctx, company.LogoKey)
	if err != nil {
		s.logger.Warn("failed to sign company logo url",
			zap.String("company_id", company.ID.String()),
			zap.Error(err),
		)
		return
	}
	response.LogoURL = url
}

func (s *CompanyService) removeObject(ctx context.Context, key string) {
	if err := s.objects.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete object", zap.String("object_key", key), zap.Error(err))
	}
}
