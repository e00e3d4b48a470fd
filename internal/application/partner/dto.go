package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
)

// CompanyRequest creates or updates a company profile
type CompanyRequest struct {
	Name      string              `json:"name" binding:"required,min=1,max=200"`
	LegalName string              `json:"legal_name" binding:"max=200"`
	TaxID     string              `json:"tax_id" binding:"max=50"`
	Email     string              `json:"email" binding:"omitempty,email,max=200"`
	Phone     string              `json:"phone" binding:"max=50"`
	Website   string              `json:"website" binding:"omitempty,url,max=200"`
	Address   valueobject.Address `json:"address"`
	// IsOwn marks the tenant's own profile. It is only read on create.
	IsOwn bool `json:"is_own"`
}

// ToInput converts the request into a domain input
func (r CompanyRequest) ToInput() partner.CompanyInput {
	return partner.CompanyInput{
		Name:      r.Name,
		LegalName: r.LegalName,
		TaxID:     r.TaxID,
		Email:     r.Email,
		Phone:     r.Phone,
		Website:   r.Website,
		Address:   r.Address,
	}
}

// UploadLogoRequest describes an uploaded logo file
type UploadLogoRequest struct {
	FileName    string
	ContentType string
	Size        int64
}

// CompanyListFilter represents company list query parameters
type CompanyListFilter struct {
	Search   string `form:"search"`
	IsOwn    *bool  `form:"is_own"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the query into a normalised domain filter
func (f CompanyListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
	if f.IsOwn != nil {
		filter.Filters["is_own"] = *f.IsOwn
	}
	return filter
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID           `json:"id"`
	TenantID  uuid.UUID           `json:"tenant_id"`
	Name      string              `json:"name"`
	LegalName string              `json:"legal_name"`
	TaxID     string              `json:"tax_id"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone"`
	Website   string              `json:"website"`
	Address   valueobject.Address `json:"address"`
	IsOwn     bool                `json:"is_own"`
	HasLogo   bool                `json:"has_logo"`
	LogoURL   string              `json:"logo_url,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *partner.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		LegalName: c.LegalName,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Website:   c.Website,
		Address:   c.Address,
		IsOwn:     c.IsOwn,
		HasLogo:   c.LogoKey != "",
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
