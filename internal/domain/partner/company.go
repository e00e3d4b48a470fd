package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// ErrOwnCompanyExists is returned when a tenant tries to register a second own company.
var ErrOwnCompanyExists = shared.NewDomainError("OWN_COMPANY_EXISTS", "The tenant already has its own company profile")

// CompanyInput is the editable part of a company profile.
type CompanyInput struct {
	Name      string
	LegalName string
	TaxID     string
	Email     string
	Phone     string
	Website   string
	Address   valueobject.Address
}

// Company is a business the tenant trades with, or the tenant itself when
// IsOwn is set. Orders reference companies by id and copy their contact
// details into the order's counterparty.
type Company struct {
	shared.TenantAggregateRoot
	Name      string
	LegalName string
	TaxID     string
	Email     string
	Phone     string
	Website   string
	Address   valueobject.Address
	LogoKey   string
	IsOwn     bool
}

// NewCompany creates a company profile.
func NewCompany(tenantID uuid.UUID, in CompanyInput, isOwn bool) (*Company, error) {
	c := &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		IsOwn:               isOwn,
	}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCompanyCreatedEvent(c))
	return c, nil
}

// Update replaces the profile fields in place.
func (c *Company) Update(in CompanyInput) error {
	if err := c.apply(in); err != nil {
		return err
	}
	c.Touch(time.Now())
	c.AddDomainEvent(NewCompanyUpdatedEvent(c))
	return nil
}

func (c *Company) apply(in CompanyInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.Name = name
	c.LegalName = strings.TrimSpace(in.LegalName)
	c.TaxID = strings.ToUpper(strings.TrimSpace(in.TaxID))
	c.Email = strings.ToLower(email)
	c.Phone = phone
	c.Website = strings.TrimSpace(in.Website)
	c.Address = in.Address.Normalized()
	return nil
}

// SetLogo records the object key of an uploaded logo and returns the key it replaced.
func (c *Company) SetLogo(key string) string {
	prev := c.LogoKey
	c.LogoKey = key
	c.Touch(time.Now())
	return prev
}

// MarkDeleted raises the deletion event.
func (c *Company) MarkDeleted() {
	c.AddDomainEvent(NewCompanyDeletedEvent(c))
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone format")
	}
	return nil
}
