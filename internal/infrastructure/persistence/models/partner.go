package models

import (
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
)

// CompanyModel is the persistence model for the Company aggregate root.
type CompanyModel struct {
	TenantAggregateModel
	Name      string              `gorm:"type:varchar(200);not null"`
	LegalName string              `gorm:"type:varchar(200)"`
	TaxID     string              `gorm:"type:varchar(50)"`
	Email     string              `gorm:"type:varchar(200)"`
	Phone     string              `gorm:"type:varchar(50)"`
	Website   string              `gorm:"type:varchar(200)"`
	Address   valueobject.Address `gorm:"type:text"`
	LogoKey   string              `gorm:"type:varchar(500)"`
	IsOwn     bool                `gorm:"not null;default:false;index"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		TenantAggregateRoot: m.tenantRoot(),
		Name:                m.Name,
		LegalName:           m.LegalName,
		TaxID:               m.TaxID,
		Email:               m.Email,
		Phone:               m.Phone,
		Website:             m.Website,
		Address:             m.Address,
		LogoKey:             m.LogoKey,
		IsOwn:               m.IsOwn,
	}
}

func (m *CompanyModel) FromDomain(c *partner.Company) {
	m.fromTenantRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.LegalName = c.LegalName
	m.TaxID = c.TaxID
	m.Email = c.Email
	m.Phone = c.Phone
	m.Website = c.Website
	m.Address = c.Address
	m.LogoKey = c.LogoKey
	m.IsOwn = c.IsOwn
}

func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}
