package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// RawMaterialModel is the persistence model for the RawMaterial aggregate root.
type RawMaterialModel struct {
	TenantAggregateModel
	Code            string          `gorm:"type:varchar(20);not null"`
	Name            string          `gorm:"type:varchar(200);not null"`
	NameKey         string          `gorm:"type:varchar(200);not null;index"`
	Description     string          `gorm:"type:text"`
	Size            string          `gorm:"type:varchar(100)"`
	Color           string          `gorm:"type:varchar(100)"`
	UnitType        string          `gorm:"type:varchar(50)"`
	GSTPercent      decimal.Decimal `gorm:"type:numeric;not null"`
	EstimatedPrice  decimal.Decimal `gorm:"type:numeric;not null"`
	ActualPrice     decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity        decimal.Decimal `gorm:"type:numeric;not null"`
	QuantityUsed    decimal.Decimal `gorm:"type:numeric;not null"`
	QuantityWastage decimal.Decimal `gorm:"type:numeric;not null"`
	UsageCount      int             `gorm:"not null;default:0"`
}

func (RawMaterialModel) TableName() string {
	return "raw_materials"
}

func (m *RawMaterialModel) ToDomain() *catalog.RawMaterial {
	return &catalog.RawMaterial{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		Size:                m.Size,
		Color:               m.Color,
		UnitType:            m.UnitType,
		GSTPercent:          m.GSTPercent,
		EstimatedPrice:      m.EstimatedPrice,
		ActualPrice:         m.ActualPrice,
		Quantity:            m.Quantity,
		QuantityUsed:        m.QuantityUsed,
		QuantityWastage:     m.QuantityWastage,
		UsageCount:          m.UsageCount,
	}
}

func (m *RawMaterialModel) FromDomain(r *catalog.RawMaterial) {
	m.fromTenantRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.NameKey = r.NameKey()
	m.Description = r.Description
	m.Size = r.Size
	m.Color = r.Color
	m.UnitType = r.UnitType
	m.GSTPercent = r.GSTPercent
	m.EstimatedPrice = r.EstimatedPrice
	m.ActualPrice = r.ActualPrice
	m.Quantity = r.Quantity
	m.QuantityUsed = r.QuantityUsed
	m.QuantityWastage = r.QuantityWastage
	m.UsageCount = r.UsageCount
}

func RawMaterialModelFromDomain(r *catalog.RawMaterial) *RawMaterialModel {
	m := &RawMaterialModel{}
	m.FromDomain(r)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	TenantAggregateModel
	Code           string                 `gorm:"type:varchar(20);not null"`
	Name           string                 `gorm:"type:varchar(200);not null"`
	NameKey        string                 `gorm:"type:varchar(200);not null;index"`
	Description    string                 `gorm:"type:text"`
	Size           string                 `gorm:"type:varchar(100)"`
	Color          string                 `gorm:"type:varchar(100)"`
	UnitType       string                 `gorm:"type:varchar(50)"`
	Status         string                 `gorm:"type:varchar(20);not null;default:'On-Hold'"`
	TotalRawAmount decimal.Decimal        `gorm:"type:numeric;not null"`
	MarginPercent  decimal.Decimal        `gorm:"type:numeric;not null"`
	WastagePercent decimal.Decimal        `gorm:"type:numeric;not null"`
	TransportCost  decimal.Decimal        `gorm:"type:numeric;not null"`
	MiscCost       decimal.Decimal        `gorm:"type:numeric;not null"`
	GSTPercent     decimal.Decimal        `gorm:"type:numeric;not null"`
	UsageCount     int                    `gorm:"not null;default:0"`
	Materials      []ProductMaterialModel `gorm:"foreignKey:ProductID;references:ID"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() (*catalog.Product, error) {
	status, err := catalog.ParseProductStatus(m.Status)
	if err != nil {
		return nil, malformed(m.TableName(), m.ID, err)
	}
	p := &catalog.Product{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		Size:                m.Size,
		Color:               m.Color,
		UnitType:            m.UnitType,
		Status:              status,
		TotalRawAmount:      m.TotalRawAmount,
		MarginPercent:       m.MarginPercent,
		WastagePercent:      m.WastagePercent,
		TransportCost:       m.TransportCost,
		MiscCost:            m.MiscCost,
		GSTPercent:          m.GSTPercent,
		UsageCount:          m.UsageCount,
		Materials:           make([]catalog.ProductMaterial, len(m.Materials)),
	}
	for i, pm := range m.Materials {
		p.Materials[i] = catalog.ProductMaterial{
			ID:            pm.ID,
			RawMaterialID: pm.RawMaterialID,
			Name:          pm.Name,
			Quantity:      pm.Quantity,
			Price:         pm.Price,
			Total:         pm.Total,
		}
	}
	return p, nil
}

func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.fromTenantRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.NameKey = p.NameKey()
	m.Description = p.Description
	m.Size = p.Size
	m.Color = p.Color
	m.UnitType = p.UnitType
	m.Status = string(p.Status)
	m.TotalRawAmount = p.TotalRawAmount
	m.MarginPercent = p.MarginPercent
	m.WastagePercent = p.WastagePercent
	m.TransportCost = p.TransportCost
	m.MiscCost = p.MiscCost
	m.GSTPercent = p.GSTPercent
	m.UsageCount = p.UsageCount
	m.Materials = make([]ProductMaterialModel, len(p.Materials))
	for i, pm := range p.Materials {
		m.Materials[i] = ProductMaterialModel{
			ID:            pm.ID,
			ProductID:     p.ID,
			Position:      i + 1,
			RawMaterialID: pm.RawMaterialID,
			Name:          pm.Name,
			Quantity:      pm.Quantity,
			Price:         pm.Price,
			Total:         pm.Total,
		}
	}
}

func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductMaterialModel is one bill-of-materials row of a product.
type ProductMaterialModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null"`
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(200)"`
	Quantity      decimal.Decimal `gorm:"type:numeric;not null"`
	Price         decimal.Decimal `gorm:"type:numeric;not null"`
	Total         decimal.Decimal `gorm:"type:numeric;not null"`
}

func (ProductMaterialModel) TableName() string {
	return "product_materials"
}

// UsageLogModel is an append-only usage row. The unique index on owner,
// reference and reference line makes a replayed append a no-op.
type UsageLogModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OwnerKind       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_usage_log_key,priority:1"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_log_key,priority:2"`
	Type            string          `gorm:"type:varchar(20);not null"`
	ReferenceID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_log_key,priority:3"`
	ReferenceLineID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_log_key,priority:4"`
	Quantity        decimal.Decimal `gorm:"type:numeric;not null"`
	Price           decimal.Decimal `gorm:"type:numeric;not null"`
	Total           decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt       time.Time       `gorm:"not null;index"`
}

func (UsageLogModel) TableName() string {
	return "usage_logs"
}

func (m *UsageLogModel) ToDomain() (*catalog.UsageLog, error) {
	typ, err := catalog.ParseUsageType(m.Type)
	if err != nil {
		return nil, malformed(m.TableName(), m.ID, err)
	}
	owner := catalog.OwnerKind(m.OwnerKind)
	if owner != catalog.OwnerRawMaterial && owner != catalog.OwnerProduct {
		return nil, malformed(m.TableName(), m.ID, fmt.Errorf("unknown owner kind %q", m.OwnerKind))
	}
	return &catalog.UsageLog{
		ID:              m.ID,
		TenantID:        m.TenantID,
		OwnerKind:       owner,
		OwnerID:         m.OwnerID,
		Type:            typ,
		ReferenceID:     m.ReferenceID,
		ReferenceLineID: m.ReferenceLineID,
		Quantity:        m.Quantity,
		Price:           m.Price,
		Total:           m.Total,
		CreatedAt:       m.CreatedAt,
	}, nil
}

func UsageLogModelFromDomain(l *catalog.UsageLog) *UsageLogModel {
	return &UsageLogModel{
		ID:              l.ID,
		TenantID:        l.TenantID,
		OwnerKind:       string(l.OwnerKind),
		OwnerID:         l.OwnerID,
		Type:            string(l.Type),
		ReferenceID:     l.ReferenceID,
		ReferenceLineID: l.ReferenceLineID,
		Quantity:        l.Quantity,
		Price:           l.Price,
		Total:           l.Total,
		CreatedAt:       l.CreatedAt,
	}
}
