package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ==================== Product DTOs ====================

// ProductMaterialRequest is one bill-of-materials line
type ProductMaterialRequest struct {
	RawMaterialID uuid.UUID      `json:"raw_material_id" binding:"required"`
	Name          string         `json:"name" binding:"max=200"`
	Quantity      costing.Number `json:"quantity"`
	Price         costing.Number `json:"price"`
}

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Name           string                   `json:"name" binding:"required,min=1,max=200"`
	Description    string                   `json:"description" binding:"max=2000"`
	Size           string                   `json:"size" binding:"max=50"`
	Color          string                   `json:"color" binding:"max=50"`
	UnitType       string                   `json:"unit_type" binding:"max=20"`
	MarginPercent  costing.Number           `json:"margin_percent"`
	WastagePercent costing.Number           `json:"wastage_percent"`
	TransportCost  costing.Number           `json:"transport_cost"`
	MiscCost       costing.Number           `json:"misc_cost"`
	GSTPercent     costing.Number           `json:"gst_percent"`
	Materials      []ProductMaterialRequest `json:"materials" binding:"dive"`
}

// ToInput converts the request into a domain input
func (r ProductRequest) ToInput() catalog.ProductInput {
	in := catalog.ProductInput{
		Name:           r.Name,
		Description:    r.Description,
		Size:           r.Size,
		Color:          r.Color,
		UnitType:       r.UnitType,
		MarginPercent:  r.MarginPercent.Decimal(),
		WastagePercent: r.WastagePercent.Decimal(),
		TransportCost:  r.TransportCost.Decimal(),
		MiscCost:       r.MiscCost.Decimal(),
		GSTPercent:     r.GSTPercent.Decimal(),
		Materials:      make([]catalog.ProductMaterialInput, len(r.Materials)),
	}
	for i, m := range r.Materials {
		in.Materials[i] = catalog.ProductMaterialInput{
			RawMaterialID: m.RawMaterialID,
			Name:          m.Name,
			Quantity:      m.Quantity.Decimal(),
			Price:         m.Price.Decimal(),
		}
	}
	return in
}

// UpdateProductStatusRequest changes the approval status
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=On-Hold Approved Rejected"`
}

// ProductListFilter represents product list query parameters
type ProductListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=On-Hold Approved Rejected"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name status created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the query into a normalised domain filter
func (f ProductListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter
}

// ProductMaterialResponse is one bill-of-materials line
type ProductMaterialResponse struct {
	ID            uuid.UUID       `json:"id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Total         decimal.Decimal `json:"total"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID                 `json:"id"`
	TenantID       uuid.UUID                 `json:"tenant_id"`
	Code           string                    `json:"code"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	Size           string                    `json:"size"`
	Color          string                    `json:"color"`
	UnitType       string                    `json:"unit_type"`
	Status         string                    `json:"status"`
	Materials      []ProductMaterialResponse `json:"materials"`
	TotalRawAmount decimal.Decimal           `json:"total_raw_amount"`
	MarginPercent  decimal.Decimal           `json:"margin_percent"`
	WastagePercent decimal.Decimal           `json:"wastage_percent"`
	TransportCost  decimal.Decimal           `json:"transport_cost"`
	MiscCost       decimal.Decimal           `json:"misc_cost"`
	GSTPercent     decimal.Decimal           `json:"gst_percent"`
	UsageCount     int                       `json:"usage_count"`
	Locked         bool                      `json:"locked"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
	Version        int                       `json:"version"`
}

// ProductPricingResponse is the suggested price breakdown of a product
type ProductPricingResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
	costing.Breakdown
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	materials := make([]ProductMaterialResponse, len(p.Materials))
	for i, m := range p.Materials {
		materials[i] = ProductMaterialResponse{
			ID:            m.ID,
			RawMaterialID: m.RawMaterialID,
			Name:          m.Name,
			Quantity:      m.Quantity,
			Price:         m.Price,
			Total:         m.Total,
		}
	}
	return ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		Size:           p.Size,
		Color:          p.Color,
		UnitType:       p.UnitType,
		Status:         string(p.Status),
		Materials:      materials,
		TotalRawAmount: p.TotalRawAmount,
		MarginPercent:  p.MarginPercent,
		WastagePercent: p.WastagePercent,
		TransportCost:  p.TransportCost,
		MiscCost:       p.MiscCost,
		GSTPercent:     p.GSTPercent,
		UsageCount:     p.UsageCount,
		Locked:         p.IsLocked(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ==================== Raw Material DTOs ====================

// RawMaterialRequest creates or replaces a raw material
type RawMaterialRequest struct {
	Name            string         `json:"name" binding:"required,min=1,max=200"`
	Description     string         `json:"description" binding:"max=2000"`
	Size            string         `json:"size" binding:"max=50"`
	Color           string         `json:"color" binding:"max=50"`
	UnitType        string         `json:"unit_type" binding:"max=20"`
	GSTPercent      costing.Number `json:"gst_percent"`
	EstimatedPrice  costing.Number `json:"estimated_price"`
	ActualPrice     costing.Number `json:"actual_price"`
	Quantity        costing.Number `json:"quantity"`
	QuantityUsed    costing.Number `json:"quantity_used"`
	QuantityWastage costing.Number `json:"quantity_wastage"`
}

// ToInput converts the request into a domain input
func (r RawMaterialRequest) ToInput() catalog.RawMaterialInput {
	return catalog.RawMaterialInput{
		Name:            r.Name,
		Description:     r.Description,
		Size:            r.Size,
		Color:           r.Color,
		UnitType:        r.UnitType,
		GSTPercent:      r.GSTPercent.Decimal(),
		EstimatedPrice:  r.EstimatedPrice.Decimal(),
		ActualPrice:     r.ActualPrice.Decimal(),
		Quantity:        r.Quantity.Decimal(),
		QuantityUsed:    r.QuantityUsed.Decimal(),
		QuantityWastage: r.QuantityWastage.Decimal(),
	}
}

// StockAdjustmentRequest restocks or consumes a raw material
type StockAdjustmentRequest struct {
	Action   string         `json:"action" binding:"required,oneof=restock consume"`
	Quantity costing.Number `json:"quantity"`
	Wastage  costing.Number `json:"wastage"`
}

// Stock adjustment actions
const (
	StockActionRestock = "restock"
	StockActionConsume = "consume"
)

// RawMaterialListFilter represents raw material list query parameters
type RawMaterialListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the query into a normalised domain filter
func (f RawMaterialListFilter) ToFilter() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}

// RawMaterialResponse represents a raw material in API responses
type RawMaterialResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Size              string          `json:"size"`
	Color             string          `json:"color"`
	UnitType          string          `json:"unit_type"`
	GSTPercent        decimal.Decimal `json:"gst_percent"`
	EstimatedPrice    decimal.Decimal `json:"estimated_price"`
	ActualPrice       decimal.Decimal `json:"actual_price"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityUsed      decimal.Decimal `json:"quantity_used"`
	QuantityWastage   decimal.Decimal `json:"quantity_wastage"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UsageCount        int             `json:"usage_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToRawMaterialResponse converts a domain RawMaterial to RawMaterialResponse
func ToRawMaterialResponse(m *catalog.RawMaterial) RawMaterialResponse {
	return RawMaterialResponse{
		ID:                m.ID,
		TenantID:          m.TenantID,
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Size:              m.Size,
		Color:             m.Color,
		UnitType:          m.UnitType,
		GSTPercent:        m.GSTPercent,
		EstimatedPrice:    m.EstimatedPrice,
		ActualPrice:       m.ActualPrice,
		Quantity:          m.Quantity,
		QuantityUsed:      m.QuantityUsed,
		QuantityWastage:   m.QuantityWastage,
		AvailableQuantity: m.AvailableQuantity(),
		UsageCount:        m.UsageCount,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ==================== Usage Log DTOs ====================

// UsageLogResponse is one entry of a usage log sub-collection
type UsageLogResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	ReferenceID     uuid.UUID       `json:"reference_id"`
	ReferenceLineID uuid.UUID       `json:"reference_line_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UsageListFilter pages through a usage log
type UsageListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=Product PoGiven PoReceived"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// ToFilter converts the query into a normalised domain filter, newest first
func (f UsageListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize()
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	return filter
}

func toUsageLogResponses(logs []catalog.UsageLog) []UsageLogResponse {
	responses := make([]UsageLogResponse, len(logs))
	for i, l := range logs {
		responses[i] = UsageLogResponse{
			ID:              l.ID,
			Type:            string(l.Type),
			ReferenceID:     l.ReferenceID,
			ReferenceLineID: l.ReferenceLineID,
			Quantity:        l.Quantity,
			Price:           l.Price,
			Total:           l.Total,
			CreatedAt:       l.CreatedAt,
		}
	}
	return responses
}
