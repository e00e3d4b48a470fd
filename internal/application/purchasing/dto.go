package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CounterpartyInput is the vendor or buyer block of the order form
type CounterpartyInput struct {
	CompanyID       *uuid.UUID          `json:"company_id"`
	Name            string              `json:"name" binding:"max=200"`
	ContactPerson   string              `json:"contact_person" binding:"max=100"`
	Phone           string              `json:"phone" binding:"max=30"`
	Email           string              `json:"email" binding:"omitempty,email"`
	TaxID           string              `json:"tax_id" binding:"max=30"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
}

// LineRequest is one row of the order form. Numbers may arrive as JSON
// numbers or numeric strings; anything else reads as zero.
type LineRequest struct {
	ID          *uuid.UUID     `json:"id"`
	MaterialID  *uuid.UUID     `json:"material_id"`
	ProductID   *uuid.UUID     `json:"product_id"`
	Description string         `json:"description" binding:"max=500"`
	Style       string         `json:"style" binding:"max=100"`
	Color       string         `json:"color" binding:"max=50"`
	Size        string         `json:"size" binding:"max=50"`
	UnitType    string         `json:"unit_type" binding:"max=20"`
	Quantity    costing.Number `json:"quantity"`
	UnitPrice   costing.Number `json:"unit_price"`
	ActualPrice costing.Number `json:"actual_price"`
	GSTPercent  costing.Number `json:"gst_percent"`
}

// SubmitPurchaseOrderRequest is the full order form. It is used both to
// create an order and to replace one by id.
type SubmitPurchaseOrderRequest struct {
	Kind          string               `json:"kind" binding:"omitempty,oneof=GIVEN RECEIVED"`
	OrderNumber   string               `json:"order_number" binding:"max=50"`
	Counterparty  CounterpartyInput    `json:"counterparty"`
	OrderDate     *time.Time           `json:"order_date"`
	DeliveryDate  *time.Time           `json:"delivery_date"`
	Status        string               `json:"status" binding:"omitempty,oneof=Pending InProduction Completed Cancelled"`
	PaymentStatus string               `json:"payment_status" binding:"omitempty,oneof=Pending Partial Paid UnPaid"`
	Remarks       string               `json:"remarks" binding:"max=2000"`
	Currency      valueobject.Currency `json:"currency"`
	Lines         []LineRequest        `json:"lines" binding:"dive"`
	// Version, when set on a replace, must match the stored version.
	Version int `json:"version" binding:"omitempty,min=1"`
}

// UpdateStatusRequest patches the order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending InProduction Completed Cancelled"`
}

// UpdatePaymentStatusRequest patches the payment status
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=Pending Partial Paid UnPaid"`
}

// LineQuoteRequest is the input of the stand-alone line calculator
type LineQuoteRequest struct {
	Quantity   costing.Number `json:"quantity"`
	UnitPrice  costing.Number `json:"unit_price"`
	GSTPercent costing.Number `json:"gst_percent"`
}

// UploadAttachmentRequest describes a file received as multipart form data
type UploadAttachmentRequest struct {
	FileName    string
	ContentType string
	Size        int64
}

// PurchaseOrderListFilter represents filter options for the order list
type PurchaseOrderListFilter struct {
	Kind          string     `form:"kind" binding:"omitempty,oneof=GIVEN RECEIVED"`
	Status        string     `form:"status" binding:"omitempty,oneof=Pending InProduction Completed Cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=Pending Partial Paid UnPaid"`
	CompanyID     *uuid.UUID `form:"company_id"`
	Search        string     `form:"search"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the list filter to a repository filter
func (f PurchaseOrderListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}.Normalize()
	if f.Kind != "" {
		filter.Filters["kind"] = f.Kind
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter.Filters["payment_status"] = f.PaymentStatus
	}
	if f.CompanyID != nil {
		filter.Filters["company_id"] = *f.CompanyID
	}
	if f.StartDate != nil {
		filter.Filters["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		filter.Filters["end_date"] = *f.EndDate
	}
	return filter
}

// ToDraft converts the form into a domain draft
func (r SubmitPurchaseOrderRequest) ToDraft() purchasing.Draft {
	d := purchasing.Draft{
		Kind:        purchasing.Kind(r.Kind),
		OrderNumber: r.OrderNumber,
		Counterparty: purchasing.Counterparty{
			CompanyID:       r.Counterparty.CompanyID,
			Name:            r.Counterparty.Name,
			ContactPerson:   r.Counterparty.ContactPerson,
			Phone:           r.Counterparty.Phone,
			Email:           r.Counterparty.Email,
			TaxID:           r.Counterparty.TaxID,
			BillingAddress:  r.Counterparty.BillingAddress,
			ShippingAddress: r.Counterparty.ShippingAddress,
		},
		DeliveryDate:  r.DeliveryDate,
		Status:        purchasing.OrderStatus(r.Status),
		PaymentStatus: purchasing.PaymentStatus(r.PaymentStatus),
		Remarks:       r.Remarks,
		Currency:      r.Currency,
		Lines:         make([]purchasing.LineInput, len(r.Lines)),
	}
	if r.OrderDate != nil {
		d.OrderDate = *r.OrderDate
	}
	for i, l := range r.Lines {
		d.Lines[i] = l.ToInput()
	}
	return d
}

// ToInput converts a form line into a domain line input
func (l LineRequest) ToInput() purchasing.LineInput {
	return purchasing.LineInput{
		ID:          l.ID,
		MaterialID:  l.MaterialID,
		ProductID:   l.ProductID,
		Description: l.Description,
		Style:       l.Style,
		Color:       l.Color,
		Size:        l.Size,
		UnitType:    l.UnitType,
		Quantity:    l.Quantity.Decimal(),
		UnitPrice:   l.UnitPrice.Decimal(),
		ActualPrice: l.ActualPrice.Decimal(),
		GSTPercent:  l.GSTPercent.Decimal(),
	}
}

// ==================== Response DTOs ====================

// CounterpartyResponse represents the counterparty block of an order
type CounterpartyResponse struct {
	CompanyID       *uuid.UUID          `json:"company_id,omitempty"`
	Name            string              `json:"name"`
	ContactPerson   string              `json:"contact_person"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email"`
	TaxID           string              `json:"tax_id"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
}

// LineResponse represents one order line
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	MaterialID  *uuid.UUID      `json:"material_id,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Style       string          `json:"style"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	UnitType    string          `json:"unit_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ActualPrice decimal.Decimal `json:"actual_price"`
	GSTPercent  decimal.Decimal `json:"gst_percent"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	Total       decimal.Decimal `json:"total"`
}

// AttachmentResponse represents a file attached to an order
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// PurchaseOrderResponse represents a full purchase order
type PurchaseOrderResponse struct {
	ID            uuid.UUID            `json:"id"`
	TenantID      uuid.UUID            `json:"tenant_id"`
	Kind          string               `json:"kind"`
	OrderNumber   string               `json:"order_number"`
	Counterparty  CounterpartyResponse `json:"counterparty"`
	OrderDate     time.Time            `json:"order_date"`
	DeliveryDate  *time.Time           `json:"delivery_date,omitempty"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"payment_status"`
	Remarks       string               `json:"remarks"`
	Currency      valueobject.Currency `json:"currency"`
	Lines         []LineResponse       `json:"lines"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	TaxAmount     decimal.Decimal      `json:"tax_amount"`
	TotalWithTax  decimal.Decimal      `json:"total_with_tax"`
	Attachments   []AttachmentResponse `json:"attachments"`
	Hints         []purchasing.Hint    `json:"hints,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// PurchaseOrderListItemResponse represents an order in a list, without lines
type PurchaseOrderListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Kind             string          `json:"kind"`
	OrderNumber      string          `json:"order_number"`
	CounterpartyName string          `json:"counterparty_name"`
	CompanyID        *uuid.UUID      `json:"company_id,omitempty"`
	OrderDate        time.Time       `json:"order_date"`
	DeliveryDate     *time.Time      `json:"delivery_date,omitempty"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	LineCount        int             `json:"line_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalWithTax     decimal.Decimal `json:"total_with_tax"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AttachmentURLResponse is a short-lived download link
type AttachmentURLResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	FileName     string    `json:"file_name"`
	URL          string    `json:"url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ToPurchaseOrderResponse converts a domain order to a response DTO
func ToPurchaseOrderResponse(o *purchasing.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]LineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineResponse{
			ID:          l.ID,
			Position:    l.Position,
			MaterialID:  l.MaterialID,
			ProductID:   l.ProductID,
			Description: l.Description,
			Style:       l.Style,
			Color:       l.Color,
			Size:        l.Size,
			UnitType:    l.UnitType,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			ActualPrice: l.ActualPrice,
			GSTPercent:  l.GSTPercent,
			GSTAmount:   l.GSTAmount(),
			Total:       l.Total,
		}
	}
	attachments := make([]AttachmentResponse, len(o.Attachments))
	for i, a := range o.Attachments {
		attachments[i] = AttachmentResponse{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
			UploadedAt:  a.UploadedAt,
		}
	}
	c := o.Counterparty
	return PurchaseOrderResponse{
		ID:          o.ID,
		TenantID:    o.TenantID,
		Kind:        string(o.Kind),
		OrderNumber: o.OrderNumber,
		Counterparty: CounterpartyResponse{
			CompanyID:       c.CompanyID,
			Name:            c.Name,
			ContactPerson:   c.ContactPerson,
			Phone:           c.Phone,
			Email:           c.Email,
			TaxID:           c.TaxID,
			BillingAddress:  c.BillingAddress,
			ShippingAddress: c.ShippingAddress,
		},
		OrderDate:     o.OrderDate,
		DeliveryDate:  o.DeliveryDate,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Remarks:       o.Remarks,
		Currency:      o.Currency,
		Lines:         lines,
		TotalAmount:   o.TotalAmount,
		TaxAmount:     o.TaxAmount,
		TotalWithTax:  o.TotalWithTax,
		Attachments:   attachments,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Version:       o.Version,
	}
}

// ToPurchaseOrderListItemResponse converts a domain order to a list item DTO
func ToPurchaseOrderListItemResponse(o *purchasing.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:               o.ID,
		Kind:             string(o.Kind),
		OrderNumber:      o.OrderNumber,
		CounterpartyName: o.Counterparty.Name,
		CompanyID:        o.Counterparty.CompanyID,
		OrderDate:        o.OrderDate,
		DeliveryDate:     o.DeliveryDate,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		LineCount:        len(o.Lines),
		TotalAmount:      o.TotalAmount,
		TotalWithTax:     o.TotalWithTax,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
