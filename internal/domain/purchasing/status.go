package purchasing

import (
	"fmt"

	"github.com/mfgops/backend/internal/domain/shared"
)

// Kind tells which side of the trade an order is on.
type Kind string

const (
	// KindGiven is an order this business issues to a material vendor.
	KindGiven Kind = "GIVEN"
	// KindReceived is an order a buyer places with this business.
	KindReceived Kind = "RECEIVED"
)

func (k Kind) IsValid() bool {
	return k == KindGiven || k == KindReceived
}

func (k Kind) String() string { return string(k) }

// ParseKind converts a stored or submitted value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_ORDER_KIND", fmt.Sprintf("unknown purchase order kind %q", s))
	}
	return k, nil
}

// OrderStatus is the production state of an order.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "Pending"
	OrderStatusInProduction OrderStatus = "InProduction"
	OrderStatusCompleted    OrderStatus = "Completed"
	OrderStatusCancelled    OrderStatus = "Cancelled"
)

// AllOrderStatuses lists the order statuses in display order.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusInProduction, OrderStatusCompleted, OrderStatusCancelled}
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProduction, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

// ParseOrderStatus converts a stored or submitted value to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.IsValid() {
		return "", shared.NewDomainError("INVALID_ORDER_STATUS", fmt.Sprintf("unknown order status %q", s))
	}
	return st, nil
}

// PaymentStatus is the settlement state of an order. It moves independently
// of OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusUnPaid  PaymentStatus = "UnPaid"
)

// AllPaymentStatuses lists the payment statuses in display order.
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusUnPaid}
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusUnPaid:
		return true
	}
	return false
}

func (s PaymentStatus) String() string { return string(s) }

// ParsePaymentStatus converts a stored or submitted value to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if !st.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("unknown payment status %q", s))
	}
	return st, nil
}
