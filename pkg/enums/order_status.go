package enums

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle token stored on orders. The Arabic labels are
// the wire values.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "قيد الانتظار"
	OrderStatusFirstCall      OrderStatus = "اتصال أول"
	OrderStatusSecondCall     OrderStatus = "اتصال ثانٍ"
	OrderStatusConfirmed      OrderStatus = "مؤكد"
	OrderStatusShipped        OrderStatus = "تم الشحن"
	OrderStatusDelivered      OrderStatus = "تم التسليم"
	OrderStatusCancelled      OrderStatus = "ملغى"
	OrderStatusReturned       OrderStatus = "مرتجع"
	OrderStatusInTransit      OrderStatus = "في الطريق"
	OrderStatusOutForDelivery OrderStatus = "خرج للتسليم"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusFirstCall,
	OrderStatusSecondCall,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusInTransit,
	OrderStatusOutForDelivery,
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminalReversal reports whether the status puts stock back on the shelf.
func (s OrderStatus) IsTerminalReversal() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// IsFulfilled reports whether the order counts toward sales.
func (s OrderStatus) IsFulfilled() bool {
	return s == OrderStatusConfirmed || s == OrderStatusShipped || s == OrderStatusDelivered
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validOrderStatuses {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// FulfilledOrderStatuses lists the statuses counted as sales in reports.
func FulfilledOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered}
}
