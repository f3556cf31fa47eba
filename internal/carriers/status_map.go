package carriers

import (
	"strings"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
)

// StatusMap translates carrier status words into order statuses.
var StatusMap = map[string]enums.OrderStatus{
	"delivered":        enums.OrderStatusDelivered,
	"in_transit":       enums.OrderStatusInTransit,
	"out_for_delivery": enums.OrderStatusOutForDelivery,
	"returned":         enums.OrderStatusReturned,
	"cancelled":        enums.OrderStatusCancelled,
}

// MapStatus looks up a carrier status, ignoring case and surrounding space.
func MapStatus(carrierStatus string) (enums.OrderStatus, bool) {
	status, ok := StatusMap[strings.ToLower(strings.TrimSpace(carrierStatus))]
	return status, ok
}
