package orders

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
)

// Transitions lists, for every status, the statuses an order may move to.
// Operators correct mistakes by jumping anywhere, so every status allows
// every status. ForwardOnlyPolicy narrows this for stricter deployments.
var Transitions = buildPermissiveTransitions()

func buildPermissiveTransitions() map[enums.OrderStatus][]enums.OrderStatus {
	all := enums.OrderStatuses()
	out := make(map[enums.OrderStatus][]enums.OrderStatus, len(all))
	for _, from := range all {
		out[from] = enums.OrderStatuses()
	}
	return out
}

var forwardTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusFirstCall, enums.OrderStatusSecondCall,
		enums.OrderStatusConfirmed, enums.OrderStatusCancelled,
	},
	enums.OrderStatusFirstCall: {
		enums.OrderStatusSecondCall, enums.OrderStatusConfirmed, enums.OrderStatusCancelled,
	},
	enums.OrderStatusSecondCall: {
		enums.OrderStatusConfirmed, enums.OrderStatusCancelled,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusShipped, enums.OrderStatusCancelled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusInTransit, enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered, enums.OrderStatusReturned, enums.OrderStatusCancelled,
	},
	enums.OrderStatusInTransit: {
		enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered,
		enums.OrderStatusReturned, enums.OrderStatusCancelled,
	},
	enums.OrderStatusOutForDelivery: {
		enums.OrderStatusInTransit, enums.OrderStatusDelivered,
		enums.OrderStatusReturned, enums.OrderStatusCancelled,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusReturned,
	},
}

// Policy decides whether a status change is allowed.
type Policy interface {
	Allow(from, to enums.OrderStatus) error
}

// PermissivePolicy accepts every change listed in Transitions.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to enums.OrderStatus) error {
	return allowFrom(Transitions, from, to)
}

// ForwardOnlyPolicy only lets orders move forward through the lifecycle.
// Setting the current status again is always allowed.
type ForwardOnlyPolicy struct{}

func (ForwardOnlyPolicy) Allow(from, to enums.OrderStatus) error {
	if from == to {
		return nil
	}
	return allowFrom(forwardTransitions, from, to)
}

// PolicyFor picks the policy matching the strict-transitions flag.
func PolicyFor(strict bool) Policy {
	if strict {
		return ForwardOnlyPolicy{}
	}
	return PermissivePolicy{}
}

func allowFrom(table map[enums.OrderStatus][]enums.OrderStatus, from, to enums.OrderStatus) error {
	for _, candidate := range table[from] {
		if candidate == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithDetails(map[string]any{
			"from": from.String(),
			"to":   to.String(),
		})
}

// Effect reports what ApplyStatus changed beyond the status itself.
type Effect struct {
	// CreditStock is set when the order's quantity must go back to stock.
	CreditStock bool
	// Stamped is set when a lifecycle timestamp was written.
	Stamped bool
}

// ApplyStatus moves order to the target status and stamps the matching
// lifecycle date if it was never set. Stock is credited only on the first
// move into cancelled or returned from a status that still held the stock.
func ApplyStatus(order *models.Order, to enums.OrderStatus, now time.Time) Effect {
	from := order.OrderStatus
	order.OrderStatus = to

	field := timestampField(order, to)
	if field == nil || *field != nil {
		return Effect{}
	}

	stamped := now
	*field = &stamped
	return Effect{
		Stamped:     true,
		CreditStock: to.IsTerminalReversal() && !from.IsTerminalReversal(),
	}
}

// timestampField returns the lifecycle date owned by status, or nil for the
// statuses that do not have one.
func timestampField(order *models.Order, status enums.OrderStatus) **time.Time {
	switch status {
	case enums.OrderStatusFirstCall:
		return &order.FirstCallDate
	case enums.OrderStatusSecondCall:
		return &order.SecondCallDate
	case enums.OrderStatusConfirmed:
		return &order.ConfirmedDate
	case enums.OrderStatusShipped:
		return &order.ShippedDate
	case enums.OrderStatusDelivered:
		return &order.DeliveredDate
	case enums.OrderStatusCancelled:
		return &order.CancelledDate
	case enums.OrderStatusReturned:
		return &order.ReturnedDate
	default:
		return nil
	}
}
