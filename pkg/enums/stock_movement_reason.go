package enums

import "fmt"

// StockMovementReason explains why a product's stock changed.
type StockMovementReason string

const (
	StockMovementOrderDebit  StockMovementReason = "order_debit"
	StockMovementOrderCredit StockMovementReason = "order_credit"
	StockMovementRestock     StockMovementReason = "restock"
	StockMovementAdjustment  StockMovementReason = "adjustment"
)

var validStockMovementReasons = []StockMovementReason{
	StockMovementOrderDebit,
	StockMovementOrderCredit,
	StockMovementRestock,
	StockMovementAdjustment,
}

// String implements fmt.Stringer.
func (r StockMovementReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StockMovementReason.
func (r StockMovementReason) IsValid() bool {
	for _, candidate := range validStockMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockMovementReason converts raw input into a StockMovementReason.
func ParseStockMovementReason(value string) (StockMovementReason, error) {
	for _, candidate := range validStockMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement reason %q", value)
}
