package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus(" ملغى ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %q", got)
	}
	if _, err := ParseOrderStatus("cancelled"); err == nil {
		t.Fatal("expected english token to be rejected")
	}
}

func TestOrderStatusHelpers(t *testing.T) {
	if !OrderStatusReturned.IsTerminalReversal() || OrderStatusDelivered.IsTerminalReversal() {
		t.Fatal("unexpected reversal classification")
	}
	if !OrderStatusShipped.IsFulfilled() || OrderStatusPending.IsFulfilled() {
		t.Fatal("unexpected fulfilled classification")
	}
	if len(OrderStatuses()) != 10 {
		t.Fatalf("expected 10 statuses, got %d", len(OrderStatuses()))
	}
}

func TestParseExpenseType(t *testing.T) {
	for _, candidate := range ExpenseTypes() {
		parsed, err := ParseExpenseType(candidate.String())
		if err != nil || parsed != candidate {
			t.Fatalf("round trip failed for %q: %v", candidate, err)
		}
	}
	if _, err := ParseExpenseType("marketing"); err == nil {
		t.Fatal("expected unknown expense type to fail")
	}
}

func TestParseStockMovementReason(t *testing.T) {
	if _, err := ParseStockMovementReason("theft"); err == nil {
		t.Fatal("expected unknown reason to fail")
	}
	if r, err := ParseStockMovementReason("restock"); err != nil || r != StockMovementRestock {
		t.Fatalf("unexpected parse result %q %v", r, err)
	}
}
