package enums

import (
	"fmt"
	"strings"
)

// ExpenseType is the closed vocabulary of expense categories.
type ExpenseType string

const (
	ExpenseTypeAds               ExpenseType = "إعلانات"
	ExpenseTypeConfirmationStaff ExpenseType = "عمال تأكيد"
	ExpenseTypePackaging         ExpenseType = "تغليف"
	ExpenseTypeFixedCosts        ExpenseType = "مصاريف ثابتة"
	ExpenseTypeOrderReturns      ExpenseType = "إرجاع طلبيات"
	ExpenseTypeOther             ExpenseType = "أخرى"
)

var validExpenseTypes = []ExpenseType{
	ExpenseTypeAds,
	ExpenseTypeConfirmationStaff,
	ExpenseTypePackaging,
	ExpenseTypeFixedCosts,
	ExpenseTypeOrderReturns,
	ExpenseTypeOther,
}

// ExpenseTypes returns the closed vocabulary.
func ExpenseTypes() []ExpenseType {
	out := make([]ExpenseType, len(validExpenseTypes))
	copy(out, validExpenseTypes)
	return out
}

// String implements fmt.Stringer.
func (t ExpenseType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ExpenseType.
func (t ExpenseType) IsValid() bool {
	for _, candidate := range validExpenseTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseExpenseType converts raw input into an ExpenseType.
func ParseExpenseType(value string) (ExpenseType, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validExpenseTypes {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense type %q", value)
}
