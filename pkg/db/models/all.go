package models

// All lists every model, in dependency order, for sqlite AutoMigrate in local
// development and tests.
func All() []any {
	return []any{
		&Product{},
		&Staff{},
		&DeliveryCompany{},
		&Order{},
		&StockMovement{},
		&Expense{},
		&DeliveryPriceList{},
	}
}
