package reports

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type RevenueSection struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	TotalQuantitySold int             `json:"total_quantity_sold"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type CostSection struct {
	TotalCOGS         decimal.Decimal                       `json:"total_cogs"`
	TotalExpenses     decimal.Decimal                       `json:"total_expenses"`
	ExpensesBreakdown map[enums.ExpenseType]decimal.Decimal `json:"expenses_breakdown"`
}

type ProfitSection struct {
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	GrossProfitMargin decimal.Decimal `json:"gross_profit_margin"`
	NetProfitMargin   decimal.Decimal `json:"net_profit_margin"`
}

type ProfitLoss struct {
	Period  Period         `json:"period"`
	Revenue RevenueSection `json:"revenue"`
	Costs   CostSection    `json:"costs"`
	Profit  ProfitSection  `json:"profit"`
}

type ProductProfit struct {
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	SKU               string          `json:"sku"`
	TotalQuantitySold int             `json:"total_quantity_sold"`
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalCOGS         decimal.Decimal `json:"total_cogs"`
	DeliveryCosts     decimal.Decimal `json:"delivery_costs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type ProductProfitability struct {
	Period        Period          `json:"period"`
	Products      []ProductProfit `json:"products"`
	TotalProducts int             `json:"total_products"`
}

type DailyOrders struct {
	TotalOrders            int             `json:"total_orders"`
	ConfirmedOrders        int             `json:"confirmed_orders"`
	PendingOrders          int             `json:"pending_orders"`
	CancelledOrders        int             `json:"cancelled_orders"`
	OrdersChangePercentage decimal.Decimal `json:"orders_change_percentage"`
}

type DailyFinancial struct {
	DailyRevenue            decimal.Decimal `json:"daily_revenue"`
	DailyExpenses           decimal.Decimal `json:"daily_expenses"`
	EstimatedCOGS           decimal.Decimal `json:"estimated_cogs"`
	EstimatedNetProfit      decimal.Decimal `json:"estimated_net_profit"`
	RevenueChangePercentage decimal.Decimal `json:"revenue_change_percentage"`
}

type DailyComparison struct {
	PreviousDayRevenue decimal.Decimal `json:"previous_day_revenue"`
	PreviousDayOrders  int             `json:"previous_day_orders"`
}

type DailySummary struct {
	Date       string          `json:"date"`
	Orders     DailyOrders     `json:"orders"`
	Financial  DailyFinancial  `json:"financial"`
	Comparison DailyComparison `json:"comparison"`
}

type MonthPoint struct {
	Month        string          `json:"month"`
	MonthName    string          `json:"month_name"`
	TotalOrders  int             `json:"total_orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
	COGS         decimal.Decimal `json:"cogs"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

type TrendPeriod struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MonthsCount int       `json:"months_count"`
}

type MonthlyTrend struct {
	Period TrendPeriod  `json:"period"`
	Months []MonthPoint `json:"monthly_trend"`
}

type ExpenseTypeStats struct {
	ExpenseType       enums.ExpenseType `json:"expense_type"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	Count             int               `json:"count"`
	AverageAmount     decimal.Decimal   `json:"average_amount"`
	MaxAmount         decimal.Decimal   `json:"max_amount"`
	MinAmount         decimal.Decimal   `json:"min_amount"`
	PercentageOfTotal decimal.Decimal   `json:"percentage_of_total"`
}

type ExpenseDay struct {
	Date          string          `json:"date"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

type ExpenseTotals struct {
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	TotalTransactions int             `json:"total_transactions"`
	AveragePerExpense decimal.Decimal `json:"average_expense_per_transaction"`
}

type ExpenseAnalysis struct {
	Period     Period             `json:"period"`
	Summary    ExpenseTotals      `json:"summary"`
	Breakdown  []ExpenseTypeStats `json:"expense_breakdown"`
	DailyTrend []ExpenseDay       `json:"daily_trend"`
}
