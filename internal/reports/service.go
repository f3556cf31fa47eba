// Package reports aggregates orders and expenses into the financial views.
// Revenue uses the price snapshot on each order and COGS uses the product's
// current cost price.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
	expenseTrendDays   = 30
	dayLayout          = "2006-01-02"
	monthLayout        = "2006-01"
)

var (
	hundred           = decimal.NewFromInt(100)
	fulfilledStatuses = []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	}
)

type Service interface {
	ProfitLoss(ctx context.Context, start, end *time.Time) (*ProfitLoss, error)
	ProductProfitability(ctx context.Context, start, end *time.Time) (*ProductProfitability, error)
	DailySummary(ctx context.Context, date *time.Time) (*DailySummary, error)
	MonthlyTrend(ctx context.Context, months int) (*MonthlyTrend, error)
	ExpenseAnalysis(ctx context.Context, start, end *time.Time) (*ExpenseAnalysis, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{
		repo: repo,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) ProfitLoss(ctx context.Context, start, end *time.Time) (*ProfitLoss, error) {
	period, err := s.period(start, end)
	if err != nil {
		return nil, err
	}
	orders, err := s.fulfilledOrders(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}

	t := sumOrders(orders)
	breakdown := map[enums.ExpenseType]decimal.Decimal{}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
		breakdown[e.ExpenseType] = breakdown[e.ExpenseType].Add(e.Amount)
	}

	gross := t.revenue.Sub(t.cogs)
	net := gross.Sub(totalExpenses)
	return &ProfitLoss{
		Period: period,
		Revenue: RevenueSection{
			TotalRevenue:      t.revenue,
			TotalOrders:       t.orders,
			TotalQuantitySold: t.quantity,
			AverageOrderValue: average(t.revenue, t.orders),
		},
		Costs: CostSection{
			TotalCOGS:         t.cogs,
			TotalExpenses:     totalExpenses,
			ExpensesBreakdown: breakdown,
		},
		Profit: ProfitSection{
			GrossProfit:       gross,
			NetProfit:         net,
			GrossProfitMargin: percent(gross, t.revenue),
			NetProfitMargin:   percent(net, t.revenue),
		},
	}, nil
}

// ProductProfitability ranks products by net profit, highest first. Delivery
// costs are the delivery prices recorded on the orders.
func (s *service) ProductProfitability(ctx context.Context, start, end *time.Time) (*ProductProfitability, error) {
	period, err := s.period(start, end)
	if err != nil {
		return nil, err
	}
	orders, err := s.fulfilledOrders(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}

	byProduct := map[uuid.UUID]*ProductProfit{}
	order := []uuid.UUID{}
	for i := range orders {
		o := &orders[i]
		if o.Product == nil {
			continue
		}
		p, ok := byProduct[o.ProductID]
		if !ok {
			p = &ProductProfit{
				ProductID:     o.ProductID,
				ProductName:   o.Product.ProductName,
				SKU:           o.Product.SKU,
				TotalRevenue:  decimal.Zero,
				TotalCOGS:     decimal.Zero,
				DeliveryCosts: decimal.Zero,
			}
			byProduct[o.ProductID] = p
			order = append(order, o.ProductID)
		}
		p.TotalOrders++
		p.TotalQuantitySold += o.Quantity
		p.TotalRevenue = p.TotalRevenue.Add(o.TotalAmount)
		p.TotalCOGS = p.TotalCOGS.Add(cogs(o))
		if o.DeliveryPrice.Valid {
			p.DeliveryCosts = p.DeliveryCosts.Add(o.DeliveryPrice.Decimal)
		}
	}

	products := make([]ProductProfit, 0, len(order))
	for _, id := range order {
		p := byProduct[id]
		p.GrossProfit = p.TotalRevenue.Sub(p.TotalCOGS)
		p.NetProfit = p.GrossProfit.Sub(p.DeliveryCosts)
		p.ProfitMargin = percent(p.NetProfit, p.TotalRevenue)
		p.AverageOrderValue = average(p.TotalRevenue, p.TotalOrders)
		products = append(products, *p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].NetProfit.GreaterThan(products[j].NetProfit)
	})

	return &ProductProfitability{
		Period:        period,
		Products:      products,
		TotalProducts: len(products),
	}, nil
}

// DailySummary compares one calendar day (UTC) with the day before. A nil
// date means today.
func (s *service) DailySummary(ctx context.Context, date *time.Time) (*DailySummary, error) {
	day := s.now()
	if date != nil {
		day = date.UTC()
	}
	dayStart := startOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
	prevStart := dayStart.AddDate(0, 0, -1)
	prevEnd := dayStart.Add(-time.Nanosecond)

	orders, err := s.allOrders(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	previous, err := s.fulfilledOrders(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var fulfilled []models.Order
	summary := DailySummary{Date: dayStart.Format(dayLayout)}
	summary.Orders.TotalOrders = len(orders)
	for _, o := range orders {
		switch {
		case o.OrderStatus.IsFulfilled():
			fulfilled = append(fulfilled, o)
		case o.OrderStatus == enums.OrderStatusPending:
			summary.Orders.PendingOrders++
		case o.OrderStatus == enums.OrderStatusCancelled:
			summary.Orders.CancelledOrders++
		}
	}
	summary.Orders.ConfirmedOrders = len(fulfilled)

	today := sumOrders(fulfilled)
	prev := sumOrders(previous)
	dailyExpenses := sumExpenses(expenses)

	summary.Orders.OrdersChangePercentage = change(decimal.NewFromInt(int64(today.orders)), decimal.NewFromInt(int64(prev.orders)))
	summary.Financial = DailyFinancial{
		DailyRevenue:            today.revenue,
		DailyExpenses:           dailyExpenses,
		EstimatedCOGS:           today.cogs,
		EstimatedNetProfit:      today.revenue.Sub(today.cogs).Sub(dailyExpenses),
		RevenueChangePercentage: change(today.revenue, prev.revenue),
	}
	summary.Comparison = DailyComparison{
		PreviousDayRevenue: prev.revenue,
		PreviousDayOrders:  prev.orders,
	}
	return &summary, nil
}

// MonthlyTrend covers the last n calendar months including the current one.
func (s *service) MonthlyTrend(ctx context.Context, months int) (*MonthlyTrend, error) {
	if months == 0 {
		months = DefaultTrendMonths
	}
	if months < 1 || months > MaxTrendMonths {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("months must be between 1 and %d", MaxTrendMonths)).
			WithDetails(map[string]any{"field": "months"})
	}

	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := current.AddDate(0, -(months - 1), 0)

	orders, err := s.fulfilledOrders(ctx, first, now)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses(ctx, first, now)
	if err != nil {
		return nil, err
	}

	ordersByMonth := map[string][]models.Order{}
	for _, o := range orders {
		key := o.OrderDate.UTC().Format(monthLayout)
		ordersByMonth[key] = append(ordersByMonth[key], o)
	}
	expensesByMonth := map[string]decimal.Decimal{}
	for _, e := range expenses {
		key := e.ExpenseDate.UTC().Format(monthLayout)
		expensesByMonth[key] = expensesByMonth[key].Add(e.Amount)
	}

	points := make([]MonthPoint, 0, months)
	for m := first; !m.After(current); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		t := sumOrders(ordersByMonth[key])
		spent := expensesByMonth[key]
		net := t.revenue.Sub(t.cogs).Sub(spent)
		points = append(points, MonthPoint{
			Month:        key,
			MonthName:    m.Format("January 2006"),
			TotalOrders:  t.orders,
			Revenue:      t.revenue,
			Expenses:     spent,
			COGS:         t.cogs,
			NetProfit:    net,
			ProfitMargin: percent(net, t.revenue),
		})
	}

	return &MonthlyTrend{
		Period: TrendPeriod{StartDate: first, EndDate: now, MonthsCount: months},
		Months: points,
	}, nil
}

// ExpenseAnalysis breaks the period down by expense type and adds a 30 day
// daily trend ending on the period's last day, oldest first.
func (s *service) ExpenseAnalysis(ctx context.Context, start, end *time.Time) (*ExpenseAnalysis, error) {
	period, err := s.period(start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}

	total := sumExpenses(expenses)
	byType := map[enums.ExpenseType]*ExpenseTypeStats{}
	for _, e := range expenses {
		st, ok := byType[e.ExpenseType]
		if !ok {
			st = &ExpenseTypeStats{
				ExpenseType: e.ExpenseType,
				TotalAmount: decimal.Zero,
				MaxAmount:   e.Amount,
				MinAmount:   e.Amount,
			}
			byType[e.ExpenseType] = st
		}
		st.TotalAmount = st.TotalAmount.Add(e.Amount)
		st.Count++
		st.MaxAmount = decimal.Max(st.MaxAmount, e.Amount)
		st.MinAmount = decimal.Min(st.MinAmount, e.Amount)
	}
	breakdown := make([]ExpenseTypeStats, 0, len(byType))
	for _, st := range byType {
		st.AverageAmount = average(st.TotalAmount, st.Count)
		st.PercentageOfTotal = percent(st.TotalAmount, total)
		breakdown = append(breakdown, *st)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].TotalAmount.Equal(breakdown[j].TotalAmount) {
			return breakdown[i].ExpenseType < breakdown[j].ExpenseType
		}
		return breakdown[i].TotalAmount.GreaterThan(breakdown[j].TotalAmount)
	})

	lastDay := startOfDay(period.EndDate)
	trendStart := lastDay.AddDate(0, 0, -(expenseTrendDays - 1))
	trendEnd := lastDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	trendRows, err := s.expenses(ctx, trendStart, trendEnd)
	if err != nil {
		return nil, err
	}
	perDay := map[string]decimal.Decimal{}
	for _, e := range trendRows {
		key := e.ExpenseDate.UTC().Format(dayLayout)
		perDay[key] = perDay[key].Add(e.Amount)
	}
	trend := make([]ExpenseDay, 0, expenseTrendDays)
	for d := trendStart; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		trend = append(trend, ExpenseDay{Date: key, TotalExpenses: perDay[key]})
	}

	return &ExpenseAnalysis{
		Period: period,
		Summary: ExpenseTotals{
			TotalExpenses:     total,
			TotalTransactions: len(expenses),
			AveragePerExpense: average(total, len(expenses)),
		},
		Breakdown:  breakdown,
		DailyTrend: trend,
	}, nil
}

// period defaults to the current month up to now unless both bounds are set.
func (s *service) period(start, end *time.Time) (Period, error) {
	if start == nil || end == nil {
		now := s.now()
		return Period{
			StartDate: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			EndDate:   now,
		}, nil
	}
	if end.Before(*start) {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "end_date must not be before start_date").
			WithDetails(map[string]any{"field": "end_date"})
	}
	return Period{StartDate: start.UTC(), EndDate: end.UTC()}, nil
}

func (s *service) fulfilledOrders(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	rows, err := s.repo.OrdersBetween(ctx, start, end, fulfilledStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for report")
	}
	return rows, nil
}

func (s *service) allOrders(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	rows, err := s.repo.OrdersBetween(ctx, start, end, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for report")
	}
	return rows, nil
}

func (s *service) expenses(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	rows, err := s.repo.ExpensesBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expenses for report")
	}
	return rows, nil
}

type orderTotals struct {
	orders   int
	quantity int
	revenue  decimal.Decimal
	cogs     decimal.Decimal
}

func sumOrders(orders []models.Order) orderTotals {
	t := orderTotals{revenue: decimal.Zero, cogs: decimal.Zero}
	for i := range orders {
		t.orders++
		t.quantity += orders[i].Quantity
		t.revenue = t.revenue.Add(orders[i].TotalAmount)
		t.cogs = t.cogs.Add(cogs(&orders[i]))
	}
	return t
}

func sumExpenses(rows []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range rows {
		total = total.Add(e.Amount)
	}
	return total
}

func cogs(o *models.Order) decimal.Decimal {
	if o.Product == nil || !o.Product.CostPrice.Valid {
		return decimal.Zero
	}
	return o.Product.CostPrice.Decimal.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// change is the percentage move from previous to current. Zero when there is
// no previous value.
func change(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
