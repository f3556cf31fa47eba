package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/intake"
	"github.com/angelmondragon/dzorders-backend/internal/inventory"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockLedger moves stock inside the caller's transaction.
type StockLedger interface {
	Debit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, ref inventory.Ref) (inventory.Movement, error)
	Credit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, ref inventory.Ref) (inventory.Movement, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	CreateFromIntake(ctx context.Context, record intake.Record) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListInput) (*OrderList, error)
	ListByStaff(ctx context.Context, staffID uuid.UUID) ([]OrderDTO, error)
	ListTrackable(ctx context.Context, limit int) ([]OrderDTO, error)
	MarkTracked(ctx context.Context, orderIDs []uuid.UUID) error
	FindByTrackingID(ctx context.Context, trackingID string) (*OrderDTO, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*OrderDTO, error)
	CanTransition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) error
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingID string, companyID *uuid.UUID) (*OrderDTO, error)
	Profit(ctx context.Context, orderID uuid.UUID) (*ProfitDTO, error)
	Timeline(ctx context.Context, orderID uuid.UUID) (*TrackingInfo, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger StockLedger
	policy Policy
	logg   *logger.Logger
	now    func() time.Time
}

type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Ledger StockLedger
	Policy Policy
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService builds an order service. A nil Policy falls back to
// PermissivePolicy.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy == nil {
		policy = PermissivePolicy{}
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		ledger: params.Ledger,
		policy: policy,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": input.ProductID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		orderID := uuid.New()
		if _, err := s.ledger.Debit(ctx, tx, product.ID, input.Quantity, inventory.Ref{OrderID: &orderID}); err != nil {
			return err
		}

		order := &models.Order{
			ID:              orderID,
			CustomerName:    input.CustomerName,
			CustomerPhone:   input.CustomerPhone,
			CustomerAddress: input.CustomerAddress,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
			UnitPrice:       product.Price,
			TotalAmount:     product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
			OrderSource:     input.OrderSource,
			OrderStatus:     enums.OrderStatusPending,
			Notes:           input.Notes,
			OrderDate:       s.now(),
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order.Product = product
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, created.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"product_id": created.ProductID.String(),
		"quantity":   created.Quantity,
		"source":     created.OrderSource.String(),
	})
	s.logg.Info(logCtx, "order.created")

	dto := FromModel(created)
	return &dto, nil
}

func (s *service) CreateFromIntake(ctx context.Context, record intake.Record) (uuid.UUID, error) {
	sku := strings.TrimSpace(record.ProductSKU)
	if sku == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product_sku is required")
	}
	product, err := s.repo.FindProductBySKU(ctx, sku)
	if err != nil {
		if isNotFound(err) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"sku": sku})
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by sku")
	}

	input := CreateInput{
		CustomerName:    record.CustomerName,
		CustomerPhone:   record.CustomerPhone,
		CustomerAddress: record.CustomerAddress,
		ProductID:       product.ID,
		Quantity:        record.Quantity,
		OrderSource:     record.OrderSource,
	}
	if notes := strings.TrimSpace(record.Notes); notes != "" {
		input.Notes = &notes
	}

	dto, err := s.Create(ctx, input)
	if err != nil {
		return uuid.Nil, err
	}
	return dto.ID, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderList, error) {
	var filters ListFilters
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}

	params := pagination.Params{Page: input.Page, PerPage: input.PerPage}.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params.Page, params.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{
		Orders:     fromModels(rows),
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

func (s *service) ListByStaff(ctx context.Context, staffID uuid.UUID) ([]OrderDTO, error) {
	ok, err := s.repo.StaffExists(ctx, staffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
	}
	rows, _, err := s.repo.List(ctx, ListFilters{StaffID: &staffID}, 1, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff orders")
	}
	return fromModels(rows), nil
}

func (s *service) ListTrackable(ctx context.Context, limit int) ([]OrderDTO, error) {
	rows, err := s.repo.ListShippedWithTracking(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trackable orders")
	}
	return fromModels(rows), nil
}

// MarkTracked moves the orders to the back of the ListTrackable queue.
func (s *service) MarkTracked(ctx context.Context, orderIDs []uuid.UUID) error {
	if err := s.repo.TouchTracked(ctx, orderIDs, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark orders tracked")
	}
	return nil
}

func (s *service) FindByTrackingID(ctx context.Context, trackingID string) (*OrderDTO, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking id is required")
	}
	order, err := s.repo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by tracking id")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*OrderDTO, error) {
	to, err := enums.ParseOrderStatus(update.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"field": "order_status"})
	}
	if update.DeliveryPrice != nil && update.DeliveryPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery_price cannot be negative").
			WithDetails(map[string]any{"field": "delivery_price"})
	}

	var (
		from   enums.OrderStatus
		effect Effect
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, orderID)
		if err != nil {
			return err
		}
		from = order.OrderStatus

		if err := s.policy.Allow(from, to); err != nil {
			return err
		}
		if err := applyAssignments(ctx, repo, order, update); err != nil {
			return err
		}

		effect = ApplyStatus(order, to, s.now())
		if effect.CreditStock {
			ref := inventory.Ref{OrderID: &order.ID, Note: "order " + to.String()}
			if _, err := s.ledger.Credit(ctx, tx, order.ProductID, order.Quantity, ref); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"from":           from.String(),
		"to":             to.String(),
		"stock_credited": effect.CreditStock,
	})
	s.logg.Info(logCtx, "order.status_changed")

	return s.Get(ctx, orderID)
}

// CanTransition reports, without writing, whether the configured policy lets
// the order move to the target status.
func (s *service) CanTransition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) error {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return err
	}
	return s.policy.Allow(order.OrderStatus, to)
}

func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingID string, companyID *uuid.UUID) (*OrderDTO, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking id is required")
	}
	return s.SetStatus(ctx, orderID, StatusUpdate{
		Status:             enums.OrderStatusShipped.String(),
		ShippingTrackingID: &trackingID,
		DeliveryCompanyID:  companyID,
	})
}

// Profit returns price × quantity minus the order's expenses and delivery
// price for delivered orders, and zero otherwise.
func (s *service) Profit(ctx context.Context, orderID uuid.UUID) (*ProfitDTO, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}

	out := &ProfitDTO{
		OrderID:       order.ID,
		OrderStatus:   order.OrderStatus,
		Revenue:       decimal.Zero,
		Expenses:      decimal.Zero,
		DeliveryPrice: decimal.Zero,
		Profit:        decimal.Zero,
	}
	if order.OrderStatus != enums.OrderStatusDelivered {
		return out, nil
	}

	price := order.UnitPrice
	if order.Product != nil {
		price = order.Product.Price
	}
	expenses, err := s.repo.SumExpenses(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum order expenses")
	}

	out.Revenue = price.Mul(decimal.NewFromInt(int64(order.Quantity)))
	out.Expenses = expenses
	if order.DeliveryPrice.Valid {
		out.DeliveryPrice = order.DeliveryPrice.Decimal
	}
	out.Profit = out.Revenue.Sub(out.Expenses).Sub(out.DeliveryPrice)
	return out, nil
}

var timelineSteps = []struct {
	status      enums.OrderStatus
	description string
}{
	{enums.OrderStatusFirstCall, "first call with the customer"},
	{enums.OrderStatusSecondCall, "second call with the customer"},
	{enums.OrderStatusConfirmed, "order confirmed"},
	{enums.OrderStatusShipped, "order shipped"},
	{enums.OrderStatusDelivered, "order delivered to the customer"},
	{enums.OrderStatusCancelled, "order cancelled"},
	{enums.OrderStatusReturned, "order returned"},
}

func (s *service) Timeline(ctx context.Context, orderID uuid.UUID) (*TrackingInfo, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}

	info := &TrackingInfo{
		OrderID:            order.ID,
		OrderStatus:        order.OrderStatus,
		ShippingTrackingID: order.ShippingTrackingID,
		Timeline: []TimelineEntry{{
			Status:      TimelineCreated,
			Date:        order.OrderDate,
			Description: "order received",
		}},
	}
	if order.DeliveryCompany != nil {
		name := order.DeliveryCompany.CompanyName
		info.DeliveryCompany = &name
	}
	for _, step := range timelineSteps {
		at := timestampField(order, step.status)
		if at == nil || *at == nil {
			continue
		}
		info.Timeline = append(info.Timeline, TimelineEntry{
			Status:      step.status.String(),
			Date:        **at,
			Description: step.description,
		})
	}
	return info, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func applyAssignments(ctx context.Context, repo Repository, order *models.Order, update StatusUpdate) error {
	if update.ConfirmationStaffID != nil {
		if *update.ConfirmationStaffID == uuid.Nil {
			order.ConfirmationStaffID = nil
		} else {
			ok, err := repo.StaffExists(ctx, *update.ConfirmationStaffID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
			}
			id := *update.ConfirmationStaffID
			order.ConfirmationStaffID = &id
		}
		order.ConfirmationStaff = nil
	}

	if update.DeliveryCompanyID != nil {
		if *update.DeliveryCompanyID == uuid.Nil {
			order.DeliveryCompanyID = nil
		} else {
			ok, err := repo.DeliveryCompanyExists(ctx, *update.DeliveryCompanyID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery company")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery company not found")
			}
			id := *update.DeliveryCompanyID
			order.DeliveryCompanyID = &id
		}
		order.DeliveryCompany = nil
	}

	if update.DeliveryPrice != nil {
		order.DeliveryPrice = decimal.NewNullDecimal(*update.DeliveryPrice)
	}
	if update.ShippingTrackingID != nil {
		if tracking := strings.TrimSpace(*update.ShippingTrackingID); tracking != "" {
			order.ShippingTrackingID = &tracking
		} else {
			order.ShippingTrackingID = nil
		}
	}
	if update.Notes != nil {
		notes := *update.Notes
		order.Notes = &notes
	}
	return nil
}

func validateCreate(input *CreateInput) error {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerPhone = strings.TrimSpace(input.CustomerPhone)
	input.CustomerAddress = strings.TrimSpace(input.CustomerAddress)

	required := []struct {
		field string
		value string
	}{
		{"customer_name", input.CustomerName},
		{"customer_phone", input.CustomerPhone},
		{"customer_address", input.CustomerAddress},
	}
	for _, r := range required {
		if r.value == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, r.field+" is required").
				WithDetails(map[string]any{"field": r.field})
		}
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
			WithDetails(map[string]any{"field": "product_id"})
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if strings.TrimSpace(input.OrderSource.String()) == "" {
		input.OrderSource = enums.OrderSourceManual
	}
	return nil
}
