package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dzorders-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/dzorders-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/dzorders-backend/api/controllers/webhooks"
	"github.com/angelmondragon/dzorders-backend/api/middleware"
	"github.com/angelmondragon/dzorders-backend/internal/deliverycompanies"
	"github.com/angelmondragon/dzorders-backend/internal/expenses"
	"github.com/angelmondragon/dzorders-backend/internal/inventory"
	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/internal/pricelists"
	"github.com/angelmondragon/dzorders-backend/internal/products"
	"github.com/angelmondragon/dzorders-backend/internal/reports"
	"github.com/angelmondragon/dzorders-backend/internal/staff"
	"github.com/angelmondragon/dzorders-backend/pkg/config"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/redis"
)

const defaultIdempotencyTTL = 24 * time.Hour

// Dependencies carries everything the router hands to controllers. Nil
// services answer 500 and a nil Sheets answers 503, so partial wiring in
// tests is fine.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer

	Products          products.Service
	Inventory         inventory.Service
	Orders            orders.Service
	Intake            webhookcontrollers.OrderIntake
	Expenses          expenses.Service
	Staff             staff.Service
	DeliveryCompanies deliverycompanies.Service
	PriceLists        pricelists.Service
	Reports           reports.Service
	Carriers          controllers.CarrierGateway
	Shipments         controllers.ShipmentCreator
	Tracker           controllers.ShipmentTracker
	Sheets            controllers.SheetSyncer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	ttl := cfg.Webhook.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	idempotency := func(next http.Handler) http.Handler { return next }
	if deps.Idempotency != nil {
		idempotency = middleware.Idempotency(deps.Idempotency, ttl, logg)
	}
	adminOnly := middleware.RequireRole(cfg.JWT, logg, enums.OperatorRoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", controllers.HealthLive(cfg))
			r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
				"database": deps.DB,
				"redis":    deps.Redis,
			}))
		})
		if deps.Gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
		}

		r.Route("/webhook", func(r chi.Router) {
			r.Use(middleware.WebhookSecret(cfg.Webhook.Secret, logg))
			r.Use(idempotency)
			r.Post("/orders", webhookcontrollers.Orders(deps.Intake, logg))
			r.Post("/orders/batch", webhookcontrollers.OrdersBatch(deps.Intake, logg))
			r.Get("/test", webhookcontrollers.Test(logg))
			r.Post("/test", webhookcontrollers.Test(logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OperatorAuth(cfg.JWT, logg))
			r.Use(idempotency)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Post("/", ordercontrollers.Create(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
				r.Put("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
				r.Get("/{orderId}/tracking", ordercontrollers.Tracking(deps.Orders, logg))
				r.Get("/{orderId}/profit", ordercontrollers.Profit(deps.Orders, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, logg))
				r.Get("/{sku}", controllers.GetProduct(deps.Products, logg))
				r.With(adminOnly).Post("/", controllers.CreateProduct(deps.Products, logg))
				r.With(adminOnly).Put("/{sku}", controllers.UpdateProduct(deps.Products, logg))
				r.With(adminOnly).Put("/{sku}/stock", controllers.SetProductStock(deps.Products, logg))
				r.With(adminOnly).Delete("/{sku}", controllers.DeleteProduct(deps.Products, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/status", controllers.InventoryStatus(deps.Inventory, logg))
				r.Get("/alerts", controllers.InventoryAlerts(deps.Inventory, logg))
				r.Get("/movement", controllers.InventoryMovement(deps.Inventory, logg))
				r.Get("/{productId}/history", controllers.InventoryHistory(deps.Inventory, logg))
				r.With(adminOnly).Post("/restock", controllers.InventoryRestock(deps.Inventory, logg))
				r.With(adminOnly).Post("/adjust", controllers.InventoryAdjust(deps.Inventory, logg))
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.ListExpenses(deps.Expenses, logg))
				r.Post("/", controllers.CreateExpense(deps.Expenses, logg))
				r.Get("/summary", controllers.ExpenseSummary(deps.Expenses, logg))
				r.Get("/types", controllers.ExpenseTypes(deps.Expenses, logg))
				r.Post("/bulk", controllers.BulkCreateExpenses(deps.Expenses, logg))
				r.Get("/{id}", controllers.GetExpense(deps.Expenses, logg))
				r.Put("/{id}", controllers.UpdateExpense(deps.Expenses, logg))
				r.Delete("/{id}", controllers.DeleteExpense(deps.Expenses, logg))
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", controllers.ListStaff(deps.Staff, logg))
				r.Get("/{id}", controllers.GetStaff(deps.Staff, logg))
				r.Get("/{id}/orders", controllers.StaffOrders(deps.Staff, logg))
				r.With(adminOnly).Post("/", controllers.CreateStaff(deps.Staff, logg))
				r.With(adminOnly).Put("/{id}", controllers.UpdateStaff(deps.Staff, logg))
				r.With(adminOnly).Delete("/{id}", controllers.DeleteStaff(deps.Staff, logg))
			})

			r.Route("/delivery-companies", func(r chi.Router) {
				r.Get("/", controllers.ListDeliveryCompanies(deps.DeliveryCompanies, logg))
				r.Get("/{id}", controllers.GetDeliveryCompany(deps.DeliveryCompanies, logg))
				r.With(adminOnly).Post("/", controllers.CreateDeliveryCompany(deps.DeliveryCompanies, logg))
				r.With(adminOnly).Put("/{id}", controllers.UpdateDeliveryCompany(deps.DeliveryCompanies, logg))
				r.With(adminOnly).Delete("/{id}", controllers.DeleteDeliveryCompany(deps.DeliveryCompanies, logg))
			})

			r.Route("/delivery-price-lists", func(r chi.Router) {
				r.Get("/", controllers.ListPriceLists(deps.PriceLists, logg))
				r.Post("/calculate", controllers.CalculateDeliveryPrice(deps.PriceLists, logg))
				r.Get("/{id}", controllers.GetPriceList(deps.PriceLists, logg))
				r.With(adminOnly).Post("/", controllers.CreatePriceList(deps.PriceLists, logg))
				r.With(adminOnly).Put("/{id}", controllers.UpdatePriceList(deps.PriceLists, logg))
				r.With(adminOnly).Delete("/{id}", controllers.DeletePriceList(deps.PriceLists, logg))
			})

			r.Route("/delivery", func(r chi.Router) {
				r.Get("/services", controllers.DeliveryServices(deps.Carriers, deps.DeliveryCompanies, logg))
				r.Post("/create-shipment", controllers.CreateShipment(deps.Shipments, logg))
				r.Get("/track/{tracking}", controllers.TrackShipment(deps.Tracker, logg))
				r.Post("/calculate-cost", controllers.CalculateShippingCost(deps.Carriers, logg))
				r.Post("/bulk-track", controllers.BulkTrackShipments(deps.Tracker, logg))
				r.Post("/cancel/{tracking}", controllers.CancelShipment(deps.Carriers, logg))
			})

			r.Route("/financial", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/profit-loss", controllers.ProfitLoss(deps.Reports, logg))
				r.Get("/product-profitability", controllers.ProductProfitability(deps.Reports, logg))
				r.Get("/daily-summary", controllers.DailySummary(deps.Reports, logg))
				r.Get("/monthly-trend", controllers.MonthlyTrend(deps.Reports, logg))
				r.Get("/expense-analysis", controllers.ExpenseAnalysis(deps.Reports, logg))
			})

			r.Route("/google-sheets", func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/sync", controllers.SyncGoogleSheet(deps.Sheets, logg))
				r.Post("/preview", controllers.PreviewGoogleSheet(deps.Sheets, logg))
				r.Get("/test-connection", controllers.GoogleSheetConnection(deps.Sheets, logg))
			})
		})
	})

	return r
}
