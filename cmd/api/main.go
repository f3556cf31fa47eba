package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dzorders-backend/api/routes"
	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/angelmondragon/dzorders-backend/internal/carriers/bootstrap"
	"github.com/angelmondragon/dzorders-backend/internal/deliverycompanies"
	"github.com/angelmondragon/dzorders-backend/internal/expenses"
	"github.com/angelmondragon/dzorders-backend/internal/intake"
	"github.com/angelmondragon/dzorders-backend/internal/inventory"
	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/internal/pricelists"
	"github.com/angelmondragon/dzorders-backend/internal/products"
	"github.com/angelmondragon/dzorders-backend/internal/reports"
	"github.com/angelmondragon/dzorders-backend/internal/sheetsync"
	"github.com/angelmondragon/dzorders-backend/internal/staff"
	"github.com/angelmondragon/dzorders-backend/pkg/config"
	"github.com/angelmondragon/dzorders-backend/pkg/db"
	"github.com/angelmondragon/dzorders-backend/pkg/instance"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/metrics"
	"github.com/angelmondragon/dzorders-backend/pkg/migrate"
	"github.com/angelmondragon/dzorders-backend/pkg/redis"
	"github.com/angelmondragon/dzorders-backend/pkg/sheets"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Dependencies{DB: dbClient}

	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys are ignored")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Gatherer = registry

	if err := wireServices(ctx, cfg, logg, dbClient, registry, &deps); err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"carriers": deps.Carriers.Registry().Names(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func wireServices(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, reg prometheus.Registerer, deps *routes.Dependencies) error {
	conn := dbClient.DB()
	ledger := inventory.NewLedger()

	productService, err := products.NewService(products.NewRepository(conn), ledger, dbClient, logg)
	if err != nil {
		return err
	}
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), ledger, dbClient, logg)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(conn),
		Tx:     dbClient,
		Ledger: ledger,
		Policy: orders.PolicyFor(cfg.FeatureFlags.StrictTransitions),
		Logger: logg,
	})
	if err != nil {
		return err
	}
	processor, err := intake.NewProcessor(intake.ProcessorParams{
		Orders:      orderService,
		Logger:      logg,
		Metrics:     metrics.NewIntakeMetrics(reg),
		CountryCode: cfg.Intake.DefaultCountryCode,
	})
	if err != nil {
		return err
	}
	expenseService, err := expenses.NewService(expenses.NewRepository(conn), logg)
	if err != nil {
		return err
	}
	staffService, err := staff.NewService(staff.NewRepository(conn), orderService, dbClient, logg)
	if err != nil {
		return err
	}
	companyService, err := deliverycompanies.NewService(deliverycompanies.NewRepository(conn), dbClient, logg)
	if err != nil {
		return err
	}
	priceListService, err := pricelists.NewService(pricelists.NewRepository(conn), logg)
	if err != nil {
		return err
	}
	reportService, err := reports.NewService(reports.NewRepository(conn), logg)
	if err != nil {
		return err
	}

	manager, err := bootstrap.Manager(cfg, logg, reg)
	if err != nil {
		return err
	}
	shipments, err := carriers.NewShipmentService(manager, orderService, logg)
	if err != nil {
		return err
	}

	deps.Products = productService
	deps.Inventory = inventoryService
	deps.Orders = orderService
	deps.Intake = processor
	deps.Expenses = expenseService
	deps.Staff = staffService
	deps.DeliveryCompanies = companyService
	deps.PriceLists = priceListService
	deps.Reports = reportService
	deps.Carriers = manager
	deps.Shipments = shipments
	deps.Tracker = carriers.NewTracker(manager, orderService, logg)

	if !cfg.GoogleSheets.Enabled() {
		logg.Warn(ctx, "google sheets not configured, sheet routes answer 503")
		return nil
	}
	sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleSheets, logg)
	if err != nil {
		return err
	}
	sheetService, err := sheetsync.NewService(sheetsync.ServiceParams{
		Sheets:        sheetsClient,
		Processor:     processor,
		Logger:        logg,
		DefaultRange:  cfg.GoogleSheets.DefaultRange,
		SpreadsheetID: cfg.GoogleSheets.SpreadsheetID,
	})
	if err != nil {
		return err
	}
	deps.Sheets = sheetService
	return nil
}
