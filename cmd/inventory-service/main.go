package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/premierlux/premierlux-backend/internal/inventory/events"
	"github.com/premierlux/premierlux-backend/internal/inventory/handler"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/config"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/httputil"
	"github.com/premierlux/premierlux-backend/pkg/identifier"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	publisher, err := events.NewInventoryEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	snapshotPublisher, err := messaging.NewFanoutPublisher(rmq, messaging.ExchangeAnalyticsSnapshots, "inventory-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create snapshot publisher")
	}

	// Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	ackRepo := repository.NewAcknowledgementRepository(db)

	// Initialize services
	idgen := identifier.New()
	ledgerService := service.NewLedgerService(itemRepo, movementRepo, auditRepo, publisher, log)
	intakeService := service.NewIntakeService(batchRepo, idgen, publisher, log)
	orderService := service.NewOrderService(orderRepo, itemRepo, auditRepo, publisher, log)
	alertService := service.NewAlertService(itemRepo, batchRepo, ackRepo, publisher, log)
	replenishmentService := service.NewReplenishmentService(itemRepo, supplierRepo, log)
	forecastService := service.NewForecastService(movementRepo, log)
	complianceService := service.NewComplianceService(itemRepo, batchRepo, log)
	analyticsService := service.NewAnalyticsService(itemRepo, batchRepo, orderRepo, movementRepo, branchRepo, alertService, complianceService, log)
	advisoryService := service.NewAdvisoryService(&cfg.Advisory, ledgerService, replenishmentService, alertService, log)

	// Initialize handlers
	itemHandler := handler.NewItemHandler(ledgerService, log)
	batchHandler := handler.NewBatchHandler(intakeService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	alertHandler := handler.NewAlertHandler(alertService, log)
	replenishmentHandler := handler.NewReplenishmentHandler(replenishmentService, forecastService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, complianceService, movementRepo, auditRepo, log)
	branchHandler := handler.NewBranchHandler(branchRepo, log)
	supplierHandler := handler.NewSupplierHandler(supplierRepo, log)
	advisoryHandler := handler.NewAdvisoryHandler(advisoryService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start analytics broadcaster
	broadcaster := service.NewBroadcaster(
		analyticsService, alertService, snapshotPublisher,
		cfg.Analytics.Interval, cfg.Analytics.CycleTimeout, log,
	)
	broadcaster.Start(ctx)
	defer broadcaster.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-User-Id", "X-User-Name", "X-User-Role", "X-User-Branch"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.ScopeMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		// Ledger routes
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Get("/low-stock", itemHandler.LowStock)
			r.Post("/adjust", itemHandler.Adjust)
			r.Get("/{branch}/{name}", itemHandler.Get)
			r.Delete("/{branch}/{name}", itemHandler.Delete)
		})

		// Movement log
		r.Get("/movements", itemHandler.Movements)

		// Batch routes
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", batchHandler.List)
			r.Post("/", batchHandler.Register)
			r.Get("/expiring", batchHandler.Expiring)
			r.Get("/expired", batchHandler.Expired)
			r.Get("/{batchNumber}", batchHandler.Get)
		})
		r.Get("/scan/{qrCode}", batchHandler.Scan)

		// Order routes
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.Get)
			r.Post("/{id}/approve", orderHandler.Approve)
			r.Post("/{id}/reject", orderHandler.Reject)
			r.Post("/{id}/receive", orderHandler.Receive)
		})

		// Alert routes
		r.Get("/alerts", alertHandler.List)
		r.Post("/alerts/{id}/acknowledge", alertHandler.Acknowledge)

		// Replenishment routes
		r.Route("/replenishment", func(r chi.Router) {
			r.Get("/suggestions", replenishmentHandler.Suggestions)
			r.Get("/{branch}/{name}", replenishmentHandler.Plan)
		})
		r.Get("/forecast/{branch}/{name}", replenishmentHandler.Forecast)

		// Analytics routes
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/snapshot", analyticsHandler.Snapshot)
			r.Get("/weekly", analyticsHandler.WeeklyConsumption)
			r.Get("/monthly", analyticsHandler.MonthlyConsumption)
			r.Get("/top-items", analyticsHandler.TopConsumed)
		})
		r.Get("/compliance", analyticsHandler.Compliance)
		r.Get("/audit", analyticsHandler.AuditTrail)

		// Branch and supplier management
		r.Route("/branches", func(r chi.Router) {
			r.Get("/", branchHandler.List)
			r.Post("/", branchHandler.Create)
			r.Get("/{name}", branchHandler.Get)
			r.Delete("/{name}", branchHandler.Delete)
		})
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", supplierHandler.List)
			r.Post("/", supplierHandler.Create)
			r.Get("/{name}", supplierHandler.Get)
			r.Delete("/{name}", supplierHandler.Delete)
		})

		// Advisory
		r.Post("/advisory/ask", advisoryHandler.Ask)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the broadcaster before the server drains
	broadcaster.Stop()
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
