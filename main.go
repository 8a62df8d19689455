// Package main provides the main entry point for the Motofleet backoffice pricing system
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/motofleet/backoffice/app/handlers"
	"github.com/motofleet/backoffice/app/router"
	"github.com/motofleet/backoffice/app/services"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/config"
	_ "github.com/motofleet/backoffice/docs"
	"github.com/motofleet/backoffice/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Motofleet backoffice application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful  shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging redirects the standard logger to a rotating file when
// configured. Rotation settings come from the logging section of the config.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
		return
	}
	log.SetOutput(rotator)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	partRepo := repository.NewPartRepository(db)
	priceListRepo := repository.NewPriceListRepository(db)
	priceListItemRepo := repository.NewPriceListItemRepository(db)
	markupRuleRepo := repository.NewMarkupRuleRepository(db)
	discountRuleRepo := repository.NewDiscountRuleRepository(db)
	batchRepo := repository.NewPriceChangeBatchRepository(db)
	entryRepo := repository.NewPriceChangeEntryRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	allocationRepo := repository.NewShipmentCostAllocationRepository(db)
	ledgerRepo := repository.NewCostLedgerRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	vehicleModelRepo := repository.NewVehicleModelRepository(db)
	rentalPlanRepo := repository.NewRentalPlanRepository(db)
	modelPriceRepo := repository.NewModelPriceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	rateService := services.NewExchangeRateService(rateRepo, rc, &cfg.Cache)

	// Initialize flows
	costingFlow := businessflow.NewCostingFlow(
		shipmentRepo,
		allocationRepo,
		ledgerRepo,
		partRepo,
		priceListRepo,
		priceListItemRepo,
		auditRepo,
		rateService,
		cfg.Pricing,
		db,
	)

	markupFlow := businessflow.NewMarkupFlow(
		partRepo,
		priceListRepo,
		priceListItemRepo,
		markupRuleRepo,
		batchRepo,
		entryRepo,
		auditRepo,
		rateService,
		cfg.Pricing,
		db,
	)

	bulkFlow := businessflow.NewBulkPriceFlow(
		partRepo,
		priceListRepo,
		priceListItemRepo,
		batchRepo,
		entryRepo,
		historyRepo,
		auditRepo,
		cfg.Pricing,
		db,
	)

	resolutionFlow := businessflow.NewPriceResolutionFlow(
		partRepo,
		priceListRepo,
		priceListItemRepo,
		markupRuleRepo,
		discountRuleRepo,
		rateService,
		cfg.Pricing,
	)

	rentalFlow := businessflow.NewRentalFlow(
		vehicleModelRepo,
		rentalPlanRepo,
		modelPriceRepo,
		auditRepo,
		cfg.Pricing,
		db,
	)

	suggestionFlow := businessflow.NewSuggestionFlow(
		partRepo,
		priceListRepo,
		priceListItemRepo,
		vehicleModelRepo,
		rentalPlanRepo,
		modelPriceRepo,
		rateService,
		cfg.Pricing,
	)

	adminFlow := businessflow.NewAdminPricingFlow(
		markupRuleRepo,
		discountRuleRepo,
		rateRepo,
		auditRepo,
		rateService,
		cfg.Pricing,
		db,
	)

	// Initialize handlers
	costingHandler := handlers.NewCostingHandler(costingFlow)
	pricingHandler := handlers.NewPricingHandler(markupFlow, bulkFlow, resolutionFlow)
	rentalHandler := handlers.NewRentalHandler(rentalFlow)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionFlow)
	adminHandler := handlers.NewPricingAdminHandler(adminFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		costingHandler,
		pricingHandler,
		rentalHandler,
		suggestionHandler,
		adminHandler,
	)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
