package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tow/internal/app"
	"tow/internal/config"
	"tow/internal/handler"
	internalRedis "tow/internal/redis"
	"tow/internal/repository"
	"tow/internal/repository/memory"
	"tow/internal/repository/postgres"
	"tow/internal/service"
	"tow/internal/ws"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize repositories for the configured backend.
	var (
		tripRepo   repository.TripRepository
		walletRepo repository.WalletRepository
		ruleRepo   repository.PricingRuleRepository
		driverRepo repository.DriverRepository
	)

	switch cfg.Store.Backend {
	case "memory":
		log.Println("Using in-memory store")
		tripRepo = memory.NewTripRepository()
		walletRepo = memory.NewWalletRepository()
		ruleRepo = memory.NewPricingRuleRepository()
		driverRepo = memory.NewDriverRepository()
	default:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")

		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}

		tripRepo = postgres.NewTripRepository(db)
		walletRepo = postgres.NewWalletRepository(db)
		ruleRepo = postgres.NewPricingRuleRepository(db)
		driverRepo = postgres.NewDriverRepository(db)
	}

	// Redis is optional; without it the geo index and rule cache are skipped
	// and the in-process hub presence serves location reads.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Printf("redis unavailable, continuing without it: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server := wireServer(cfg, redisClient, nrApp, tripRepo, walletRepo, ruleRepo, driverRepo)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	cfg *config.Config,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	tripRepo repository.TripRepository,
	walletRepo repository.WalletRepository,
	ruleRepo repository.PricingRuleRepository,
	driverRepo repository.DriverRepository,
) *http.Server {
	// Initialize Redis stores.
	var locationStore internalRedis.LocationStoreInterface
	var ruleCache internalRedis.RuleCacheInterface
	if redisClient != nil {
		locationStore = internalRedis.NewLocationStore(redisClient)
		ruleCache = internalRedis.NewRuleCache(redisClient)
	}

	// Initialize the websocket hub.
	hub := ws.NewHub()

	// Initialize services.
	pricingService := service.NewPricingService(ruleRepo, ruleCache)
	walletService := service.NewWalletService(walletRepo, hub)
	tripService := service.NewTripService(tripRepo, driverRepo, pricingService, walletService, hub)
	driverService := service.NewDriverService(driverRepo, locationStore, hub, hub)
	statsService := service.NewStatsService(tripRepo, walletRepo)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	driverHandler := handler.NewDriverHandler(driverService, driverRepo)
	walletHandler := handler.NewWalletHandler(walletService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	reportHandler := handler.NewReportHandler(statsService)
	wsHandler := handler.NewWSHandler(hub, driverService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:    tripHandler,
		DriverHandler:  driverHandler,
		WalletHandler:  walletHandler,
		PricingHandler: pricingHandler,
		ReportHandler:  reportHandler,
		WSHandler:      wsHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
