package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/FreightDesk/freight-desk-backend/config"
	"github.com/FreightDesk/freight-desk-backend/db"
	"github.com/FreightDesk/freight-desk-backend/handlers"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/models"
	"github.com/FreightDesk/freight-desk-backend/router"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/FreightDesk/freight-desk-backend/store/postgres"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() {
		if err := logger.Close(); err != nil {
			log.Errorw("Failed to close logger", "error", err)
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := config.ConnectPostgres(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient, err := config.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Errorw("Failed to close Redis client", "error", err)
		}
	}()

	// Stores
	loadStore := postgres.NewPgLoadStore(pool)
	quoteStore := postgres.NewPgQuoteStore(pool)

	// Event publisher over Redis Pub/Sub
	publisher := events.NewRedisPublisher(redisClient, events.Config{
		PublishTimeout:   time.Duration(cfg.EventService.PublishTimeoutSeconds) * time.Second,
		SubscribeTimeout: time.Duration(cfg.EventService.SubscribeTimeoutSeconds) * time.Second,
		EventBufferSize:  cfg.EventService.EventBufferSize,
	})

	// Services
	emailService := services.NewEmailService(&cfg.Email)
	rateLimitService := services.NewRateLimitService(redisClient)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	pricingService, err := services.NewPricingService(&cfg.Pricing, quoteStore, emailService, publisher)
	if err != nil {
		log.Fatalf("Failed to initialize pricing service: %v", err)
	}

	loadModel := models.NewLoadModel(loadStore, publisher)
	clarificationService := services.NewClarificationService(nil, emailService, publisher)
	intakeService := services.NewIntakeService(
		&cfg.Intake,
		services.NewKeywordClassifier(),
		services.NewRegexExtractor(),
		loadModel,
		clarificationService,
		publisher,
	)

	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		RateLimiter:   rateLimitService,
		IntakeHandler: handlers.NewIntakeHandler(intakeService, cfg.Server.WebhookSecret),
		LoadHandler:   handlers.NewLoadHandler(loadModel, pricingService, quoteStore),
		HealthHandler: handlers.NewHealthHandler(healthService),
		Logger:        log,
	})

	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			log.Fatalf("Invalid trusted proxies: %v", err)
		}
	} else {
		// Without trusted proxies client IPs come straight from the socket
		if err := r.SetTrustedProxies(nil); err != nil {
			log.Fatalf("Failed to clear trusted proxies: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	if err := publisher.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Event publisher shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}
