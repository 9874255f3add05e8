package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/database"
	"github.com/joyhomes/service-booking/internal/common/health"
	"github.com/joyhomes/service-booking/internal/common/kafka"
	"github.com/joyhomes/service-booking/internal/common/logger"
	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/common/response"
	"github.com/joyhomes/service-booking/internal/config"
	bookingEvents "github.com/joyhomes/service-booking/internal/events"
	"github.com/joyhomes/service-booking/internal/handler"
	"github.com/joyhomes/service-booking/internal/realtime"
	"github.com/joyhomes/service-booking/internal/repository"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(repository.Models()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager (tokens are issued by the CRM auth service)
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.Issuer,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Optional Redis for the stats cache and rate limiting
	var (
		statsCache  application.StatsCache
		rateLimiter gin.HandlerFunc
	)
	if cfg.RedisConfig.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Warn("redis unreachable, running without cache and rate limit", zap.Error(err))
		} else {
			statsCache = repository.NewRedisStatsCache(rdb)
			rateLimiter = middleware.RateLimitMiddleware(
				middleware.NewRedisWindowCounter(rdb),
				middleware.TokenSubjectKey(jwtManager),
				cfg.RateLimitPerMinute,
				time.Minute,
				log,
			)
			log.Info("redis connected", zap.String("addr", cfg.RedisConfig.Addr))
		}
	}

	// Initialize Kafka producer and the realtime hub; events go to both
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	hub := realtime.NewHub(log)
	publisher := bookingEvents.NewFanoutPublisher(log, kafkaProducer, hub)

	// Initialize application services
	uow := repository.NewGormUnitOfWork(db)
	bookingService := application.NewBookingService(uow, publisher, statsCache, cfg.StatsCacheTTL, log)
	customerService := application.NewCustomerService(uow, log)
	documentService := application.NewDocumentService(uow, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	response.RegisterJSONTagNames()
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	if rateLimiter != nil {
		router.Use(rateLimiter)
	}

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	root := &router.RouterGroup
	handler.NewBookingHandler(bookingService).RegisterRoutes(root, jwtManager)
	handler.NewCustomerHandler(customerService).RegisterRoutes(root, jwtManager)
	handler.NewDocumentHandler(documentService).RegisterRoutes(root, jwtManager)
	handler.NewDashboardHandler(bookingService).RegisterRoutes(root, jwtManager)
	handler.NewNotificationHandler(hub, jwtManager, log).RegisterRoutes(root)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
