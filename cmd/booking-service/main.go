package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"bingen-booking/internal/analytics"
	"bingen-booking/internal/api"
	"bingen-booking/internal/availability"
	"bingen-booking/internal/booking"
	"bingen-booking/internal/booking/db"
	bookingredis "bingen-booking/internal/booking/redis"
	"bingen-booking/internal/config"
	"bingen-booking/internal/database/migrations"
	"bingen-booking/internal/kafka"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/payment"
	"bingen-booking/internal/payment/storage"
	"bingen-booking/internal/qr"
	"bingen-booking/internal/ratelimit"
	"bingen-booking/internal/wizard"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	// Versioned migrations when the directory ships with the deploy,
	// otherwise fall back to bun's create-if-missing.
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	if _, err := os.Stat(migrationsDir); err == nil {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
			MigrationsDir: migrationsDir,
			AutoMigrate:   true,
		}, log)
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
	} else {
		log.Warn("DATABASE", "Migrations directory not found, creating schema directly")
		db.Migrate(bunDB)
	}
	db.Seed(bunDB)

	var producer *kafka.Producer
	var bookingEvents booking.EventPublisher
	var paymentEvents payment.EventPublisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		bookingEvents = producer
		paymentEvents = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingConfirmed,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.BookingSupport,
			cfg.Kafka.Topics.PaymentSucceeded,
			cfg.Kafka.Topics.PaymentFailed,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		defer producer.Close()
	} else {
		log.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	dbLayer := &db.DB{Bun: bunDB}
	slotLock := bookingredis.NewRedis(redisClient, cfg.Wizard.SlotLockTTL)
	qrGen := qr.NewGenerator(os.Getenv("QR_SECRET"))

	bookingService := booking.NewService(dbLayer, slotLock, bookingEvents, qrGen, cfg.Kafka.Topics, log)
	availabilityService := availability.NewService(dbLayer, slotLock)

	formLimiter := ratelimit.NewRedisLimiter(redisClient, "form", ratelimit.Config{
		MaxAttempts: cfg.RateLimit.FormMaxAttempts,
		Window:      cfg.RateLimit.FormWindow,
	})
	bookingLimiter := ratelimit.NewRedisLimiter(redisClient, "booking", ratelimit.Config{
		MaxAttempts: cfg.RateLimit.BookingMaxAttempts,
		Window:      cfg.RateLimit.BookingWindow,
	})

	sessionStore := wizard.NewStore(cfg.Wizard.SessionTTL)
	sessionStore.StartSweeper(ctx, time.Minute)
	wizardService := wizard.NewService(sessionStore, dbLayer, availabilityService, formLimiter, log)

	paymentStore, err := storage.NewPostgreSQLStoreWithDB(bunDB.DB, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to initialize payment storage: %v", err))
	}

	stripeService, err := payment.NewStripeService(cfg.Stripe, log)
	if err != nil {
		log.Fatal("STRIPE", fmt.Sprintf("Failed to initialize Stripe: %v", err))
	}

	orchestrator := payment.NewOrchestrator(
		wizardService,
		bookingService,
		stripeService,
		paymentStore,
		paymentEvents,
		bookingLimiter,
		cfg.Kafka.Topics,
		cfg.Stripe.Currency,
		log,
	)

	analyticsService := analytics.NewService(bunDB)

	handler := api.NewHandler(dbLayer, availabilityService, wizardService, bookingService, orchestrator, analyticsService, log)

	log.Info("HTTP", "Setting up router and middleware")
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Booking Service shutdown complete")
	}
}
