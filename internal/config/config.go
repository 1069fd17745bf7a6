package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Stripe    StripeConfig
	RateLimit RateLimitConfig
	Wizard    WizardConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Topics  TopicConfig
	Enabled bool
}

type TopicConfig struct {
	BookingCreated   string
	BookingConfirmed string
	BookingCancelled string
	BookingSupport   string
	PaymentSucceeded string
	PaymentFailed    string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// RateLimitConfig carries the window/threshold pairs for the two limiters:
// one gating wizard form re-submission, one gating final booking attempts.
type RateLimitConfig struct {
	FormMaxAttempts    int
	FormWindow         time.Duration
	BookingMaxAttempts int
	BookingWindow      time.Duration
}

type WizardConfig struct {
	SessionTTL  time.Duration
	SlotLockTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "bingen_user"),
			Password:     getEnv("DB_PASSWORD", "bingen_pass"),
			Database:     getEnv("DB_NAME", "bingen_booking"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				BookingCreated:   getEnv("KAFKA_TOPIC_BOOKING_CREATED", "bingen.booking.created"),
				BookingConfirmed: getEnv("KAFKA_TOPIC_BOOKING_CONFIRMED", "bingen.booking.confirmed"),
				BookingCancelled: getEnv("KAFKA_TOPIC_BOOKING_CANCELLED", "bingen.booking.cancelled"),
				BookingSupport:   getEnv("KAFKA_TOPIC_BOOKING_SUPPORT", "bingen.booking.support"),
				PaymentSucceeded: getEnv("KAFKA_TOPIC_PAYMENT_SUCCEEDED", "bingen.payment.succeeded"),
				PaymentFailed:    getEnv("KAFKA_TOPIC_PAYMENT_FAILED", "bingen.payment.failed"),
			},
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "inr"),
		},
		RateLimit: RateLimitConfig{
			FormMaxAttempts:    getEnvInt("RATE_LIMIT_FORM_MAX", 5),
			FormWindow:         time.Duration(getEnvInt("RATE_LIMIT_FORM_WINDOW_SECONDS", 60)) * time.Second,
			BookingMaxAttempts: getEnvInt("RATE_LIMIT_BOOKING_MAX", 3),
			BookingWindow:      time.Duration(getEnvInt("RATE_LIMIT_BOOKING_WINDOW_SECONDS", 300)) * time.Second,
		},
		Wizard: WizardConfig{
			SessionTTL:  time.Duration(getEnvInt("WIZARD_SESSION_TTL_MINUTES", 30)) * time.Minute,
			SlotLockTTL: time.Duration(getEnvInt("SLOT_LOCK_TTL_MINUTES", 5)) * time.Minute,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
