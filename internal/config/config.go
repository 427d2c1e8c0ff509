package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration.
// It is populated from environment variables (optionally seeded from .env).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	MinIO    MinIOConfig
	Rental   RentalConfig
	Worker   WorkerConfig
	Admin    AdminSeedConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	// StorageDriver selects the repository implementation: postgres or memory
	StorageDriver string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN renders a libpq connection string, used by the migrator
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// =====================================================
// RENTAL RULES
// =====================================================

type RentalConfig struct {
	MaxActivePerReader int
	LockTTL            time.Duration
	StatisticsCacheTTL time.Duration
	BookCacheTTL       time.Duration
}

type WorkerConfig struct {
	Concurrency          int
	SweepOverdueCron     string
	ReconcileCron        string
	NightlyReportCron    string
	ReportRetentionHours int
}

type AdminSeedConfig struct {
	Email    string
	Password string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Book Rental API"),
			Environment:   getEnv("APP_ENV", "development"),
			Port:          getEnv("APP_PORT", "8080"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "bookrental"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60*12),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "bookrental-reports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Rental: RentalConfig{
			MaxActivePerReader: getEnvInt("RENTAL_MAX_ACTIVE_PER_READER", 3),
			LockTTL:            getEnvDuration("RENTAL_LOCK_TTL", 5*time.Second),
			StatisticsCacheTTL: getEnvDuration("RENTAL_STATS_CACHE_TTL", 30*time.Second),
			BookCacheTTL:       getEnvDuration("BOOK_CACHE_TTL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency:          getEnvInt("WORKER_CONCURRENCY", 10),
			SweepOverdueCron:     getEnv("WORKER_SWEEP_OVERDUE_CRON", "*/15 * * * *"),
			ReconcileCron:        getEnv("WORKER_RECONCILE_CRON", "0 * * * *"),
			NightlyReportCron:    getEnv("WORKER_NIGHTLY_REPORT_CRON", "0 2 * * *"),
			ReportRetentionHours: getEnvInt("WORKER_REPORT_RETENTION_HOURS", 24*30),
		},
		Admin: AdminSeedConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@bookrental.local"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the application cannot run with
func (c *Config) Validate() error {
	switch c.App.StorageDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory, got %q", c.App.StorageDriver)
	}

	if c.Rental.MaxActivePerReader < 1 {
		return fmt.Errorf("RENTAL_MAX_ACTIVE_PER_READER must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Admin.Password == "" {
			log.Warn().Msg("ADMIN_PASSWORD not set - no admin account will be seeded")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
