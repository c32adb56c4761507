package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string
	AutoMigrate bool

	// JWT (tokens are issued by the identity provider; we only verify them)
	JWTSecret string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Billing
	Billing BillingConfig

	// Location used to decide what "today" is for due dates
	Timezone string
	Location *time.Location
}

// BillingConfig controls the invoice batch and overdue sweep
type BillingConfig struct {
	DueDay               int
	SchedulerEnabled     bool
	RunInterval          time.Duration
	OverdueSweepInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("storage_path", "./storage")
	v.SetDefault("worker_count", 5)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("billing_due_day", 10)
	v.SetDefault("billing_scheduler_enabled", true)
	v.SetDefault("billing_run_interval", "24h")
	v.SetDefault("overdue_sweep_interval", "1h")
	v.SetDefault("timezone", "UTC")
}

// Load reads configuration from defaults, an optional clubfin.yaml and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("clubfin")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	explicit := os.Getenv("CONFIG_PATH")
	if explicit != "" {
		v.SetConfigFile(explicit)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetString("port"),
		Environment:    v.GetString("environment"),
		LogLevel:       v.GetString("log_level"),
		DatabaseURL:    v.GetString("database_url"),
		AutoMigrate:    v.GetBool("auto_migrate"),
		JWTSecret:      v.GetString("jwt_secret"),
		StoragePath:    v.GetString("storage_path"),
		WorkerCount:    v.GetInt("worker_count"),
		AllowedOrigins: stringSlice(v, "allowed_origins"),
		SentryDSN:      v.GetString("sentry_dsn"),
		Billing: BillingConfig{
			DueDay:               v.GetInt("billing_due_day"),
			SchedulerEnabled:     v.GetBool("billing_scheduler_enabled"),
			RunInterval:          v.GetDuration("billing_run_interval"),
			OverdueSweepInterval: v.GetDuration("overdue_sweep_interval"),
		},
		Timezone: v.GetString("timezone"),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.Billing.DueDay < 1 || cfg.Billing.DueDay > 31 {
		return nil, fmt.Errorf("BILLING_DUE_DAY must be between 1 and 31, got %d", cfg.Billing.DueDay)
	}
	if cfg.Billing.RunInterval <= 0 || cfg.Billing.OverdueSweepInterval <= 0 {
		return nil, fmt.Errorf("billing intervals must be positive")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// stringSlice accepts either a YAML list or a comma-separated env value
func stringSlice(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return v.GetStringSlice(key)
}
