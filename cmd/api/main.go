package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	_ "github.com/sjperalta/clubfin-api/docs" // Swagger docs
	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/database"
	"github.com/sjperalta/clubfin-api/internal/handlers"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/internal/storage"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

// @title ClubFin API
// @version 1.0
// @description REST API for club billing and payment reconciliation

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database migrated")
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, repos.Roster, worker, store, cfg, db)

	if cfg.Billing.SchedulerEnabled {
		scheduleJobs(worker, svcs, cfg)
	}

	router := handlers.NewRouter(handlers.NewHandlers(svcs), cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Generation is idempotent, so running it at startup and on every tick is safe
	worker.ScheduleEveryImmediate("invoice-generation", cfg.Billing.RunInterval, svcs.Job.GenerateCurrentPeriod)
	worker.ScheduleEvery("overdue-sweep", cfg.Billing.OverdueSweepInterval, svcs.Job.SweepOverdue)

	logger.Info("Scheduled recurring jobs",
		"generation_interval", cfg.Billing.RunInterval.String(),
		"sweep_interval", cfg.Billing.OverdueSweepInterval.String())
}
