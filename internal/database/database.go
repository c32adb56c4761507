package database

import (
	"fmt"
	"time"

	"github.com/sjperalta/clubfin-api/internal/models"
	pkgLogger "github.com/sjperalta/clubfin-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL, environment string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Warn
	if environment != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true, // Improve performance
		PrepareStmt:            true, // Cache prepared statements
		TranslateError:         true, // Surface unique violations as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Player{},
		&models.GuardianPlayer{},
		&models.FeeDefinition{},
		&models.Invoice{},
		&models.Payment{},
		&models.Transaction{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema. Works on both PostgreSQL and SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// At most one payment awaiting review per invoice
	// DDL cannot take bind parameters, so the status literal is inlined
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_one_pending_review ON payments (invoice_id) WHERE status = '%s'",
		models.PaymentStatusPendingReview,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create pending review index: %w", err)
	}

	return nil
}
