// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/database"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Fixtures creates roster rows with minimal boilerplate
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

// NewFixtures wraps db for fixture creation
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(value interface{}) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(value).Error)
}

// Admin creates an administrator
func (f *Fixtures) Admin(email string) *models.User {
	u := &models.User{Email: email, FullName: "Admin " + email, Role: models.RoleAdmin}
	f.create(u)
	return u
}

// Guardian creates a guardian user
func (f *Fixtures) Guardian(email string) *models.User {
	u := &models.User{Email: email, FullName: "Guardian " + email, Role: models.RoleGuardian}
	f.create(u)
	return u
}

// Category creates a category
func (f *Fixtures) Category(name string) *models.Category {
	c := &models.Category{Name: name}
	f.create(c)
	return c
}

// Player creates an active player in category (nil for none)
func (f *Fixtures) Player(first string, category *models.Category) *models.Player {
	p := &models.Player{FirstName: first, LastName: "Test", Status: models.PlayerStatusActive}
	if category != nil {
		p.CategoryID = &category.ID
	}
	f.create(p)
	return p
}

// Link attaches a guardian to a player
func (f *Fixtures) Link(guardian *models.User, player *models.Player) {
	f.create(&models.GuardianPlayer{GuardianID: guardian.ID, PlayerID: player.ID, Relation: "parent"})
}

// Fee creates a fee definition
func (f *Fixtures) Fee(name string, amount int64, period string, category *models.Category) *models.FeeDefinition {
	fee := &models.FeeDefinition{Name: name, Amount: decimal.NewFromInt(amount), Period: period}
	if category != nil {
		fee.CategoryID = &category.ID
	}
	f.create(fee)
	return fee
}

// Invoice creates an invoice directly, bypassing the generator
func (f *Fixtures) Invoice(guardian *models.User, player *models.Player, fee *models.FeeDefinition, period string, due time.Time, status string) *models.Invoice {
	inv := &models.Invoice{
		GuardianID:      guardian.ID,
		FeeDefinitionID: fee.ID,
		BillingPeriod:   period,
		Amount:          fee.Amount,
		DueDate:         models.DateOnly(due),
		Status:          status,
	}
	if player != nil {
		inv.PlayerID = &player.ID
	}
	f.create(inv)
	return inv
}

// Date builds a UTC date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock that always reports at
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
