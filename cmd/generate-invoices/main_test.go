package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/internal/testutil"
)

func newBatch(t *testing.T) (*services.Services, *testutil.Fixtures) {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{Billing: config.BillingConfig{DueDay: 10}, Location: time.UTC}
	clock := services.Clock(testutil.FixedClock(testutil.Date(2024, time.March, 5)))
	return services.NewServicesWithClock(repos, repos.Roster, worker, nil, cfg, db, clock), testutil.NewFixtures(t, db)
}

func TestRunKeepsResultsOfFeesThatSucceeded(t *testing.T) {
	svcs, fx := newBatch(t)
	fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	annual := fx.Fee("Inscripción anual", 2000, models.FeePeriodAnnual, nil)
	fx.Link(fx.Guardian("g@club.test"), fx.Player("Ana", nil))

	// "2024" is not a monthly period, so only the annual fee can be billed
	results, err := run(context.Background(), svcs, 0, "2024", false)
	assert.ErrorIs(t, err, services.ErrInvalidPeriod)
	require.Len(t, results, 1)
	assert.Equal(t, annual.ID, results[0].FeeID)
	assert.Equal(t, 1, results[0].Created)
}

func TestRunSingleFeeAndSweep(t *testing.T) {
	svcs, fx := newBatch(t)
	fee := fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	guardian := fx.Guardian("g@club.test")
	player := fx.Player("Ana", nil)
	fx.Link(guardian, player)
	fx.Invoice(guardian, player, fee, "2024-02", testutil.Date(2024, time.February, 10), models.InvoiceStatusPending)

	results, err := run(context.Background(), svcs, fee.ID, "", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2024-03", results[0].BillingPeriod)
	assert.Equal(t, 1, results[0].Created)
}

func TestDefaultTimezoneMatchesConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubfin")
	t.Setenv("TIMEZONE", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, defaultTimezone, cfg.Timezone)
}
