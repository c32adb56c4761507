package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/storage"
	"github.com/sjperalta/clubfin-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	repos *repository.Repositories
	svc   *Services
	fx    *testutil.Fixtures
	admin Actor
	now   *time.Time
}

// newTestEnv wires every service against a fresh SQLite database with the clock frozen at now
func newTestEnv(t *testing.T, now time.Time) *testEnv {
	return newTestEnvWithRoster(t, now, nil)
}

func newTestEnvWithRoster(t *testing.T, now time.Time, wrap func(RosterProvider) RosterProvider) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{Billing: config.BillingConfig{DueDay: 10}, Location: time.UTC}

	current := now
	clock := func() time.Time { return current }

	var roster RosterProvider = repos.Roster
	if wrap != nil {
		roster = wrap(roster)
	}

	env := &testEnv{
		ctx:   context.Background(),
		db:    db,
		repos: repos,
		svc:   NewServicesWithClock(repos, roster, worker, store, cfg, db, clock),
		fx:    testutil.NewFixtures(t, db),
		now:   &current,
	}

	admin := env.fx.Admin("admin@club.test")
	env.admin = UserActor(admin.ID, "127.0.0.1", "go-test")
	return env
}

// setToday moves the frozen clock
func (e *testEnv) setToday(at time.Time) {
	*e.now = at
}

func (e *testEnv) reloadInvoice(t *testing.T, id uint) *models.Invoice {
	t.Helper()
	var inv models.Invoice
	require.NoError(t, e.db.First(&inv, id).Error)
	return &inv
}

func (e *testEnv) reloadPayment(t *testing.T, id uint) *models.Payment {
	t.Helper()
	var p models.Payment
	require.NoError(t, e.db.First(&p, id).Error)
	return &p
}

func (e *testEnv) countInvoices(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Invoice{}).Count(&n).Error)
	return n
}

func (e *testEnv) countPayments(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

// guardianActor builds the actor for a guardian request
func guardianActor(u *models.User) Actor {
	return UserActor(u.ID, "10.0.0.2", "go-test")
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
