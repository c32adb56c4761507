package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var march5 = testutil.Date(2024, time.March, 5)

func TestGenerateIsIdempotent(t *testing.T) {
	env := newTestEnv(t, march5)
	u15 := env.fx.Category("U15")
	fee := env.fx.Fee("Mensualidad", 30000, models.FeePeriodMonthly, u15)
	for _, name := range []string{"Ana", "Beto"} {
		g := env.fx.Guardian(name + "@club.test")
		env.fx.Link(g, env.fx.Player(name, u15))
	}

	first, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Skipped)

	second, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	for _, skip := range second.Skips {
		assert.Equal(t, SkipAlreadyBilled, skip.Reason)
		assert.ErrorIs(t, skip.Err(), ErrDuplicateInvoice)
		assert.Equal(t, ErrDuplicateInvoice.Error(), skip.Message)
	}

	assert.Equal(t, int64(2), env.countInvoices(t))
}

func TestGenerateBillsEachPeriodOnce(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	g := env.fx.Guardian("g@club.test")
	env.fx.Link(g, env.fx.Player("Ana", nil))

	for _, period := range []string{"2024-03", "2024-03", "2024-04"} {
		_, err := env.svc.Billing.Generate(env.ctx, fee.ID, period, time.Time{}, env.admin)
		require.NoError(t, err)
	}

	var periods []string
	require.NoError(t, env.db.Model(&models.Invoice{}).Order("billing_period").Pluck("billing_period", &periods).Error)
	assert.Equal(t, []string{"2024-03", "2024-04"}, periods)
}

func TestGenerateDefaultsPeriodAndDueDate(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	env.fx.Link(env.fx.Guardian("g@club.test"), env.fx.Player("Ana", nil))

	result, err := env.svc.Billing.Generate(env.ctx, fee.ID, "", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", result.BillingPeriod)
	assert.Equal(t, "2024-03-10", result.DueDate)

	var inv models.Invoice
	require.NoError(t, env.db.First(&inv).Error)
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	assert.Equal(t, "2024-03-10", inv.DueDate.Format("2006-01-02"))
	assert.Equal(t, "500.00", inv.Amount.StringFixed(2))
}

func TestGenerateScopesToCategoryAndActivePlayers(t *testing.T) {
	env := newTestEnv(t, march5)
	u15 := env.fx.Category("U15")
	u17 := env.fx.Category("U17")
	fee := env.fx.Fee("Torneo U15", 1000, models.FeePeriodMonthly, u15)

	g := env.fx.Guardian("g@club.test")
	inScope := env.fx.Player("Ana", u15)
	outOfScope := env.fx.Player("Beto", u17)
	inactive := env.fx.Player("Caro", u15)
	require.NoError(t, env.db.Model(inactive).Update("status", models.PlayerStatusInactive).Error)
	for _, p := range []*models.Player{inScope, outOfScope, inactive} {
		env.fx.Link(g, p)
	}

	result, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	var inv models.Invoice
	require.NoError(t, env.db.First(&inv).Error)
	require.NotNil(t, inv.PlayerID)
	assert.Equal(t, inScope.ID, *inv.PlayerID)
}

func TestGenerateClubWideFeeBillsEveryCategory(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Seguro", 200, models.FeePeriodAnnual, nil)
	g := env.fx.Guardian("g@club.test")
	env.fx.Link(g, env.fx.Player("Ana", env.fx.Category("U15")))
	env.fx.Link(g, env.fx.Player("Beto", env.fx.Category("U17")))
	env.fx.Link(g, env.fx.Player("Caro", nil))

	result, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, "2024", result.BillingPeriod)
}

func TestGenerateSkipsPlayersWithoutGuardian(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	env.fx.Link(env.fx.Guardian("g@club.test"), env.fx.Player("Ana", nil))
	orphan := env.fx.Player("Huerfano", nil)

	result, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)

	missing := result.NoGuardian()
	require.Len(t, missing, 1)
	assert.Equal(t, orphan.ID, missing[0].PlayerID)
	assert.Equal(t, orphan.FullName(), missing[0].PlayerName)
	assert.ErrorIs(t, missing[0].Err(), ErrNoGuardianFound)
	assert.Equal(t, ErrNoGuardianFound.Error(), missing[0].Message)
}

func TestGeneratePicksOldestGuardianLink(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	player := env.fx.Player("Ana", nil)
	first := env.fx.Guardian("madre@club.test")
	second := env.fx.Guardian("padre@club.test")
	env.fx.Link(first, player)
	env.fx.Link(second, player)

	_, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)

	var inv models.Invoice
	require.NoError(t, env.db.First(&inv).Error)
	assert.Equal(t, first.ID, inv.GuardianID)
}

func TestGenerateOneTimeFeeBillsOnlyOnce(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Uniforme", 1200, models.FeePeriodOneTime, nil)
	env.fx.Link(env.fx.Guardian("g@club.test"), env.fx.Player("Ana", nil))

	first, err := env.svc.Billing.Generate(env.ctx, fee.ID, "", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, "", first.BillingPeriod)

	env.setToday(testutil.Date(2024, time.June, 1))
	second, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-06", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)

	_, err := env.svc.Billing.Generate(env.ctx, fee.ID, "marzo", time.Time{}, env.admin)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = env.svc.Billing.Generate(env.ctx, 9999, "2024-03", time.Time{}, env.admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

// racingRoster inserts a competing invoice right before the generator writes its own
type racingRoster struct {
	RosterProvider
	db    *gorm.DB
	feeID uint
}

func (r *racingRoster) PrimaryGuardianOf(ctx context.Context, playerID uint) (uint, bool, error) {
	guardianID, ok, err := r.RosterProvider.PrimaryGuardianOf(ctx, playerID)
	if err != nil || !ok {
		return guardianID, ok, err
	}
	pid := playerID
	competing := &models.Invoice{
		GuardianID:      guardianID,
		PlayerID:        &pid,
		FeeDefinitionID: r.feeID,
		BillingPeriod:   "2024-03",
		DueDate:         testutil.Date(2024, time.March, 10),
		Status:          models.InvoiceStatusPending,
	}
	return guardianID, ok, r.db.Omit("Guardian", "Player", "FeeDefinition").Create(competing).Error
}

func TestGenerateSwallowsConcurrentConflict(t *testing.T) {
	var racer *racingRoster
	env := newTestEnvWithRoster(t, march5, func(inner RosterProvider) RosterProvider {
		racer = &racingRoster{RosterProvider: inner}
		return racer
	})
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	env.fx.Link(env.fx.Guardian("g@club.test"), env.fx.Player("Ana", nil))
	racer.db = env.db
	racer.feeID = fee.ID

	result, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Skips, 1)
	assert.Equal(t, SkipConcurrentConflict, result.Skips[0].Reason)
	assert.ErrorIs(t, result.Skips[0].Err(), ErrConcurrentConflict)
	assert.Equal(t, int64(1), env.countInvoices(t))
}

func TestGenerateRecurringCoversMonthlyAndAnnualFees(t *testing.T) {
	env := newTestEnv(t, march5)
	env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)
	env.fx.Fee("Inscripción anual", 2000, models.FeePeriodAnnual, nil)
	env.fx.Fee("Uniforme", 1200, models.FeePeriodOneTime, nil)
	env.fx.Link(env.fx.Guardian("g@club.test"), env.fx.Player("Ana", nil))

	results, err := env.svc.Billing.GenerateRecurring(env.ctx, "", SystemActor)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), env.countInvoices(t))

	again, err := env.svc.Billing.GenerateRecurring(env.ctx, "", SystemActor)
	require.NoError(t, err)
	for _, r := range again {
		assert.Equal(t, 0, r.Created)
	}
	assert.Equal(t, int64(2), env.countInvoices(t))
}

func TestBulkAssignSkipsPlayersAlreadyBilledInAnyPeriod(t *testing.T) {
	env := newTestEnv(t, march5)
	u15 := env.fx.Category("U15")
	fee := env.fx.Fee("Viaje", 800, models.FeePeriodMonthly, nil)
	g := env.fx.Guardian("g@club.test")
	billed := env.fx.Player("Ana", u15)
	fresh := env.fx.Player("Beto", u15)
	other := env.fx.Player("Caro", env.fx.Category("U17"))
	for _, p := range []*models.Player{billed, fresh, other} {
		env.fx.Link(g, p)
	}
	env.fx.Invoice(g, billed, fee, "2023-11", testutil.Date(2023, time.November, 10), models.InvoiceStatusPaid)

	due := testutil.Date(2024, time.March, 20)
	result, err := env.svc.Invoice.BulkAssign(env.ctx, fee.ID, u15.ID, due, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, billed.ID, result.Skips[0].PlayerID)
	assert.Equal(t, "2024-03-20", result.DueDate)

	again, err := env.svc.Invoice.BulkAssign(env.ctx, fee.ID, u15.ID, due, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)
}

func TestGenerationIsAudited(t *testing.T) {
	env := newTestEnv(t, march5)
	fee := env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)

	_, err := env.svc.Billing.Generate(env.ctx, fee.ID, "2024-03", time.Time{}, env.admin)
	require.NoError(t, err)

	logs, total, err := env.svc.Audit.List(env.ctx, "FeeDefinition", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, models.AuditActionGenerate, logs[0].Action)
	assert.Equal(t, "2024-03", logs[0].Details["billing_period"])
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, *env.admin.UserID, *logs[0].UserID)
}
