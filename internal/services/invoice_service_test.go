package services

import (
	"testing"
	"time"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	guardian *models.User
	player   *models.Player
	fee      *models.FeeDefinition
}

func newLedgerFixture(env *testEnv) ledgerFixture {
	g := env.fx.Guardian("g@club.test")
	p := env.fx.Player("Ana", nil)
	env.fx.Link(g, p)
	return ledgerFixture{guardian: g, player: p, fee: env.fx.Fee("Mensualidad", 500, models.FeePeriodMonthly, nil)}
}

func TestFindByIDMarksPastDueInvoiceOverdue(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, time.February, 1))
	lf := newLedgerFixture(env)
	inv := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-01", testutil.Date(2024, time.January, 10), models.InvoiceStatusPending)

	found, err := env.svc.Invoice.FindByID(env.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusOverdue, found.Status)
	assert.Equal(t, 22, found.OverdueDays(env.svc.Invoice.Today()))

	assert.Equal(t, models.InvoiceStatusOverdue, env.reloadInvoice(t, inv.ID).Status)
}

func TestFindByIDKeepsInvoiceDueTodayPending(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, time.January, 10))
	lf := newLedgerFixture(env)
	inv := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-01", testutil.Date(2024, time.January, 10), models.InvoiceStatusPending)

	found, err := env.svc.Invoice.FindByID(env.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, found.Status)
}

func TestOverdueNeverTouchesReviewedOrPaidInvoices(t *testing.T) {
	for _, status := range []string{models.InvoiceStatusInReview, models.InvoiceStatusPaid} {
		t.Run(status, func(t *testing.T) {
			env := newTestEnv(t, testutil.Date(2024, time.June, 1))
			lf := newLedgerFixture(env)
			inv := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-01", testutil.Date(2024, time.January, 10), status)

			found, err := env.svc.Invoice.FindByID(env.ctx, inv.ID)
			require.NoError(t, err)
			assert.Equal(t, status, found.Status)

			swept, err := env.svc.Invoice.SweepOverdue(env.ctx)
			require.NoError(t, err)
			assert.Zero(t, swept)
			assert.Equal(t, status, env.reloadInvoice(t, inv.ID).Status)
		})
	}
}

func TestFindByIDUnknownInvoice(t *testing.T) {
	env := newTestEnv(t, march5)
	_, err := env.svc.Invoice.FindByID(env.ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindForGuardianRejectsOtherGuardians(t *testing.T) {
	env := newTestEnv(t, march5)
	lf := newLedgerFixture(env)
	stranger := env.fx.Guardian("otro@club.test")
	inv := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-03", testutil.Date(2024, time.March, 10), models.InvoiceStatusPending)

	_, err := env.svc.Invoice.FindForGuardian(env.ctx, inv.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	found, err := env.svc.Invoice.FindForGuardian(env.ctx, inv.ID, lf.guardian.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, found.ID)
	require.NotNil(t, found.Player)
	assert.Equal(t, "Ana Test", found.Player.FullName())
	assert.Equal(t, "Mensualidad", found.FeeDefinition.Name)
}

func TestListFiltersByDerivedStatus(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, time.March, 15))
	lf := newLedgerFixture(env)
	pastDue := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-02", testutil.Date(2024, time.February, 10), models.InvoiceStatusPending)
	current := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-03", testutil.Date(2024, time.March, 20), models.InvoiceStatusPending)
	paid := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-01", testutil.Date(2024, time.January, 10), models.InvoiceStatusPaid)

	tests := []struct {
		status string
		want   []uint
	}{
		{models.InvoiceStatusOverdue, []uint{pastDue.ID}},
		{models.InvoiceStatusPending, []uint{current.ID}},
		{models.InvoiceStatusPaid, []uint{paid.ID}},
		{"open", []uint{pastDue.ID, current.ID}},
		{"", []uint{paid.ID, pastDue.ID, current.ID}},
	}

	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			query := repository.NewListQuery()
			query.Filters["status"] = tt.status

			invoices, total, err := env.svc.Invoice.List(env.ctx, query)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)

			ids := make([]uint, 0, len(invoices))
			for _, inv := range invoices {
				ids = append(ids, inv.ID)
				if inv.ID == pastDue.ID {
					assert.Equal(t, models.InvoiceStatusOverdue, inv.Status)
				}
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListByGuardianAndSearch(t *testing.T) {
	env := newTestEnv(t, march5)
	lf := newLedgerFixture(env)
	other := env.fx.Guardian("otro@club.test")
	beto := env.fx.Player("Beto", nil)
	env.fx.Link(other, beto)

	mine := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-03", testutil.Date(2024, time.March, 10), models.InvoiceStatusPending)
	theirs := env.fx.Invoice(other, beto, lf.fee, "2024-03", testutil.Date(2024, time.March, 10), models.InvoiceStatusPending)

	invoices, total, err := env.svc.Invoice.ListByGuardian(env.ctx, lf.guardian.ID, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mine.ID, invoices[0].ID)

	query := repository.NewListQuery()
	query.Search = "BETO"
	invoices, total, err = env.svc.Invoice.List(env.ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, theirs.ID, invoices[0].ID)
}

func TestSweepOverdueMaterializesStatus(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, time.March, 11))
	lf := newLedgerFixture(env)
	late := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-03", testutil.Date(2024, time.March, 10), models.InvoiceStatusPending)
	onTime := env.fx.Invoice(lf.guardian, lf.player, lf.fee, "2024-04", testutil.Date(2024, time.April, 10), models.InvoiceStatusPending)

	swept, err := env.svc.Invoice.SweepOverdue(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)
	assert.Equal(t, models.InvoiceStatusOverdue, env.reloadInvoice(t, late.ID).Status)
	assert.Equal(t, models.InvoiceStatusPending, env.reloadInvoice(t, onTime.ID).Status)

	swept, err = env.svc.Invoice.SweepOverdue(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, swept)
}
