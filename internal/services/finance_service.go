package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
)

// FinanceSummary is the dashboard rollup. Overdue is derived from due dates, so a pending
// invoice past its due date is counted as overdue even if nobody has read it yet.
type FinanceSummary struct {
	TotalPaid         decimal.Decimal  `json:"total_paid"`
	TotalPending      decimal.Decimal  `json:"total_pending"`
	TotalOverdue      decimal.Decimal  `json:"total_overdue"`
	TotalInReview     decimal.Decimal  `json:"total_in_review"`
	TotalOutstanding  decimal.Decimal  `json:"total_outstanding"`
	CompletedPayments decimal.Decimal  `json:"completed_payments"`
	InvoiceCounts     map[string]int64 `json:"invoice_counts"`
	Income            decimal.Decimal  `json:"income"`
	Expense           decimal.Decimal  `json:"expense"`
	Balance           decimal.Decimal  `json:"balance"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// MonthlyFlow is one month of cash flow. FeeIncome is the part collected through invoices.
type MonthlyFlow struct {
	Month     string          `json:"month"`
	FeeIncome decimal.Decimal `json:"fee_income"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Net       decimal.Decimal `json:"net"`
}

// TransactionInput carries a manual ledger entry
type TransactionInput struct {
	Direction   string
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	SponsorID   *uint
	PlayerID    *uint
	PaymentID   *uint
}

// FinanceService builds read-side rollups over invoices, payments and the transaction log
type FinanceService struct {
	repos     *repository.Repositories
	ledgerSvc *InvoiceService
	auditSvc  *AuditService
}

func NewFinanceService(repos *repository.Repositories, ledgerSvc *InvoiceService, auditSvc *AuditService) *FinanceService {
	return &FinanceService{
		repos:     repos,
		ledgerSvc: ledgerSvc,
		auditSvc:  auditSvc,
	}
}

// Today is the current date in the club's timezone
func (s *FinanceService) Today() time.Time {
	return s.ledgerSvc.Today()
}

func (s *FinanceService) Summary(ctx context.Context) (*FinanceSummary, error) {
	summary := &FinanceSummary{
		TotalPaid:         decimal.Zero,
		TotalPending:      decimal.Zero,
		TotalOverdue:      decimal.Zero,
		TotalInReview:     decimal.Zero,
		CompletedPayments: decimal.Zero,
		Income:            decimal.Zero,
		Expense:           decimal.Zero,
		InvoiceCounts: map[string]int64{
			models.InvoiceStatusPending:  0,
			models.InvoiceStatusOverdue:  0,
			models.InvoiceStatusInReview: 0,
			models.InvoiceStatusPaid:     0,
		},
		GeneratedAt: s.ledgerSvc.Now(),
	}

	rows, err := s.repos.Invoice.TotalsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoice totals: %w", err)
	}
	for _, row := range rows {
		summary.InvoiceCounts[row.Status] += row.Count
		switch row.Status {
		case models.InvoiceStatusPaid:
			summary.TotalPaid = summary.TotalPaid.Add(row.Total)
		case models.InvoiceStatusPending:
			summary.TotalPending = summary.TotalPending.Add(row.Total)
		case models.InvoiceStatusOverdue:
			summary.TotalOverdue = summary.TotalOverdue.Add(row.Total)
		case models.InvoiceStatusInReview:
			summary.TotalInReview = summary.TotalInReview.Add(row.Total)
		}
	}

	// Pending rows past due have not been materialized yet
	pastDue, err := s.repos.Invoice.PastDuePendingTotal(ctx, s.ledgerSvc.Today())
	if err != nil {
		return nil, fmt.Errorf("past due totals: %w", err)
	}
	summary.TotalPending = summary.TotalPending.Sub(pastDue.Total)
	summary.TotalOverdue = summary.TotalOverdue.Add(pastDue.Total)
	summary.InvoiceCounts[models.InvoiceStatusPending] -= pastDue.Count
	summary.InvoiceCounts[models.InvoiceStatusOverdue] += pastDue.Count
	summary.TotalOutstanding = summary.TotalPending.Add(summary.TotalOverdue)

	if summary.CompletedPayments, err = s.repos.Payment.CompletedTotal(ctx); err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}

	directions, err := s.repos.Transaction.TotalsByDirection(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}
	for _, row := range directions {
		if row.Direction == models.TransactionIncome {
			summary.Income = summary.Income.Add(row.Total)
		} else {
			summary.Expense = summary.Expense.Add(row.Total)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)

	return summary, nil
}

// MonthlyCashFlow returns twelve zero-filled months for year. Income combines completed
// invoice payments with income entries not already tied to a payment.
func (s *FinanceService) MonthlyCashFlow(ctx context.Context, year int) ([]MonthlyFlow, error) {
	if year < 1900 || year > 9999 {
		return nil, fmt.Errorf("%w: año %d", ErrInvalidPeriod, year)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	months := make([]MonthlyFlow, 12)
	for i := range months {
		months[i] = MonthlyFlow{
			Month:     time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			FeeIncome: decimal.Zero,
			Income:    decimal.Zero,
			Expense:   decimal.Zero,
			Net:       decimal.Zero,
		}
	}

	payments, err := s.repos.Payment.FindCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		m := &months[p.PaidAt.UTC().Month()-1]
		m.FeeIncome = m.FeeIncome.Add(p.Amount)
		m.Income = m.Income.Add(p.Amount)
	}

	txs, err := s.repos.Transaction.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		m := &months[tx.Date.UTC().Month()-1]
		switch {
		case !tx.IsIncome():
			m.Expense = m.Expense.Add(tx.Amount)
		case tx.PaymentID == nil:
			m.Income = m.Income.Add(tx.Amount)
		}
	}

	for i := range months {
		months[i].Net = months[i].Income.Sub(months[i].Expense)
	}
	return months, nil
}

// IncomeByCategory totals income per category for dates in [from, to]. Every income
// category is present, zero when nothing was recorded.
func (s *FinanceService) IncomeByCategory(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	from = models.DateOnly(from)
	end := models.DateOnly(to).AddDate(0, 0, 1)
	if !end.After(from) {
		return nil, fmt.Errorf("%w: rango de fechas", ErrInvalidPeriod)
	}

	totals := lo.SliceToMap([]string{
		models.TxCategoryPlayerFee,
		models.TxCategorySponsorContribution,
		models.TxCategoryTicketSales,
		models.TxCategoryOtherIncome,
	}, func(c string) (string, decimal.Decimal) { return c, decimal.Zero })

	payments, err := s.repos.Payment.FindCompletedBetween(ctx, from, end)
	if err != nil {
		return nil, err
	}
	totals[models.TxCategoryPlayerFee] = lo.Reduce(payments, func(acc decimal.Decimal, p models.Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)

	txs, err := s.repos.Transaction.FindBetween(ctx, from, end)
	if err != nil {
		return nil, err
	}
	income := lo.Filter(txs, func(tx models.Transaction, _ int) bool { return tx.IsIncome() && tx.PaymentID == nil })
	for category, group := range lo.GroupBy(income, func(tx models.Transaction) string { return tx.Category }) {
		sum := totals[category]
		for _, tx := range group {
			sum = sum.Add(tx.Amount)
		}
		totals[category] = sum
	}

	return totals, nil
}

// RecentPayments returns the latest completed payments
func (s *FinanceService) RecentPayments(ctx context.Context, limit int) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repos.Payment.RecentCompleted(ctx, limit)
}

// RecordTransaction adds a manual entry to the transaction log
func (s *FinanceService) RecordTransaction(ctx context.Context, input TransactionInput, actor Actor) (*models.Transaction, error) {
	if !models.ValidTransactionDirection(input.Direction) {
		return nil, fmt.Errorf("%w: dirección %q", ErrInvalidInput, input.Direction)
	}
	if !models.ValidTransactionCategory(input.Category) {
		return nil, fmt.Errorf("%w: categoría %q", ErrInvalidInput, input.Category)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: la descripción es obligatoria", ErrInvalidInput)
	}
	if err := validateMoney(input.Amount); err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.ledgerSvc.Today()
	}

	tx := &models.Transaction{
		Direction:       input.Direction,
		Category:        input.Category,
		Description:     strings.TrimSpace(input.Description),
		Amount:          input.Amount,
		Date:            models.DateOnly(date),
		SponsorID:       input.SponsorID,
		PlayerID:        input.PlayerID,
		PaymentID:       input.PaymentID,
		CreatedByUserID: actor.UserID,
	}
	if err := s.repos.Transaction.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionCreate, "Transaction", tx.ID, map[string]interface{}{
		"direction": tx.Direction,
		"category":  tx.Category,
		"amount":    tx.Amount.StringFixed(2),
	})
	return tx, nil
}

func (s *FinanceService) ListTransactions(ctx context.Context, query *repository.ListQuery) ([]models.Transaction, int64, error) {
	return s.repos.Transaction.List(ctx, query)
}
