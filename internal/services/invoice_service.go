package services

import (
	"context"
	"time"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/statemachine"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

// Clock reports the current instant. Tests inject a fixed one.
type Clock func() time.Time

// NewClock returns a wall clock in loc, so "today" follows the club's timezone
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// InvoiceService is the invoice ledger. Every read path goes through MarkOverdueIfDue,
// so callers always observe the derived overdue status.
type InvoiceService struct {
	repo       repository.InvoiceRepository
	billingSvc *BillingService
	auditSvc   *AuditService
	clock      Clock
}

func NewInvoiceService(repo repository.InvoiceRepository, billingSvc *BillingService, auditSvc *AuditService, clock Clock) *InvoiceService {
	return &InvoiceService{
		repo:       repo,
		billingSvc: billingSvc,
		auditSvc:   auditSvc,
		clock:      clock,
	}
}

// Now returns the current instant according to the ledger's clock
func (s *InvoiceService) Now() time.Time {
	return s.clock()
}

// Today returns the current calendar day as a UTC date
func (s *InvoiceService) Today() time.Time {
	return models.DateOnly(s.clock())
}

// MarkOverdueIfDue flips a pending, past-due invoice to overdue and persists it.
// Invoices in review or paid are returned untouched.
func (s *InvoiceService) MarkOverdueIfDue(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	today := s.Today()
	if !invoice.MayMarkOverdue(today) {
		return invoice, nil
	}

	if err := statemachine.NewInvoiceFSM(invoice).MarkOverdue(ctx, today); err != nil {
		return nil, err
	}

	// A concurrent writer may already have moved it on; the conditional update leaves that alone
	if _, err := s.repo.UpdateStatus(ctx, invoice.ID, []string{models.InvoiceStatusPending}, models.InvoiceStatusOverdue); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) refresh(ctx context.Context, invoices []models.Invoice) error {
	for i := range invoices {
		if _, err := s.MarkOverdueIfDue(ctx, &invoices[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *InvoiceService) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "factura")
	}
	return s.MarkOverdueIfDue(ctx, invoice)
}

// FindForGuardian returns the invoice only if guardianID is billed for it
func (s *InvoiceService) FindForGuardian(ctx context.Context, id, guardianID uint) (*models.Invoice, error) {
	invoice, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.GuardianID != guardianID {
		return nil, ErrForbidden
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, query *repository.ListQuery) ([]models.Invoice, int64, error) {
	return s.list(ctx, &repository.InvoiceQuery{ListQuery: query})
}

func (s *InvoiceService) ListByGuardian(ctx context.Context, guardianID uint, query *repository.ListQuery) ([]models.Invoice, int64, error) {
	return s.list(ctx, &repository.InvoiceQuery{ListQuery: query, GuardianID: &guardianID})
}

func (s *InvoiceService) list(ctx context.Context, query *repository.InvoiceQuery) ([]models.Invoice, int64, error) {
	query.Today = s.Today()
	invoices, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if err := s.refresh(ctx, invoices); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// BulkAssign bills every active player of one category for a fee outside the regular cycle.
// A player that already has any invoice for the fee is skipped.
func (s *InvoiceService) BulkAssign(ctx context.Context, feeID, categoryID uint, dueDate time.Time, actor Actor) (*GenerationResult, error) {
	return s.billingSvc.Assign(ctx, feeID, categoryID, dueDate, actor)
}

// SweepOverdue materializes the overdue status for every past-due pending invoice.
// Reads stay correct without it.
func (s *InvoiceService) SweepOverdue(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkOverdueBefore(ctx, s.Today())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("overdue sweep completed", "invoices", count)
	}
	return count, nil
}
