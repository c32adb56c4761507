package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/statemachine"
)

// SubmitInput is a guardian's payment against one invoice.
// A zero Amount means the invoice amount.
type SubmitInput struct {
	InvoiceID  uint
	GuardianID uint
	Amount     decimal.Decimal
	Method     string
	ProofPath  string
	Reference  *string
	Notes      *string
}

// BulkSubmitInput settles several invoices of one guardian through a trusted channel
type BulkSubmitInput struct {
	GuardianID uint
	InvoiceIDs []uint
	Method     string
	Reference  string
	Notes      *string
}

// Submit records a guardian's payment and puts the invoice in review
func (s *PaymentService) Submit(ctx context.Context, input SubmitInput, actor Actor) (*models.Payment, error) {
	if strings.TrimSpace(input.ProofPath) == "" {
		return nil, ErrMissingProof
	}
	if !models.ValidPaymentMethod(input.Method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, input.Method)
	}
	if input.Amount.IsNegative() || !input.Amount.Equal(input.Amount.Round(2)) {
		return nil, ErrInvalidAmount
	}

	today := s.ledgerSvc.Today()
	var payment *models.Payment
	var fromStatus string

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		invoice, err := tx.Invoice.FindForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return notFound(err, "factura")
		}
		if invoice.GuardianID != input.GuardianID {
			return ErrForbidden
		}

		machine := statemachine.NewInvoiceFSM(invoice)
		if invoice.MayMarkOverdue(today) {
			if err := machine.MarkOverdue(ctx, today); err != nil {
				return err
			}
		}
		if !invoice.MaySubmitPayment() {
			return fmt.Errorf("%w: factura #%d en estado %s", ErrDuplicateSubmission, invoice.ID, invoice.Status)
		}
		fromStatus = invoice.Status
		if err := machine.Submit(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		moved, err := tx.Invoice.UpdateStatus(ctx, invoice.ID,
			[]string{models.InvoiceStatusPending, models.InvoiceStatusOverdue}, invoice.Status)
		if err != nil {
			return err
		}
		if !moved {
			return ErrDuplicateSubmission
		}

		amount := input.Amount
		if amount.IsZero() {
			amount = invoice.Amount
		}
		payment = &models.Payment{
			InvoiceID:     invoice.ID,
			Amount:        amount,
			PaidAt:        s.ledgerSvc.Now().UTC(),
			Method:        input.Method,
			Status:        models.PaymentStatusPendingReview,
			ProofPath:     strings.TrimSpace(input.ProofPath),
			Reference:     input.Reference,
			Notes:         input.Notes,
			SubmittedByID: actor.UserID,
		}
		if err := tx.Payment.Create(ctx, payment); err != nil {
			if repository.IsDuplicateKeyError(err, "idx_payments_one_pending_review") {
				return ErrDuplicateSubmission
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionSubmit, "Payment", payment.ID, map[string]interface{}{
		"invoice_id":     payment.InvoiceID,
		"amount":         payment.Amount.StringFixed(2),
		"method":         payment.Method,
		"invoice_status": fromStatus,
	})

	return s.FindByID(ctx, payment.ID)
}

// SubmitBulk settles several pending invoices of one guardian at once. Each gets its own
// completed payment with the shared reference suffixed by the invoice id. The whole batch
// is rejected if any invoice is missing, belongs to someone else or is not pending.
func (s *PaymentService) SubmitBulk(ctx context.Context, input BulkSubmitInput, actor Actor) ([]models.Payment, error) {
	ids := lo.Uniq(input.InvoiceIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no se indicaron facturas", ErrInvalidInput)
	}
	if !models.ValidPaymentMethod(input.Method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, input.Method)
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = "BULK-" + uuid.NewString()
	}

	today := s.ledgerSvc.Today()
	now := s.ledgerSvc.Now().UTC()
	var payments []models.Payment

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		invoices, err := tx.Invoice.FindManyForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(invoices) != len(ids) {
			found := lo.Map(invoices, func(inv models.Invoice, _ int) uint { return inv.ID })
			return fmt.Errorf("facturas %v: %w", lo.Without(ids, found...), ErrNotFound)
		}

		var problems []error
		for i := range invoices {
			invoice := &invoices[i]
			if invoice.GuardianID != input.GuardianID {
				return fmt.Errorf("factura #%d: %w", invoice.ID, ErrForbidden)
			}
			invoice.MarkOverdueIfDue(today)
			if invoice.Status != models.InvoiceStatusPending {
				problems = append(problems, fmt.Errorf("factura #%d en estado %s", invoice.ID, invoice.Status))
			}
		}
		if len(problems) > 0 {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, errors.Join(problems...))
		}

		for i := range invoices {
			invoice := &invoices[i]
			if err := statemachine.NewInvoiceFSM(invoice).Settle(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
			}
			moved, err := tx.Invoice.UpdateStatus(ctx, invoice.ID, []string{models.InvoiceStatusPending}, invoice.Status)
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("factura #%d: %w", invoice.ID, ErrInvalidTransition)
			}

			ref := fmt.Sprintf("%s-%d", reference, invoice.ID)
			reviewedAt := now
			payment := models.Payment{
				InvoiceID:        invoice.ID,
				Amount:           invoice.Amount,
				PaidAt:           now,
				Method:           input.Method,
				Status:           models.PaymentStatusCompleted,
				Reference:        &ref,
				Notes:            input.Notes,
				SubmittedByID:    actor.UserID,
				ReviewedAt:       &reviewedAt,
				ReviewedByUserID: actor.UserID,
			}
			if err := tx.Payment.Create(ctx, &payment); err != nil {
				return err
			}
			payments = append(payments, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := lo.Reduce(payments, func(acc decimal.Decimal, p models.Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
	for _, payment := range payments {
		s.auditSvc.Log(ctx, actor, models.AuditActionSettle, "Payment", payment.ID, map[string]interface{}{
			"invoice_id": payment.InvoiceID,
			"reference":  *payment.Reference,
			"amount":     payment.Amount.StringFixed(2),
			"batch":      reference,
			"batch_size": len(payments),
			"batch_sum":  total.StringFixed(2),
		})
	}

	return payments, nil
}
