package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/statemachine"
)

// Approve completes a payment under review and marks its invoice paid in one transaction
func (s *PaymentService) Approve(ctx context.Context, id uint, actor Actor) (*models.Payment, error) {
	var payment *models.Payment

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		var invoice *models.Invoice
		var err error
		payment, invoice, err = s.lockForReview(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := statemachine.NewPaymentFSM(payment).Approve(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		if err := statemachine.NewInvoiceFSM(invoice).Approve(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		return s.saveReview(ctx, tx, payment, invoice, actor)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionApprove, "Payment", payment.ID, map[string]interface{}{
		"invoice_id": payment.InvoiceID,
		"amount":     payment.Amount.StringFixed(2),
	})

	return s.FindByID(ctx, payment.ID)
}

// Reject declines a payment under review. The invoice goes back to pending, or to overdue
// when its due date has already passed.
func (s *PaymentService) Reject(ctx context.Context, id uint, reason string, actor Actor) (*models.Payment, error) {
	today := s.ledgerSvc.Today()
	var payment *models.Payment
	var invoiceStatus string

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		var invoice *models.Invoice
		var err error
		payment, invoice, err = s.lockForReview(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := statemachine.NewPaymentFSM(payment).Reject(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		if err := statemachine.NewInvoiceFSM(invoice).Reopen(ctx, today); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			payment.RejectionReason = &reason
		}
		invoiceStatus = invoice.Status

		return s.saveReview(ctx, tx, payment, invoice, actor)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionReject, "Payment", payment.ID, map[string]interface{}{
		"invoice_id":     payment.InvoiceID,
		"amount":         payment.Amount.StringFixed(2),
		"reason":         reason,
		"invoice_status": invoiceStatus,
	})

	return s.FindByID(ctx, payment.ID)
}

// lockForReview locks the payment and then its invoice. Both must still be awaiting review.
func (s *PaymentService) lockForReview(ctx context.Context, tx *repository.Repositories, id uint) (*models.Payment, *models.Invoice, error) {
	payment, err := tx.Payment.FindForUpdate(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "pago")
	}
	if payment.Status != models.PaymentStatusPendingReview {
		return nil, nil, fmt.Errorf("%w: pago #%d en estado %s", ErrInvalidTransition, payment.ID, payment.Status)
	}

	invoice, err := tx.Invoice.FindForUpdate(ctx, payment.InvoiceID)
	if err != nil {
		return nil, nil, notFound(err, "factura")
	}
	if invoice.Status != models.InvoiceStatusInReview {
		return nil, nil, fmt.Errorf("%w: factura #%d en estado %s", ErrInvalidTransition, invoice.ID, invoice.Status)
	}
	return payment, invoice, nil
}

func (s *PaymentService) saveReview(ctx context.Context, tx *repository.Repositories, payment *models.Payment, invoice *models.Invoice, actor Actor) error {
	now := s.ledgerSvc.Now().UTC()
	payment.ReviewedAt = &now
	payment.ReviewedByUserID = actor.UserID

	saved, err := tx.Payment.SaveReview(ctx, payment)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("%w: pago #%d ya fue revisado", ErrInvalidTransition, payment.ID)
	}

	moved, err := tx.Invoice.UpdateStatus(ctx, invoice.ID, []string{models.InvoiceStatusInReview}, invoice.Status)
	if err != nil {
		return err
	}
	if !moved {
		return fmt.Errorf("%w: factura #%d ya no está en revisión", ErrInvalidTransition, invoice.ID)
	}
	return nil
}
