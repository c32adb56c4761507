package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/clubfin-api/internal/models"
)

// InvoiceFSM wraps an invoice with its state machine
type InvoiceFSM struct {
	invoice *models.Invoice
	fsm     *fsm.FSM
}

// NewInvoiceFSM creates a new invoice state machine
func NewInvoiceFSM(invoice *models.Invoice) *InvoiceFSM {
	ifsm := &InvoiceFSM{
		invoice: invoice,
	}

	ifsm.fsm = fsm.NewFSM(
		invoice.Status,
		fsm.Events{
			// pending → overdue (due date passed)
			{Name: "mark_overdue", Src: []string{models.InvoiceStatusPending}, Dst: models.InvoiceStatusOverdue},

			// pending/overdue → in_review (guardian submitted proof)
			{Name: "submit", Src: []string{models.InvoiceStatusPending, models.InvoiceStatusOverdue}, Dst: models.InvoiceStatusInReview},

			// in_review → paid
			{Name: "approve", Src: []string{models.InvoiceStatusInReview}, Dst: models.InvoiceStatusPaid},

			// in_review → pending (payment rejected; overdue rule re-applied afterwards)
			{Name: "reopen", Src: []string{models.InvoiceStatusInReview}, Dst: models.InvoiceStatusPending},

			// pending/overdue → paid (trusted channel, no review)
			{Name: "settle", Src: []string{models.InvoiceStatusPending, models.InvoiceStatusOverdue}, Dst: models.InvoiceStatusPaid},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// MarkOverdue transitions a past-due pending invoice to overdue
func (i *InvoiceFSM) MarkOverdue(ctx context.Context, today time.Time) error {
	if !i.invoice.MayMarkOverdue(today) {
		return fmt.Errorf("invoice cannot be marked overdue in current state: %s", i.invoice.Status)
	}

	if err := i.fsm.Event(ctx, "mark_overdue"); err != nil {
		return fmt.Errorf("failed to mark invoice overdue: %w", err)
	}

	i.invoice.Status = i.fsm.Current()
	return nil
}

// Submit transitions invoice to in_review state
func (i *InvoiceFSM) Submit(ctx context.Context) error {
	if !i.invoice.MaySubmitPayment() {
		return fmt.Errorf("invoice cannot receive a payment in current state: %s", i.invoice.Status)
	}

	if err := i.fsm.Event(ctx, "submit"); err != nil {
		return fmt.Errorf("failed to submit invoice: %w", err)
	}

	i.invoice.Status = i.fsm.Current()
	return nil
}

// Approve transitions invoice to paid state
func (i *InvoiceFSM) Approve(ctx context.Context) error {
	if !i.invoice.MayApprove() {
		return fmt.Errorf("invoice cannot be approved in current state: %s", i.invoice.Status)
	}

	if err := i.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve invoice: %w", err)
	}

	i.invoice.Status = i.fsm.Current()
	return nil
}

// Reopen sends an invoice back to collection after a rejected review.
// The result is pending, or overdue when the due date already passed.
func (i *InvoiceFSM) Reopen(ctx context.Context, today time.Time) error {
	if !i.invoice.MayReopen() {
		return fmt.Errorf("invoice cannot be reopened in current state: %s", i.invoice.Status)
	}

	if err := i.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to reopen invoice: %w", err)
	}
	i.invoice.Status = i.fsm.Current()

	if i.invoice.MayMarkOverdue(today) {
		return i.MarkOverdue(ctx, today)
	}
	return nil
}

// Settle transitions an open invoice straight to paid
func (i *InvoiceFSM) Settle(ctx context.Context) error {
	if !i.invoice.MaySettle() {
		return fmt.Errorf("invoice cannot be settled in current state: %s", i.invoice.Status)
	}

	if err := i.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle invoice: %w", err)
	}

	i.invoice.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InvoiceFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InvoiceFSM) Can(event string) bool {
	return i.fsm.Can(event)
}
