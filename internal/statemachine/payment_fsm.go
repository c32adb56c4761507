package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/clubfin-api/internal/models"
)

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending_review → completed
			{Name: "approve", Src: []string{models.PaymentStatusPendingReview}, Dst: models.PaymentStatusCompleted},

			// pending_review → rejected
			{Name: "reject", Src: []string{models.PaymentStatusPendingReview}, Dst: models.PaymentStatusRejected},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Approve transitions payment to completed state
func (p *PaymentFSM) Approve(ctx context.Context) error {
	if !p.payment.MayApprove() {
		return fmt.Errorf("payment cannot be approved in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Reject transitions payment to rejected state
func (p *PaymentFSM) Reject(ctx context.Context) error {
	if !p.payment.MayReject() {
		return fmt.Errorf("payment cannot be rejected in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
