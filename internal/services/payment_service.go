package services

import (
	"context"
	"io"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/storage"
)

// PaymentService covers guardian payment intake and administrator review.
// Every mutation locks the invoice row and commits payment and invoice together.
type PaymentService struct {
	repos     *repository.Repositories
	ledgerSvc *InvoiceService
	auditSvc  *AuditService
	storage   *storage.LocalStorage
}

func NewPaymentService(
	repos *repository.Repositories,
	ledgerSvc *InvoiceService,
	auditSvc *AuditService,
	storage *storage.LocalStorage,
) *PaymentService {
	return &PaymentService{
		repos:     repos,
		ledgerSvc: ledgerSvc,
		auditSvc:  auditSvc,
		storage:   storage,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repos.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "pago")
	}
	if err := s.refreshInvoice(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	payments, total, err := s.repos.Payment.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	for i := range payments {
		if err := s.refreshInvoice(ctx, &payments[i]); err != nil {
			return nil, 0, err
		}
	}
	return payments, total, nil
}

// refreshInvoice applies the overdue rule to the preloaded invoice
func (s *PaymentService) refreshInvoice(ctx context.Context, payment *models.Payment) error {
	if payment.Invoice == nil {
		return nil
	}
	_, err := s.ledgerSvc.MarkOverdueIfDue(ctx, payment.Invoice)
	return err
}

// ProofPath resolves the stored proof of a payment for its guardian or an administrator
func (s *PaymentService) ProofPath(ctx context.Context, id, userID uint, isAdmin bool) (string, error) {
	payment, err := s.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !isAdmin && (payment.Invoice == nil || payment.Invoice.GuardianID != userID) {
		return "", ErrForbidden
	}
	if !payment.HasProof() || s.storage == nil || !s.storage.Exists(payment.ProofPath) {
		return "", ErrNotFound
	}
	return s.storage.SafeFullPath(payment.ProofPath)
}

// SaveProof stores an uploaded proof file and returns the reference to pass to Submit
func (s *PaymentService) SaveProof(src io.Reader, filename string) (string, error) {
	return s.storage.Upload(src, filename, "proofs")
}

// DiscardProof removes a stored proof whose submission was rejected
func (s *PaymentService) DiscardProof(ref string) {
	if ref != "" && s.storage != nil {
		_ = s.storage.Delete(ref)
	}
}
