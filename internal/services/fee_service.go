package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
)

// FeeInput carries the editable fields of a fee definition
type FeeInput struct {
	Name        string
	Description *string
	Amount      decimal.Decimal
	Period      string
	CategoryID  *uint
}

// FeeService maintains the fee catalog
type FeeService struct {
	repo        repository.FeeRepository
	invoiceRepo repository.InvoiceRepository
	rosterRepo  repository.RosterRepository
	auditSvc    *AuditService
}

func NewFeeService(
	repo repository.FeeRepository,
	invoiceRepo repository.InvoiceRepository,
	rosterRepo repository.RosterRepository,
	auditSvc *AuditService,
) *FeeService {
	return &FeeService{
		repo:        repo,
		invoiceRepo: invoiceRepo,
		rosterRepo:  rosterRepo,
		auditSvc:    auditSvc,
	}
}

func (s *FeeService) FindByID(ctx context.Context, id uint) (*models.FeeDefinition, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "cuota")
	}
	return fee, nil
}

func (s *FeeService) List(ctx context.Context, query *repository.ListQuery) ([]models.FeeDefinition, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *FeeService) Create(ctx context.Context, input FeeInput, actor Actor) (*models.FeeDefinition, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	fee := &models.FeeDefinition{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Amount:      input.Amount,
		Period:      input.Period,
		CategoryID:  input.CategoryID,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionCreate, "FeeDefinition", fee.ID, map[string]interface{}{
		"name":   fee.Name,
		"amount": fee.Amount.StringFixed(2),
		"period": fee.Period,
	})

	return s.repo.FindByID(ctx, fee.ID)
}

// Update edits a fee definition. Issued invoices keep the amount they were created with.
func (s *FeeService) Update(ctx context.Context, id uint, input FeeInput, actor Actor) (*models.FeeDefinition, error) {
	fee, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	previous := fee.Amount
	fee.Name = strings.TrimSpace(input.Name)
	fee.Description = input.Description
	fee.Amount = input.Amount
	fee.Period = input.Period
	fee.CategoryID = input.CategoryID

	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionUpdate, "FeeDefinition", fee.ID, map[string]interface{}{
		"name":            fee.Name,
		"amount":          fee.Amount.StringFixed(2),
		"previous_amount": previous.StringFixed(2),
		"period":          fee.Period,
	})

	return s.repo.FindByID(ctx, fee.ID)
}

// Delete removes a fee definition that no invoice references
func (s *FeeService) Delete(ctx context.Context, id uint, actor Actor) error {
	fee, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.invoiceRepo.CountByFee(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w (%d facturas)", ErrFeeInUse, count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// An invoice generated between the count and the delete still hits the foreign key
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return ErrFeeInUse
		}
		return err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionDelete, "FeeDefinition", id, map[string]interface{}{
		"name": fee.Name,
	})
	return nil
}

func (s *FeeService) validate(ctx context.Context, input FeeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", ErrInvalidInput)
	}
	if !models.ValidFeePeriod(input.Period) {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, input.Period)
	}
	if err := validateMoney(input.Amount); err != nil {
		return err
	}
	if input.CategoryID != nil {
		if _, err := s.rosterRepo.FindCategory(ctx, *input.CategoryID); err != nil {
			return notFound(err, "categoría")
		}
	}
	return nil
}

// validateMoney accepts strictly positive amounts with at most two decimals
func validateMoney(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debe ser mayor que cero", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: máximo dos decimales", ErrInvalidAmount)
	}
	return nil
}
