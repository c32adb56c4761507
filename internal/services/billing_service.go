package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

// RosterProvider is the read-only view of players and guardians billing needs
type RosterProvider interface {
	ListActivePlayers(ctx context.Context, categoryID *uint) ([]models.Player, error)
	PrimaryGuardianOf(ctx context.Context, playerID uint) (uint, bool, error)
}

// Skip reasons reported in a GenerationResult
const (
	SkipAlreadyBilled      = "already_billed"
	SkipNoGuardian         = "no_guardian"
	SkipConcurrentConflict = "concurrent_conflict"
)

// skipCauses ties each skip reason to the error it stands for
var skipCauses = map[string]error{
	SkipAlreadyBilled:      ErrDuplicateInvoice,
	SkipNoGuardian:         ErrNoGuardianFound,
	SkipConcurrentConflict: ErrConcurrentConflict,
}

// Skip names a player that did not receive an invoice and why
type Skip struct {
	PlayerID   uint   `json:"player_id"`
	PlayerName string `json:"player_name"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

// Err returns the error behind the skip, for errors.Is checks
func (s Skip) Err() error {
	return skipCauses[s.Reason]
}

// GenerationResult summarizes one generation or assignment run
type GenerationResult struct {
	FeeID         uint   `json:"fee_definition_id"`
	FeeName       string `json:"fee_name"`
	BillingPeriod string `json:"billing_period"`
	DueDate       string `json:"due_date"`
	Created       int    `json:"created"`
	Skipped       int    `json:"skipped"`
	Skips         []Skip `json:"skips"`
}

// NoGuardian returns the players left out because nobody is responsible for them
func (r *GenerationResult) NoGuardian() []Skip {
	return lo.Filter(r.Skips, func(s Skip, _ int) bool { return s.Reason == SkipNoGuardian })
}

func (r *GenerationResult) skip(player models.Player, reason string) {
	r.Skipped++
	r.Skips = append(r.Skips, Skip{
		PlayerID:   player.ID,
		PlayerName: player.FullName(),
		Reason:     reason,
		Message:    skipCauses[reason].Error(),
	})
}

// BillingService turns fee definitions into invoices
type BillingService struct {
	feeRepo     repository.FeeRepository
	invoiceRepo repository.InvoiceRepository
	roster      RosterProvider
	auditSvc    *AuditService
	clock       Clock
	dueDay      int
}

func NewBillingService(
	feeRepo repository.FeeRepository,
	invoiceRepo repository.InvoiceRepository,
	roster RosterProvider,
	auditSvc *AuditService,
	clock Clock,
	dueDay int,
) *BillingService {
	return &BillingService{
		feeRepo:     feeRepo,
		invoiceRepo: invoiceRepo,
		roster:      roster,
		auditSvc:    auditSvc,
		clock:       clock,
		dueDay:      dueDay,
	}
}

// Generate bills every eligible player for fee in period. An empty period means the current one,
// and a zero dueDate falls on the configured due day. Running it twice creates nothing new.
func (s *BillingService) Generate(ctx context.Context, feeID uint, period string, dueDate time.Time, actor Actor) (*GenerationResult, error) {
	fee, err := s.feeRepo.FindByID(ctx, feeID)
	if err != nil {
		return nil, notFound(err, "cuota")
	}

	today := models.DateOnly(s.clock())
	key := models.BillingPeriodFor(fee.Period, today)
	if period != "" {
		if key, err = models.ParseBillingPeriod(fee.Period, period); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
	}
	if dueDate.IsZero() {
		dueDate = s.defaultDueDate(fee, key, today)
	}

	players, err := s.roster.ListActivePlayers(ctx, fee.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	result, err := s.bill(ctx, fee, players, key, models.DateOnly(dueDate), !fee.IsRecurring())
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionGenerate, "FeeDefinition", fee.ID, map[string]interface{}{
		"billing_period": key,
		"due_date":       result.DueDate,
		"created":        result.Created,
		"skipped":        result.Skipped,
	})
	return result, nil
}

// GenerateRecurring runs Generate for every monthly and annual fee. It is the entry point for
// the scheduler and the batch command; a failing fee is logged and the rest still run.
func (s *BillingService) GenerateRecurring(ctx context.Context, period string, actor Actor) ([]GenerationResult, error) {
	fees, err := s.feeRepo.FindRecurring(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]GenerationResult, 0, len(fees))
	var errs []error
	for _, fee := range fees {
		result, err := s.Generate(ctx, fee.ID, period, time.Time{}, actor)
		if err != nil {
			logger.Error("recurring generation failed", "fee_id", fee.ID, "fee", fee.Name, "error", err)
			errs = append(errs, fmt.Errorf("cuota %d: %w", fee.ID, err))
			continue
		}
		results = append(results, *result)
	}

	return results, errors.Join(errs...)
}

// Assign bills the active players of one category for fee, skipping anyone who already has
// an invoice for it in any period.
func (s *BillingService) Assign(ctx context.Context, feeID, categoryID uint, dueDate time.Time, actor Actor) (*GenerationResult, error) {
	fee, err := s.feeRepo.FindByID(ctx, feeID)
	if err != nil {
		return nil, notFound(err, "cuota")
	}

	today := models.DateOnly(s.clock())
	if dueDate.IsZero() {
		dueDate = s.defaultDueDate(fee, models.BillingPeriodFor(fee.Period, today), today)
	}
	dueDate = models.DateOnly(dueDate)

	players, err := s.roster.ListActivePlayers(ctx, &categoryID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	result, err := s.bill(ctx, fee, players, models.BillingPeriodFor(fee.Period, dueDate), dueDate, true)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionAssign, "FeeDefinition", fee.ID, map[string]interface{}{
		"category_id": categoryID,
		"due_date":    result.DueDate,
		"created":     result.Created,
		"skipped":     result.Skipped,
	})
	return result, nil
}

// bill creates one invoice per player. anyPeriod makes any existing invoice for the fee count
// as already billed; otherwise only the same billing period does.
func (s *BillingService) bill(ctx context.Context, fee *models.FeeDefinition, players []models.Player, period string, dueDate time.Time, anyPeriod bool) (*GenerationResult, error) {
	result := &GenerationResult{
		FeeID:         fee.ID,
		FeeName:       fee.Name,
		BillingPeriod: period,
		DueDate:       dueDate.Format("2006-01-02"),
		Skips:         []Skip{},
	}

	for _, player := range players {
		var exists bool
		var err error
		if anyPeriod {
			exists, err = s.invoiceRepo.ExistsForFee(ctx, player.ID, fee.ID)
		} else {
			exists, err = s.invoiceRepo.ExistsForPeriod(ctx, player.ID, fee.ID, period)
		}
		if err != nil {
			return nil, fmt.Errorf("check existing invoice for player %d: %w", player.ID, err)
		}
		if exists {
			result.skip(player, SkipAlreadyBilled)
			continue
		}

		guardianID, ok, err := s.roster.PrimaryGuardianOf(ctx, player.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve guardian for player %d: %w", player.ID, err)
		}
		if !ok {
			logger.Warn("player has no guardian, skipping", "player_id", player.ID, "player", player.FullName(), "fee_id", fee.ID)
			result.skip(player, SkipNoGuardian)
			continue
		}

		playerID := player.ID
		invoice := &models.Invoice{
			GuardianID:      guardianID,
			PlayerID:        &playerID,
			FeeDefinitionID: fee.ID,
			BillingPeriod:   period,
			Amount:          fee.Amount,
			DueDate:         dueDate,
			Status:          models.InvoiceStatusPending,
		}
		created, err := s.invoiceRepo.CreateIfAbsent(ctx, invoice)
		if err != nil {
			return nil, fmt.Errorf("create invoice for player %d: %w", player.ID, err)
		}
		if !created {
			logger.Debug("invoice created concurrently, skipping", "player_id", player.ID, "fee_id", fee.ID, "period", period)
			result.skip(player, SkipConcurrentConflict)
			continue
		}
		result.Created++
	}

	logger.Info("invoice generation finished",
		"fee_id", fee.ID, "fee", fee.Name, "period", period,
		"created", result.Created, "skipped", result.Skipped)
	return result, nil
}

// defaultDueDate places the due date on the configured day of the period's month.
// Annual fees use the current month when billing the current year, January otherwise.
func (s *BillingService) defaultDueDate(fee *models.FeeDefinition, period string, today time.Time) time.Time {
	switch fee.Period {
	case models.FeePeriodMonthly:
		if start, err := time.Parse("2006-01", period); err == nil {
			return models.DueDateInMonth(start.Year(), start.Month(), s.dueDay)
		}
	case models.FeePeriodAnnual:
		if start, err := time.Parse("2006", period); err == nil && start.Year() != today.Year() {
			return models.DueDateInMonth(start.Year(), time.January, s.dueDay)
		}
	}

	due := models.DueDateInMonth(today.Year(), today.Month(), s.dueDay)
	if fee.Period == models.FeePeriodOneTime && due.Before(today) {
		next := today.AddDate(0, 1, -today.Day()+1)
		due = models.DueDateInMonth(next.Year(), next.Month(), s.dueDay)
	}
	return due
}
