package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceQuery extends ListQuery with invoice-specific scoping.
// Today drives the derived pending/overdue status filters.
type InvoiceQuery struct {
	*ListQuery
	GuardianID *uint
	Today      time.Time
}

// StatusTotal is an aggregate row per invoice status
type StatusTotal struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	FindForUpdate(ctx context.Context, id uint) (*models.Invoice, error)
	FindManyForUpdate(ctx context.Context, ids []uint) ([]models.Invoice, error)
	List(ctx context.Context, query *InvoiceQuery) ([]models.Invoice, int64, error)
	ExistsForPeriod(ctx context.Context, playerID, feeID uint, period string) (bool, error)
	ExistsForFee(ctx context.Context, playerID, feeID uint) (bool, error)
	CreateIfAbsent(ctx context.Context, invoice *models.Invoice) (bool, error)
	UpdateStatus(ctx context.Context, id uint, from []string, to string) (bool, error)
	MarkOverdueBefore(ctx context.Context, today time.Time) (int64, error)
	CountByFee(ctx context.Context, feeID uint) (int64, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
	PastDuePendingTotal(ctx context.Context, today time.Time) (StatusTotal, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Guardian").
		Preload("Player").
		Preload("FeeDefinition").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.created_at DESC") }).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindForUpdate loads the invoice row with a write lock for the rest of the transaction
func (r *invoiceRepository) FindForUpdate(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindManyForUpdate locks several invoices in id order to avoid lock-order deadlocks
func (r *invoiceRepository) FindManyForUpdate(ctx context.Context, ids []uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) List(ctx context.Context, query *InvoiceQuery) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Invoice{})

	if query.GuardianID != nil {
		db = db.Where("invoices.guardian_id = ?", *query.GuardianID)
	}

	// Status filters follow the derived view: a past-due pending invoice counts as overdue
	today := models.DateOnly(query.Today)
	switch status := query.Filters["status"]; status {
	case "":
	case models.InvoiceStatusOverdue:
		db = db.Where("(invoices.status = ? OR (invoices.status = ? AND invoices.due_date < ?))",
			models.InvoiceStatusOverdue, models.InvoiceStatusPending, today)
	case models.InvoiceStatusPending:
		db = db.Where("invoices.status = ? AND invoices.due_date >= ?", models.InvoiceStatusPending, today)
	case "open":
		db = db.Where("invoices.status IN ?", []string{models.InvoiceStatusPending, models.InvoiceStatusOverdue})
	default:
		db = db.Where("invoices.status = ?", status)
	}

	if feeID := query.Filters["fee_definition_id"]; feeID != "" {
		db = db.Where("invoices.fee_definition_id = ?", feeID)
	}
	if playerID := query.Filters["player_id"]; playerID != "" {
		db = db.Where("invoices.player_id = ?", playerID)
	}
	if period := query.Filters["billing_period"]; period != "" {
		db = db.Where("invoices.billing_period = ?", period)
	}
	if query.Search != "" {
		db = db.Where("invoices.player_id IN (?)",
			r.db.Model(&models.Player{}).Select("id").
				Where("LOWER(first_name || ' ' || last_name) LIKE ?", likeTerm(query.Search)))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := query.orderClause(map[string]string{
		"due_date":   "invoices.due_date",
		"created_at": "invoices.created_at",
		"amount":     "invoices.amount",
		"status":     "invoices.status",
	}, "invoices.due_date ASC")

	err := paginate(db.Order(order).Order("invoices.id ASC"), query.ListQuery).
		Preload("Guardian").
		Preload("Player").
		Preload("FeeDefinition").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, playerID, feeID uint, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("player_id = ? AND fee_definition_id = ? AND billing_period = ?", playerID, feeID, period).
		Count(&count).Error
	return count > 0, err
}

func (r *invoiceRepository) ExistsForFee(ctx context.Context, playerID, feeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("player_id = ? AND fee_definition_id = ?", playerID, feeID).
		Count(&count).Error
	return count > 0, err
}

// CreateIfAbsent inserts the invoice unless the billing key already exists.
// It reports false, with no error, when a concurrent writer got there first.
func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, invoice *models.Invoice) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(invoice)
	if result.Error != nil {
		if IsDuplicateKeyError(result.Error, "idx_invoices_billing") {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatus moves the invoice to `to` only if it is currently in one of `from`
func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uint, from []string, to string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return result.RowsAffected > 0, result.Error
}

func (r *invoiceRepository) MarkOverdueBefore(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusPending, models.DateOnly(today)).
		Update("status", models.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}

func (r *invoiceRepository) CountByFee(ctx context.Context, feeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("fee_definition_id = ?", feeID).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *invoiceRepository) PastDuePendingTotal(ctx context.Context, today time.Time) (StatusTotal, error) {
	row := StatusTotal{Status: models.InvoiceStatusPending}
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND due_date < ?", models.InvoiceStatusPending, models.DateOnly(today)).
		Scan(&row).Error
	return row, err
}
