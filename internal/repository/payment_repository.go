package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindForUpdate(ctx context.Context, id uint) (*models.Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uint) ([]models.Payment, error)
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
	Create(ctx context.Context, payment *models.Payment) error
	SaveReview(ctx context.Context, payment *models.Payment) (bool, error)
	RecentCompleted(ctx context.Context, limit int) ([]models.Payment, error)
	CompletedTotal(ctx context.Context) (decimal.Decimal, error)
	FindCompletedBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Invoice.Player").
		Preload("Invoice.FeeDefinition").
		Preload("ReviewedByUser").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByInvoice(ctx context.Context, invoiceID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("payments.status = ?", status)
	}
	if method := query.Filters["method"]; method != "" {
		db = db.Where("payments.method = ?", method)
	}
	if invoiceID := query.Filters["invoice_id"]; invoiceID != "" {
		db = db.Where("payments.invoice_id = ?", invoiceID)
	}
	if guardianID := query.Filters["guardian_id"]; guardianID != "" {
		db = db.Where("payments.invoice_id IN (?)",
			r.db.Model(&models.Invoice{}).Select("id").Where("guardian_id = ?", guardianID))
	}
	if start, err := models.ParseDate(query.Filters["start_date"]); err == nil {
		db = db.Where("payments.paid_at >= ?", start)
	}
	if end, err := models.ParseDate(query.Filters["end_date"]); err == nil {
		db = db.Where("payments.paid_at < ?", end.AddDate(0, 0, 1))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Payments awaiting review always come first
	reviewFirst := "(CASE WHEN payments.status = '" + models.PaymentStatusPendingReview + "' THEN 0 ELSE 1 END) ASC"
	order := query.orderClause(map[string]string{
		"paid_at":    "payments.paid_at",
		"created_at": "payments.created_at",
		"amount":     "payments.amount",
	}, "payments.created_at DESC")

	err := paginate(db.Order(reviewFirst).Order(order).Order("payments.id DESC"), query).
		Preload("Invoice.Player").
		Preload("Invoice.FeeDefinition").
		Preload("ReviewedByUser").
		Find(&payments).Error

	return payments, total, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
}

// SaveReview persists a review outcome only if the payment is still awaiting review
func (r *paymentRepository) SaveReview(ctx context.Context, payment *models.Payment) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPendingReview).
		Updates(map[string]interface{}{
			"status":              payment.Status,
			"reviewed_at":         payment.ReviewedAt,
			"reviewed_by_user_id": payment.ReviewedByUserID,
			"rejection_reason":    payment.RejectionReason,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *paymentRepository) RecentCompleted(ctx context.Context, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusCompleted).
		Preload("Invoice.Player").
		Preload("Invoice.FeeDefinition").
		Order("paid_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CompletedTotal(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(&row).Error
	return row.Total, err
}

// FindCompletedBetween returns completed payments with paid_at in [from, to)
func (r *paymentRepository) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", models.PaymentStatusCompleted, from, to).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}
