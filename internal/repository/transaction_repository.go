package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"gorm.io/gorm"
)

// DirectionTotal is an aggregate row per transaction direction
type DirectionTotal struct {
	Direction string
	Total     decimal.Decimal
}

// TransactionRepository defines the interface for ledger transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, query *ListQuery) ([]models.Transaction, int64, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
	TotalsByDirection(ctx context.Context) ([]DirectionTotal, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) List(ctx context.Context, query *ListQuery) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Transaction{})

	if query.Search != "" {
		db = db.Where("LOWER(description) LIKE ?", likeTerm(query.Search))
	}
	if direction := query.Filters["direction"]; direction != "" {
		db = db.Where("direction = ?", direction)
	}
	if category := query.Filters["category"]; category != "" {
		db = db.Where("category = ?", category)
	}
	if start, err := models.ParseDate(query.Filters["start_date"]); err == nil {
		db = db.Where("date >= ?", start)
	}
	if end, err := models.ParseDate(query.Filters["end_date"]); err == nil {
		db = db.Where("date <= ?", end)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := query.orderClause(map[string]string{
		"date":     "date",
		"amount":   "amount",
		"category": "category",
	}, "date DESC")

	err := paginate(db.Order(order).Order("id DESC"), query).Find(&txs).Error
	return txs, total, err
}

// FindBetween returns entries dated in [from, to)
func (r *transactionRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) TotalsByDirection(ctx context.Context) ([]DirectionTotal, error) {
	var rows []DirectionTotal
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("direction, COALESCE(SUM(amount), 0) AS total").
		Group("direction").
		Scan(&rows).Error
	return rows, err
}
