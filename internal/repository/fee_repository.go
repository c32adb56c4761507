package repository

import (
	"context"

	"github.com/sjperalta/clubfin-api/internal/models"
	"gorm.io/gorm"
)

// FeeRepository defines the interface for fee definition data access
type FeeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.FeeDefinition, error)
	List(ctx context.Context, query *ListQuery) ([]models.FeeDefinition, int64, error)
	FindRecurring(ctx context.Context) ([]models.FeeDefinition, error)
	Create(ctx context.Context, fee *models.FeeDefinition) error
	Update(ctx context.Context, fee *models.FeeDefinition) error
	Delete(ctx context.Context, id uint) error
}

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository creates a new fee repository
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) FindByID(ctx context.Context, id uint) (*models.FeeDefinition, error) {
	var fee models.FeeDefinition
	if err := r.db.WithContext(ctx).Preload("Category").First(&fee, id).Error; err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *feeRepository) List(ctx context.Context, query *ListQuery) ([]models.FeeDefinition, int64, error) {
	var fees []models.FeeDefinition
	var total int64

	db := r.db.WithContext(ctx).Model(&models.FeeDefinition{})

	if query.Search != "" {
		db = db.Where("LOWER(name) LIKE ?", likeTerm(query.Search))
	}
	if period := query.Filters["period"]; period != "" {
		db = db.Where("period = ?", period)
	}
	if categoryID := query.Filters["category_id"]; categoryID != "" {
		db = db.Where("category_id = ?", categoryID)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := query.orderClause(map[string]string{
		"name":       "name",
		"amount":     "amount",
		"period":     "period",
		"created_at": "created_at",
	}, "name ASC")

	err := paginate(db.Order(order), query).Preload("Category").Find(&fees).Error
	return fees, total, err
}

func (r *feeRepository) FindRecurring(ctx context.Context) ([]models.FeeDefinition, error) {
	var fees []models.FeeDefinition
	err := r.db.WithContext(ctx).
		Where("period IN ?", []string{models.FeePeriodMonthly, models.FeePeriodAnnual}).
		Order("id ASC").
		Find(&fees).Error
	return fees, err
}

func (r *feeRepository) Create(ctx context.Context, fee *models.FeeDefinition) error {
	return r.db.WithContext(ctx).Omit("Category").Create(fee).Error
}

// Update writes the editable columns, including clearing the category scope
func (r *feeRepository) Update(ctx context.Context, fee *models.FeeDefinition) error {
	return r.db.WithContext(ctx).
		Model(fee).
		Select("name", "description", "amount", "period", "category_id").
		Updates(fee).Error
}

func (r *feeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FeeDefinition{}, id).Error
}
