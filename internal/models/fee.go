package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeDefinition is a reusable billing template
type FeeDefinition struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Period      string          `gorm:"size:10;not null;index" json:"period"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName specifies the table name for FeeDefinition
func (FeeDefinition) TableName() string {
	return "fee_definitions"
}

// Fee period constants
const (
	FeePeriodMonthly = "monthly"
	FeePeriodAnnual  = "annual"
	FeePeriodOneTime = "one_time"
)

// ValidFeePeriod reports whether period is a known recurrence
func ValidFeePeriod(period string) bool {
	switch period {
	case FeePeriodMonthly, FeePeriodAnnual, FeePeriodOneTime:
		return true
	}
	return false
}

// IsRecurring returns true for fees billed once per period
func (f *FeeDefinition) IsRecurring() bool {
	return f.Period == FeePeriodMonthly || f.Period == FeePeriodAnnual
}

// IsClubWide returns true when the fee is not scoped to a category
func (f *FeeDefinition) IsClubWide() bool {
	return f.CategoryID == nil
}

// FeeDefinitionResponse is the JSON response format for fee definitions
type FeeDefinitionResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Period       string          `json:"period"`
	Recurring    bool            `json:"recurring"`
	CategoryID   *uint           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToResponse converts FeeDefinition to FeeDefinitionResponse
func (f *FeeDefinition) ToResponse() FeeDefinitionResponse {
	resp := FeeDefinitionResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Amount:      f.Amount,
		Period:      f.Period,
		Recurring:   f.IsRecurring(),
		CategoryID:  f.CategoryID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Category != nil {
		resp.CategoryName = f.Category.Name
	}
	return resp
}
