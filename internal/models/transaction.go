package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a general ledger entry used for aggregate reporting only
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Direction       string          `gorm:"size:10;not null;index" json:"direction"`
	Category        string          `gorm:"size:40;not null;index" json:"category"`
	Description     string          `gorm:"size:255;not null" json:"description"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date            time.Time       `gorm:"type:date;not null;index" json:"date"`
	SponsorID       *uint           `gorm:"index" json:"sponsor_id"`
	PlayerID        *uint           `gorm:"index" json:"player_id"`
	PaymentID       *uint           `gorm:"index" json:"payment_id"`
	CreatedByUserID *uint           `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// Direction constants
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Category constants
const (
	TxCategoryPlayerFee           = "player_fee"
	TxCategorySponsorContribution = "sponsor_contribution"
	TxCategoryTicketSales         = "ticket_sales"
	TxCategorySupplierPayment     = "supplier_payment"
	TxCategoryRefereeFees         = "referee_fees"
	TxCategoryEquipment           = "equipment"
	TxCategoryOperatingExpense    = "operating_expense"
	TxCategoryOtherIncome         = "other_income"
	TxCategoryOtherExpense        = "other_expense"
)

var transactionCategories = map[string]bool{
	TxCategoryPlayerFee:           true,
	TxCategorySponsorContribution: true,
	TxCategoryTicketSales:         true,
	TxCategorySupplierPayment:     true,
	TxCategoryRefereeFees:         true,
	TxCategoryEquipment:           true,
	TxCategoryOperatingExpense:    true,
	TxCategoryOtherIncome:         true,
	TxCategoryOtherExpense:        true,
}

// ValidTransactionDirection reports whether direction is income or expense
func ValidTransactionDirection(direction string) bool {
	return direction == TransactionIncome || direction == TransactionExpense
}

// ValidTransactionCategory reports whether category is known
func ValidTransactionCategory(category string) bool {
	return transactionCategories[category]
}

// IsIncome returns true for income entries
func (t *Transaction) IsIncome() bool {
	return t.Direction == TransactionIncome
}
