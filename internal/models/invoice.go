package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a billing obligation for one fee definition against one player/guardian pair
type Invoice struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	GuardianID      uint            `gorm:"not null;index" json:"guardian_id"`
	PlayerID        *uint           `gorm:"uniqueIndex:idx_invoices_billing" json:"player_id"`
	FeeDefinitionID uint            `gorm:"not null;index;uniqueIndex:idx_invoices_billing" json:"fee_definition_id"`
	BillingPeriod   string          `gorm:"size:7;not null;default:'';uniqueIndex:idx_invoices_billing" json:"billing_period"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // copied from the fee at creation
	DueDate         time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status          string          `gorm:"size:20;default:pending;not null;index" json:"status"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Associations
	Guardian      User          `gorm:"foreignKey:GuardianID" json:"-"`
	Player        *Player       `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	FeeDefinition FeeDefinition `gorm:"foreignKey:FeeDefinitionID;constraint:OnDelete:RESTRICT" json:"fee_definition,omitempty"`
	Payments      []Payment     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice status constants
const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusOverdue  = "overdue"
	InvoiceStatusInReview = "in_review"
	InvoiceStatusPaid     = "paid"
)

// ValidInvoiceStatus reports whether status is a known invoice status
func ValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceStatusPending, InvoiceStatusOverdue, InvoiceStatusInReview, InvoiceStatusPaid:
		return true
	}
	return false
}

// IsPastDue returns true if the due date is strictly before today
func (i *Invoice) IsPastDue(today time.Time) bool {
	return DateOnly(i.DueDate).Before(DateOnly(today))
}

// MayMarkOverdue returns true if the invoice is pending and past due
func (i *Invoice) MayMarkOverdue(today time.Time) bool {
	return i.Status == InvoiceStatusPending && i.IsPastDue(today)
}

// MarkOverdueIfDue moves a pending, past-due invoice to overdue and reports whether it changed.
// Invoices in review or paid are never touched.
func (i *Invoice) MarkOverdueIfDue(today time.Time) bool {
	if !i.MayMarkOverdue(today) {
		return false
	}
	i.Status = InvoiceStatusOverdue
	return true
}

// MaySubmitPayment returns true if a guardian can submit a payment
func (i *Invoice) MaySubmitPayment() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}

// MaySettle returns true if the invoice can be paid without review
func (i *Invoice) MaySettle() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}

// MayApprove returns true if the invoice is awaiting review
func (i *Invoice) MayApprove() bool {
	return i.Status == InvoiceStatusInReview
}

// MayReopen returns true if a rejected review can send the invoice back to collection
func (i *Invoice) MayReopen() bool {
	return i.Status == InvoiceStatusInReview
}

// IsOpen returns true while the invoice still awaits money
func (i *Invoice) IsOpen() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}

// OverdueDays returns the number of days past due for overdue invoices
func (i *Invoice) OverdueDays(today time.Time) int {
	if i.Status != InvoiceStatusOverdue {
		return 0
	}
	return int(DateOnly(today).Sub(DateOnly(i.DueDate)).Hours() / 24)
}

// InvoiceResponse is the JSON response format for invoices
type InvoiceResponse struct {
	ID              uint              `json:"id"`
	GuardianID      uint              `json:"guardian_id"`
	GuardianName    string            `json:"guardian_name,omitempty"`
	PlayerID        *uint             `json:"player_id"`
	PlayerName      string            `json:"player_name,omitempty"`
	FeeDefinitionID uint              `json:"fee_definition_id"`
	FeeName         string            `json:"fee_name,omitempty"`
	BillingPeriod   string            `json:"billing_period"`
	Amount          decimal.Decimal   `json:"amount"`
	DueDate         string            `json:"due_date"`
	Status          string            `json:"status"`
	OverdueDays     int               `json:"overdue_days"`
	Payments        []PaymentResponse `json:"payments,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToResponse converts Invoice to InvoiceResponse. today is used for the overdue day count.
func (i *Invoice) ToResponse(today time.Time) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              i.ID,
		GuardianID:      i.GuardianID,
		PlayerID:        i.PlayerID,
		FeeDefinitionID: i.FeeDefinitionID,
		BillingPeriod:   i.BillingPeriod,
		Amount:          i.Amount,
		DueDate:         i.DueDate.Format(dateLayout),
		Status:          i.Status,
		OverdueDays:     i.OverdueDays(today),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}

	if i.Guardian.ID != 0 {
		resp.GuardianName = i.Guardian.FullName
	}
	if i.Player != nil {
		resp.PlayerName = i.Player.FullName()
	}
	if i.FeeDefinition.ID != 0 {
		resp.FeeName = i.FeeDefinition.Name
	}
	for idx := range i.Payments {
		resp.Payments = append(resp.Payments, i.Payments[idx].ToResponse())
	}

	return resp
}
