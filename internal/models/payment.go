package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a settlement attempt against one invoice
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	InvoiceID        uint            `gorm:"not null;index" json:"invoice_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt           time.Time       `gorm:"not null" json:"paid_at"`
	Method           string          `gorm:"size:20;not null" json:"method"`
	Status           string          `gorm:"size:20;default:pending_review;not null;index" json:"status"`
	ProofPath        string          `gorm:"size:255;not null;default:''" json:"-"`
	Reference        *string         `gorm:"size:100;index" json:"reference"`
	Notes            *string         `gorm:"type:text" json:"notes"`
	SubmittedByID    *uint           `gorm:"index" json:"submitted_by_id"`
	ReviewedAt       *time.Time      `json:"reviewed_at"`
	ReviewedByUserID *uint           `gorm:"index" json:"reviewed_by_user_id"`
	RejectionReason  *string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Associations
	Invoice        *Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"invoice,omitempty"`
	ReviewedByUser *User    `gorm:"foreignKey:ReviewedByUserID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPendingReview = "pending_review"
	PaymentStatusCompleted     = "completed"
	PaymentStatusRejected      = "rejected"
)

// Payment method constants
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodCheck        = "check"
	PaymentMethodOther        = "other"
)

// ValidPaymentMethod reports whether method is accepted
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCard, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// MayApprove returns true if payment can be approved
func (p *Payment) MayApprove() bool {
	return p.Status == PaymentStatusPendingReview
}

// MayReject returns true if payment can be rejected
func (p *Payment) MayReject() bool {
	return p.Status == PaymentStatusPendingReview
}

// HasProof returns true if a proof file reference is attached
func (p *Payment) HasProof() bool {
	return strings.TrimSpace(p.ProofPath) != ""
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID              uint            `json:"id"`
	InvoiceID       uint            `json:"invoice_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAt          time.Time       `json:"paid_at"`
	Method          string          `json:"method"`
	Status          string          `json:"status"`
	Reference       *string         `json:"reference,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	HasProof        bool            `json:"has_proof"`
	IsPDF           bool            `json:"is_pdf"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	Reviewer        string          `json:"reviewer,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	InvoiceStatus   string          `json:"invoice_status,omitempty"`
	GuardianID      uint            `json:"guardian_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		PaidAt:          p.PaidAt,
		Method:          p.Method,
		Status:          p.Status,
		Reference:       p.Reference,
		Notes:           p.Notes,
		HasProof:        p.HasProof(),
		IsPDF:           strings.HasSuffix(strings.ToLower(p.ProofPath), ".pdf"),
		ReviewedAt:      p.ReviewedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
	}

	if p.ReviewedByUser != nil {
		resp.Reviewer = p.ReviewedByUser.FullName
	}
	if p.Invoice != nil {
		resp.InvoiceStatus = p.Invoice.Status
		resp.GuardianID = p.Invoice.GuardianID
	}

	return resp
}
