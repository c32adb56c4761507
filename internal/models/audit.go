package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id"`            // nil for scheduled jobs
	Action    string            `gorm:"size:50;not null" json:"action"`  // CREATE, UPDATE, DELETE, GENERATE, SUBMIT, APPROVE, REJECT
	Entity    string            `gorm:"size:50;not null" json:"entity"`  // FeeDefinition, Invoice, Payment, Transaction
	EntityID  uint              `gorm:"index" json:"entity_id"`
	Details   datatypes.JSONMap `json:"details"`
	IPAddress string            `gorm:"size:45" json:"ip_address"`
	UserAgent string            `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionGenerate = "GENERATE"
	AuditActionAssign   = "ASSIGN"
	AuditActionSubmit   = "SUBMIT"
	AuditActionSettle   = "SETTLE"
	AuditActionApprove  = "APPROVE"
	AuditActionReject   = "REJECT"
)
