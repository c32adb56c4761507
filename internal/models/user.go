package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account resolved by the identity provider; guardians and administrators are both users
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Role        string     `gorm:"default:guardian" json:"role"`
	Status      string     `gorm:"default:active" json:"status"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Wards []GuardianPlayer `gorm:"foreignKey:GuardianID" json:"wards,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleGuardian
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleGuardian = "guardian"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsGuardian returns true if user has guardian role
func (u *User) IsGuardian() bool {
	return u.Role == RoleGuardian
}
