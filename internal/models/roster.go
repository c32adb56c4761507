package models

import (
	"strings"
	"time"
)

// Category groups players by age bracket or team (e.g. U15)
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Player is a club member who can be billed through a guardian
type Player struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Status     string    `gorm:"size:20;default:active;not null;index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName specifies the table name for Player
func (Player) TableName() string {
	return "players"
}

// Player status constants
const (
	PlayerStatusActive   = "active"
	PlayerStatusInactive = "inactive"
)

// FullName returns the player's display name
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IsActive returns true if the player is billable
func (p *Player) IsActive() bool {
	return p.Status == PlayerStatusActive
}

// GuardianPlayer links a guardian user to a player
type GuardianPlayer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuardianID uint      `gorm:"not null;index" json:"guardian_id"`
	PlayerID   uint      `gorm:"not null;index" json:"player_id"`
	Relation   string    `gorm:"size:20" json:"relation"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Guardian User   `gorm:"foreignKey:GuardianID" json:"-"`
	Player   Player `gorm:"foreignKey:PlayerID" json:"-"`
}

// TableName specifies the table name for GuardianPlayer
func (GuardianPlayer) TableName() string {
	return "guardian_players"
}
