package repository

import (
	"context"

	"github.com/sjperalta/clubfin-api/internal/models"
	"gorm.io/gorm"
)

// RosterRepository answers the roster lookups billing depends on.
// Roster maintenance happens elsewhere; nothing here writes.
type RosterRepository interface {
	ListActivePlayers(ctx context.Context, categoryID *uint) ([]models.Player, error)
	PrimaryGuardianOf(ctx context.Context, playerID uint) (uint, bool, error)
	FindCategory(ctx context.Context, id uint) (*models.Category, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) ListActivePlayers(ctx context.Context, categoryID *uint) ([]models.Player, error) {
	var players []models.Player
	db := r.db.WithContext(ctx).Where("status = ?", models.PlayerStatusActive)
	if categoryID != nil {
		db = db.Where("category_id = ?", *categoryID)
	}
	err := db.Order("id ASC").Find(&players).Error
	return players, err
}

// PrimaryGuardianOf returns the guardian from the oldest link for the player.
// The relation carries no priority, so the first row wins.
func (r *rosterRepository) PrimaryGuardianOf(ctx context.Context, playerID uint) (uint, bool, error) {
	var links []models.GuardianPlayer
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("id ASC").
		Limit(1).
		Find(&links).Error
	if err != nil {
		return 0, false, err
	}
	if len(links) == 0 {
		return 0, false, nil
	}
	return links[0].GuardianID, true, nil
}

func (r *rosterRepository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
