package services

import (
	"context"

	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor identifies who triggered a mutation. UserID is nil for scheduled jobs.
type Actor struct {
	UserID    *uint
	IP        string
	UserAgent string
}

// SystemActor is used by the scheduler and the batch CLI
var SystemActor = Actor{UserAgent: "clubfin-scheduler"}

// UserActor builds an Actor for an authenticated request
func UserActor(userID uint, ip, userAgent string) Actor {
	return Actor{UserID: &userID, IP: ip, UserAgent: userAgent}
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry. Failures are logged and never fail the caller.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uint, details map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   datatypes.JSONMap(details),
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("failed to write audit log", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs, newest first, optionally filtered by entity
func (s *AuditService) List(ctx context.Context, entity string, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if entity != "" {
		db = db.Where("entity = ?", entity)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := db.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
