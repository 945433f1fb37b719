package repository

import (
	"context"

	"academy/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditLogRepository) ListByAction(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := r.db.WithContext(ctx).Where("action = ?", action).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
